package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientInput creates a client.
type ClientInput struct {
	Name            string          `json:"name" validate:"required,max=200"`
	TransactionType TransactionType `json:"transaction_type" validate:"required,oneof=service bawaza purchase_at_source"`
	Phone           string          `json:"phone" validate:"omitempty,max=50"`
	Notes           string          `json:"notes"`
}

// ClientUpdate edits a client. Nil fields are left untouched.
type ClientUpdate struct {
	Name            *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	TransactionType *TransactionType `json:"transaction_type,omitempty" validate:"omitempty,oneof=service bawaza purchase_at_source"`
	Phone           *string          `json:"phone,omitempty" validate:"omitempty,max=50"`
	Notes           *string          `json:"notes,omitempty"`
}

// WholesaleClientInput creates or replaces a wholesale client's details.
type WholesaleClientInput struct {
	Name             string `json:"name" validate:"required,max=200"`
	TaxID            string `json:"tax_id" validate:"omitempty,max=50"`
	Address          string `json:"address" validate:"omitempty,max=300"`
	Phone            string `json:"phone" validate:"omitempty,max=50"`
	Email            string `json:"email" validate:"omitempty,email"`
	PaymentTermsDays int    `json:"payment_terms_days" validate:"gte=0,lte=365"`
	Notes            string `json:"notes"`
}

// ClientOperationInput records capital or an advance on a client account.
type ClientOperationInput struct {
	ClientID string          `json:"client_id" validate:"required"`
	Type     OperationType   `json:"type" validate:"required,oneof=capital advance"`
	Date     time.Time       `json:"date"`
	Label    string          `json:"label" validate:"max=200"`
	Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
}

// ReceiptInput creates an intake receipt.
type ReceiptInput struct {
	Date        time.Time       `json:"date"`
	ClientID    string          `json:"client_id" validate:"required"`
	GrossWeight decimal.Decimal `json:"gross_weight" validate:"gt=0"`
	EmptyWeight decimal.Decimal `json:"empty_weight" validate:"gte=0"`
	Vehicle     string          `json:"vehicle" validate:"omitempty,max=50"`
	Notes       string          `json:"notes"`
}

// ReceiptUpdate edits the free fields of a receipt. Weights are immutable.
type ReceiptUpdate struct {
	Date    *time.Time `json:"date,omitempty"`
	Vehicle *string    `json:"vehicle,omitempty" validate:"omitempty,max=50"`
	Notes   *string    `json:"notes,omitempty"`
}

// ExtractionInput records a pressing run.
type ExtractionInput struct {
	Source      BatchSource     `json:"source" validate:"required,oneof=receipt direct"`
	ReceiptID   string          `json:"receipt_id" validate:"required_if=Source receipt"`
	LotNumber   string          `json:"lot_number" validate:"omitempty,max=50"`
	ClientID    string          `json:"client_id"`
	ClientName  string          `json:"client_name" validate:"omitempty,max=200"`
	OliveWeight decimal.Decimal `json:"olive_weight" validate:"gte=0"`
	OilQuantity decimal.Decimal `json:"oil_quantity" validate:"gt=0"`
	Date        time.Time       `json:"date"`
}

// TankInput creates a tank.
type TankInput struct {
	Code     string          `json:"code" validate:"required,max=50"`
	Capacity decimal.Decimal `json:"capacity" validate:"gt=0"`
	Notes    string          `json:"notes"`
}

// AllocationInput moves part of a batch's oil into a tank. SourceID is the
// receipt id for receipt batches and the batch id for direct batches.
type AllocationInput struct {
	TankID    string           `json:"tank_id" validate:"required"`
	Source    BatchSource      `json:"source" validate:"required,oneof=receipt direct"`
	SourceID  string           `json:"source_id" validate:"required"`
	Quantity  decimal.Decimal  `json:"quantity" validate:"gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty" validate:"omitempty,gt=0"`
	Date      time.Time        `json:"date"`
}

// TransferInput moves oil between two tanks.
type TransferInput struct {
	FromTankID string          `json:"from_tank_id" validate:"required"`
	ToTankID   string          `json:"to_tank_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity" validate:"gt=0"`
	Date       time.Time       `json:"date"`
}

// SaleInput creates a delivery note. Omitted VAT rate and stamp duty fall
// back to settings.
type SaleInput struct {
	ClientID  string           `json:"client_id" validate:"required"`
	TankID    string           `json:"tank_id" validate:"required"`
	Quantity  decimal.Decimal  `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal  `json:"unit_price" validate:"gt=0"`
	VATRate   *decimal.Decimal `json:"vat_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	StampDuty *decimal.Decimal `json:"stamp_duty,omitempty" validate:"omitempty,gte=0"`
	Date      time.Time        `json:"date"`
	Notes     string           `json:"notes"`
}

// DeliveryPaymentInput marks a delivery note paid.
type DeliveryPaymentInput struct {
	Date      time.Time   `json:"date"`
	Mode      PaymentMode `json:"mode" validate:"required,oneof=cash cheque transfer draft"`
	Reference string      `json:"reference" validate:"max=100"`
	Notes     string      `json:"notes"`
}

// ReceiptInvoiceInput bills the processing of a closed service receipt.
type ReceiptInvoiceInput struct {
	ReceiptID string           `json:"receipt_id" validate:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty" validate:"omitempty,gt=0"`
	VATRate   *decimal.Decimal `json:"vat_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	StampDuty *decimal.Decimal `json:"stamp_duty,omitempty" validate:"omitempty,gte=0"`
	Date      time.Time        `json:"date"`
	DueDate   time.Time        `json:"due_date"`
	Notes     string           `json:"notes"`
}

// DeliveryNoteInvoiceInput bills a delivery note.
type DeliveryNoteInvoiceInput struct {
	DeliveryNoteID string    `json:"delivery_note_id" validate:"required"`
	Date           time.Time `json:"date"`
	DueDate        time.Time `json:"due_date"`
	Notes          string    `json:"notes"`
}

// InvoiceUpdate edits an invoice. Nil fields are left untouched.
type InvoiceUpdate struct {
	Date      *time.Time       `json:"date,omitempty"`
	DueDate   *time.Time       `json:"due_date,omitempty"`
	Notes     *string          `json:"notes,omitempty"`
	VATRate   *decimal.Decimal `json:"vat_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	StampDuty *decimal.Decimal `json:"stamp_duty,omitempty" validate:"omitempty,gte=0"`
}

// InvoicePaymentInput applies a payment to an invoice.
type InvoicePaymentInput struct {
	InvoiceID string          `json:"invoice_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"gt=0"`
	Mode      PaymentMode     `json:"mode" validate:"required,oneof=cash cheque transfer draft"`
	Date      time.Time       `json:"date"`
	Reference string          `json:"reference" validate:"max=100"`
	Notes     string          `json:"notes"`
}

// SettlementItem points at a batch to settle: a receipt id for receipt
// batches, a batch id for direct batches.
type SettlementItem struct {
	Source BatchSource `json:"source" validate:"required,oneof=receipt direct"`
	ID     string      `json:"id" validate:"required"`
}

// PaymentReceiptInput settles batches of one client.
type PaymentReceiptInput struct {
	ClientID  string           `json:"client_id" validate:"required"`
	Items     []SettlementItem `json:"items" validate:"required,min=1,dive"`
	Mode      PaymentMode      `json:"mode" validate:"required,oneof=cash cheque transfer draft"`
	Direction CashDirection    `json:"direction" validate:"omitempty,oneof=outflow inflow"`
	Date      time.Time        `json:"date"`
	Notes     string           `json:"notes"`
}

// SkippedItem reports a settlement item left out of a payment receipt.
type SkippedItem struct {
	Item   SettlementItem `json:"item"`
	Reason string         `json:"reason"`
}

// Skip reasons reported by AddPaymentReceipt.
const (
	SkipUnresolved     = "unresolved"
	SkipAlreadySettled = "already_settled"
	SkipUnpriced       = "unpriced"
	SkipDuplicate      = "duplicate"
)
