package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tells how the mill deals with a client's olives.
type TransactionType string

const (
	// TransactionService charges a per-kg processing fee; the oil stays with the client.
	TransactionService TransactionType = "service"
	// TransactionBawaza buys the mill's share of the produced oil from the client.
	TransactionBawaza TransactionType = "bawaza"
	// TransactionPurchaseAtSource buys already extracted oil.
	TransactionPurchaseAtSource TransactionType = "purchase_at_source"
)

// ReceiptStatus enumerates intake receipt states.
type ReceiptStatus string

const (
	ReceiptOpen   ReceiptStatus = "open"
	ReceiptClosed ReceiptStatus = "closed"
)

// BatchSource tells whether a batch came from a weighbridge receipt.
type BatchSource string

const (
	SourceReceipt BatchSource = "receipt"
	SourceDirect  BatchSource = "direct"
)

// TankStatus enumerates tank states.
type TankStatus string

const (
	TankAvailable   TankStatus = "available"
	TankFull        TankStatus = "full"
	TankUnavailable TankStatus = "unavailable"
)

// MovementType enumerates stock movement kinds.
type MovementType string

const (
	MovementInflow      MovementType = "inflow"
	MovementSaleOutflow MovementType = "sale_outflow"
	MovementTransferIn  MovementType = "transfer_in"
	MovementTransferOut MovementType = "transfer_out"
)

// PaymentStatus enumerates delivery note payment states.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// InvoiceStatus enumerates invoice settlement states.
type InvoiceStatus string

const (
	InvoicePending       InvoiceStatus = "pending"
	InvoicePartiallyPaid InvoiceStatus = "partially_paid"
	InvoicePaid          InvoiceStatus = "paid"
)

// InvoiceSource enumerates the documents an invoice can bill.
type InvoiceSource string

const (
	InvoiceFromReceipt      InvoiceSource = "receipt"
	InvoiceFromDeliveryNote InvoiceSource = "delivery_note"
)

// CashDirection is the flow of a payment receipt seen from the mill.
type CashDirection string

const (
	// CashOutflow is the mill paying a client for oil.
	CashOutflow CashDirection = "outflow"
	// CashInflow is a client paying the mill.
	CashInflow CashDirection = "inflow"
)

// OperationType enumerates client account operations.
type OperationType string

const (
	OperationCapital         OperationType = "capital"
	OperationAdvance         OperationType = "advance"
	OperationReceiptReceived OperationType = "receipt_received"
)

// PaymentMode enumerates accepted settlement instruments.
type PaymentMode string

const (
	ModeCash     PaymentMode = "cash"
	ModeCheque   PaymentMode = "cheque"
	ModeTransfer PaymentMode = "transfer"
	ModeDraft    PaymentMode = "draft"
)

// Client delivers olives to the mill.
type Client struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	TransactionType TransactionType `json:"transaction_type"`
	Phone           string          `json:"phone,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// WholesaleClient buys oil in bulk.
type WholesaleClient struct {
	ID               string    `json:"id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	TaxID            string    `json:"tax_id,omitempty"`
	Address          string    `json:"address,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Email            string    `json:"email,omitempty"`
	PaymentTermsDays int       `json:"payment_terms_days"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ClientOperation is a capital, advance or settlement entry on a client account.
type ClientOperation struct {
	ID            string          `json:"id"`
	ClientID      string          `json:"client_id"`
	Type          OperationType   `json:"type"`
	Date          time.Time       `json:"date"`
	Label         string          `json:"label,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	ReceiptNumber string          `json:"receipt_number"`
	CreatedAt     time.Time       `json:"created_at"`
}

// DeletedOperation is the tombstone left when a client operation is removed.
type DeletedOperation struct {
	ID            string          `json:"id"`
	OperationID   string          `json:"operation_id"`
	ClientID      string          `json:"client_id"`
	Type          OperationType   `json:"type"`
	Date          time.Time       `json:"date"`
	Label         string          `json:"label,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	ReceiptNumber string          `json:"receipt_number"`
	DeletedAt     time.Time       `json:"deleted_at"`
	Reason        string          `json:"reason,omitempty"`
}

// IntakeReceipt is one weighbridge ticket. NetWeight is fixed at creation.
type IntakeReceipt struct {
	ID          string          `json:"id"`
	Number      string          `json:"number"`
	Date        time.Time       `json:"date"`
	ClientID    string          `json:"client_id"`
	GrossWeight decimal.Decimal `json:"gross_weight"`
	EmptyWeight decimal.Decimal `json:"empty_weight"`
	NetWeight   decimal.Decimal `json:"net_weight"`
	Vehicle     string          `json:"vehicle,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Status      ReceiptStatus   `json:"status"`
	ClosedAt    *time.Time      `json:"closed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ExtractionBatch records one pressing run.
type ExtractionBatch struct {
	ID          string           `json:"id"`
	Source      BatchSource      `json:"source"`
	ReceiptID   string           `json:"receipt_id,omitempty"`
	LotNumber   string           `json:"lot_number,omitempty"`
	ClientID    string           `json:"client_id,omitempty"`
	ClientName  string           `json:"client_name,omitempty"`
	OliveWeight decimal.Decimal  `json:"olive_weight"`
	Date        time.Time        `json:"date"`
	OilQuantity decimal.Decimal  `json:"oil_quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Tank is a physical oil container.
type Tank struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Capacity  decimal.Decimal `json:"capacity"`
	Quantity  decimal.Decimal `json:"quantity"`
	Status    TankStatus      `json:"status"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// StockAllocation links part of a batch to a tank.
type StockAllocation struct {
	ID        string          `json:"id"`
	Source    BatchSource     `json:"source"`
	BatchID   string          `json:"batch_id"`
	ReceiptID string          `json:"receipt_id,omitempty"`
	TankID    string          `json:"tank_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"created_at"`
}

// StockMovement is an append-only tank quantity change.
type StockMovement struct {
	ID           string           `json:"id"`
	TankID       string           `json:"tank_id"`
	Type         MovementType     `json:"type"`
	Quantity     decimal.Decimal  `json:"quantity"`
	Date         time.Time        `json:"date"`
	Reference    string           `json:"reference,omitempty"`
	LinkedTankID string           `json:"linked_tank_id,omitempty"`
	ClientID     string           `json:"client_id,omitempty"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// DeliveryPayment details how a delivery note was settled.
type DeliveryPayment struct {
	Date      time.Time   `json:"date"`
	Mode      PaymentMode `json:"mode"`
	Reference string      `json:"reference,omitempty"`
	Notes     string      `json:"notes,omitempty"`
}

// DeliveryNote is a wholesale sale drawn from one tank.
type DeliveryNote struct {
	ID        string          `json:"id"`
	Number    string          `json:"number"`
	Date      time.Time       `json:"date"`
	ClientID  string          `json:"client_id"`
	TankID    string          `json:"tank_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amounts
	Invoiced      bool             `json:"invoiced"`
	InvoiceID     string           `json:"invoice_id,omitempty"`
	PaymentStatus PaymentStatus    `json:"payment_status"`
	Payment       *DeliveryPayment `json:"payment,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// InvoiceLine is one billed item.
type InvoiceLine struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// Invoice bills exactly one closed receipt or one delivery note.
type Invoice struct {
	ID           string        `json:"id"`
	Number       string        `json:"number"`
	Date         time.Time     `json:"date"`
	DueDate      time.Time     `json:"due_date"`
	ClientID     string        `json:"client_id"`
	Source       InvoiceSource `json:"source"`
	SourceID     string        `json:"source_id"`
	SourceNumber string        `json:"source_number"`
	Lines        []InvoiceLine `json:"lines"`
	Amounts
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Balance    decimal.Decimal `json:"balance"`
	Status     InvoiceStatus   `json:"status"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// InvoicePayment is one settlement applied to an invoice.
type InvoicePayment struct {
	ID        string          `json:"id"`
	InvoiceID string          `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Mode      PaymentMode     `json:"mode"`
	Date      time.Time       `json:"date"`
	Reference string          `json:"reference,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// SettlementLine pays for one extraction batch.
type SettlementLine struct {
	BatchID     string          `json:"batch_id"`
	Source      BatchSource     `json:"source"`
	Reference   string          `json:"reference"`
	Date        time.Time       `json:"date"`
	OliveWeight decimal.Decimal `json:"olive_weight"`
	OilQuantity decimal.Decimal `json:"oil_quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// PaymentReceipt settles one or more batches of a single client.
type PaymentReceipt struct {
	ID          string           `json:"id"`
	Number      string           `json:"number"`
	Direction   CashDirection    `json:"direction"`
	Date        time.Time        `json:"date"`
	ClientID    string           `json:"client_id"`
	Lines       []SettlementLine `json:"lines"`
	Total       decimal.Decimal  `json:"total"`
	PaymentMode PaymentMode      `json:"payment_mode"`
	Notes       string           `json:"notes,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Settings is the mill configuration used for pricing defaults.
type Settings struct {
	CompanyName               string          `json:"company_name" validate:"max=200"`
	Address                   string          `json:"address" validate:"max=300"`
	Phone                     string          `json:"phone" validate:"max=50"`
	TaxID                     string          `json:"tax_id" validate:"max=50"`
	ServicePricePerKg         decimal.Decimal `json:"service_price_per_kg" validate:"gte=0"`
	BasePurchasePricePerLiter decimal.Decimal `json:"base_purchase_price_per_liter" validate:"gte=0"`
	MillSharePercent          decimal.Decimal `json:"mill_share_percent" validate:"gte=0,lte=100"`
	DefaultVATRate            decimal.Decimal `json:"default_vat_rate" validate:"gte=0,lte=100"`
	DefaultStampDuty          decimal.Decimal `json:"default_stamp_duty" validate:"gte=0"`
}
