package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultPaymentTermsDays = 30

func dueDateOr(due, date time.Time, days int) time.Time {
	if !due.IsZero() {
		return due.UTC()
	}
	if days <= 0 {
		days = defaultPaymentTermsDays
	}
	return date.AddDate(0, 0, days)
}

// settle recomputes balance and status from total and amount paid.
func (inv *Invoice) settle() {
	inv.Balance = inv.Total.Sub(inv.AmountPaid)
	switch {
	case !inv.Balance.IsPositive():
		inv.Status = InvoicePaid
	case inv.AmountPaid.IsPositive():
		inv.Status = InvoicePartiallyPaid
	default:
		inv.Status = InvoicePending
	}
}

// AddInvoiceFromReceipt bills the processing of a closed service receipt.
func (s *Store) AddInvoiceFromReceipt(in ReceiptInvoiceInput) (Invoice, error) {
	if err := s.check(in); err != nil {
		return Invoice{}, err
	}
	var out Invoice
	err := s.apply("add_invoice_from_receipt", func(tx *txn) error {
		ri := tx.doc.receiptIndex(in.ReceiptID)
		if ri < 0 {
			return notFound("receipt", in.ReceiptID)
		}
		r := tx.doc.Receipts[ri]
		if r.Status != ReceiptClosed {
			return fmt.Errorf("%w: %s", ErrReceiptNotClosed, r.Number)
		}
		if prev := tx.doc.invoiceForSource(r.ID); prev >= 0 {
			return fmt.Errorf("%w: %s billed by %s", ErrAlreadyInvoiced, r.Number, tx.doc.Invoices[prev].Number)
		}
		ci := tx.doc.clientIndex(r.ClientID)
		if ci < 0 {
			return notFound("client", r.ClientID)
		}
		if tx.doc.Clients[ci].TransactionType != TransactionService {
			return fmt.Errorf("%w: %s is %s", ErrNotServiceReceipt, r.Number, tx.doc.Clients[ci].TransactionType)
		}
		if tx.doc.batchForReceipt(r.ID) < 0 {
			return fmt.Errorf("%w: %s", ErrBatchMissing, r.Number)
		}

		price := round(orDefault(in.UnitPrice, tx.doc.Settings.ServicePricePerKg))
		line := InvoiceLine{
			Description: serviceLineLabel(r.Number, r.NetWeight),
			Quantity:    r.NetWeight,
			UnitPrice:   price,
			Amount:      round(r.NetWeight.Mul(price)),
		}
		date := tx.dateOr(in.Date)
		out = Invoice{
			ID:           tx.newID(),
			Number:       tx.doc.next(PrefixInvoice),
			Date:         date,
			DueDate:      dueDateOr(in.DueDate, date, 0),
			ClientID:     r.ClientID,
			Source:       InvoiceFromReceipt,
			SourceID:     r.ID,
			SourceNumber: r.Number,
			Lines:        []InvoiceLine{line},
			Amounts: ComputeAmounts(
				line.Amount,
				orDefault(in.VATRate, tx.doc.Settings.DefaultVATRate),
				orDefault(in.StampDuty, tx.doc.Settings.DefaultStampDuty),
			),
			AmountPaid: zero,
			Notes:      in.Notes,
			CreatedAt:  tx.now,
			UpdatedAt:  tx.now,
		}
		out.settle()
		tx.doc.Invoices = append(tx.doc.Invoices, out)
		out = cloneInvoice(out)
		return nil
	})
	return out, err
}

// AddInvoiceFromDeliveryNote bills a delivery note with its amounts as issued.
func (s *Store) AddInvoiceFromDeliveryNote(in DeliveryNoteInvoiceInput) (Invoice, error) {
	if err := s.check(in); err != nil {
		return Invoice{}, err
	}
	var out Invoice
	err := s.apply("add_invoice_from_delivery_note", func(tx *txn) error {
		ni := tx.doc.deliveryNoteIndex(in.DeliveryNoteID)
		if ni < 0 {
			return notFound("delivery note", in.DeliveryNoteID)
		}
		n := &tx.doc.DeliveryNotes[ni]
		if n.Invoiced || tx.doc.invoiceForSource(n.ID) >= 0 {
			return fmt.Errorf("%w: %s", ErrAlreadyInvoiced, n.Number)
		}
		terms := 0
		if ci := tx.doc.wholesaleClientIndex(n.ClientID); ci >= 0 {
			terms = tx.doc.WholesaleClients[ci].PaymentTermsDays
		}
		date := tx.dateOr(in.Date)
		out = Invoice{
			ID:           tx.newID(),
			Number:       tx.doc.next(PrefixInvoice),
			Date:         date,
			DueDate:      dueDateOr(in.DueDate, date, terms),
			ClientID:     n.ClientID,
			Source:       InvoiceFromDeliveryNote,
			SourceID:     n.ID,
			SourceNumber: n.Number,
			Lines: []InvoiceLine{{
				Description: oilLineLabel(n.Number),
				Quantity:    n.Quantity,
				UnitPrice:   n.UnitPrice,
				Amount:      n.ExclTax,
			}},
			Amounts:    n.Amounts,
			AmountPaid: zero,
			Notes:      in.Notes,
			CreatedAt:  tx.now,
			UpdatedAt:  tx.now,
		}
		out.settle()
		n.Invoiced = true
		n.InvoiceID = out.ID
		tx.doc.Invoices = append(tx.doc.Invoices, out)
		out = cloneInvoice(out)
		return nil
	})
	return out, err
}

// UpdateInvoice edits dates and notes freely. A VAT rate or stamp duty change
// recomputes the total from the stored pre-tax amount and may not bring the
// total below what was already paid.
func (s *Store) UpdateInvoice(id string, in InvoiceUpdate) (Invoice, error) {
	if err := s.check(in); err != nil {
		return Invoice{}, err
	}
	var out Invoice
	err := s.apply("update_invoice", func(tx *txn) error {
		i := tx.doc.invoiceIndex(id)
		if i < 0 {
			return notFound("invoice", id)
		}
		inv := &tx.doc.Invoices[i]
		if in.VATRate != nil || in.StampDuty != nil {
			amounts := ComputeAmounts(
				inv.ExclTax,
				orDefault(in.VATRate, inv.VATRate),
				orDefault(in.StampDuty, inv.StampDuty),
			)
			if amounts.Total.LessThan(inv.AmountPaid) {
				return fmt.Errorf("%w: %s paid %s, new total %s", ErrTotalBelowPaid, inv.Number, inv.AmountPaid, amounts.Total)
			}
			inv.Amounts = amounts
			inv.settle()
		}
		if in.Date != nil && !in.Date.IsZero() {
			inv.Date = in.Date.UTC()
		}
		if in.DueDate != nil && !in.DueDate.IsZero() {
			inv.DueDate = in.DueDate.UTC()
		}
		if in.Notes != nil {
			inv.Notes = *in.Notes
		}
		inv.UpdatedAt = tx.now
		out = cloneInvoice(*inv)
		return nil
	})
	return out, err
}

// AddInvoicePayment applies a payment. A payment larger than the balance is
// rejected whole; one equal to the balance closes the invoice.
func (s *Store) AddInvoicePayment(in InvoicePaymentInput) (InvoicePayment, Invoice, error) {
	if err := s.check(in); err != nil {
		return InvoicePayment{}, Invoice{}, err
	}
	var (
		payment InvoicePayment
		invoice Invoice
	)
	err := s.apply("add_invoice_payment", func(tx *txn) error {
		i := tx.doc.invoiceIndex(in.InvoiceID)
		if i < 0 {
			return notFound("invoice", in.InvoiceID)
		}
		inv := &tx.doc.Invoices[i]
		amount := round(in.Amount)
		if amount.GreaterThan(inv.Balance) {
			return fmt.Errorf("%w: %s balance %s, payment %s", ErrPaymentExceedsBalance, inv.Number, inv.Balance, amount)
		}
		payment = InvoicePayment{
			ID:        tx.newID(),
			InvoiceID: inv.ID,
			Amount:    amount,
			Mode:      in.Mode,
			Date:      tx.dateOr(in.Date),
			Reference: strings.TrimSpace(in.Reference),
			Notes:     in.Notes,
			CreatedAt: tx.now,
		}
		inv.AmountPaid = inv.AmountPaid.Add(amount)
		inv.settle()
		inv.UpdatedAt = tx.now
		tx.doc.InvoicePayments = append(tx.doc.InvoicePayments, payment)
		invoice = cloneInvoice(*inv)
		return nil
	})
	return payment, invoice, err
}

// Invoice returns an invoice by id.
func (s *Store) Invoice(id string) (Invoice, error) {
	var (
		out Invoice
		err error
	)
	s.view(func(d *Document) {
		i := d.invoiceIndex(id)
		if i < 0 {
			err = notFound("invoice", id)
			return
		}
		out = cloneInvoice(d.Invoices[i])
	})
	return out, err
}

// Invoices lists invoices in creation order.
func (s *Store) Invoices() []Invoice {
	var out []Invoice
	s.view(func(d *Document) {
		out = make([]Invoice, 0, len(d.Invoices))
		for _, inv := range d.Invoices {
			out = append(out, cloneInvoice(inv))
		}
	})
	return out
}

// InvoicePayments lists the payments applied to an invoice.
func (s *Store) InvoicePayments(invoiceID string) []InvoicePayment {
	out := make([]InvoicePayment, 0)
	s.view(func(d *Document) {
		for _, p := range d.InvoicePayments {
			if invoiceID == "" || p.InvoiceID == invoiceID {
				out = append(out, p)
			}
		}
	})
	return out
}

// Outstanding sums the balances of unpaid invoices of a client.
func (s *Store) Outstanding(clientID string) decimal.Decimal {
	sum := zero
	s.view(func(d *Document) {
		for _, inv := range d.Invoices {
			if inv.ClientID == clientID && inv.Status != InvoicePaid {
				sum = sum.Add(inv.Balance)
			}
		}
	})
	return sum
}
