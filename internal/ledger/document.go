package ledger

import (
	"errors"
	"fmt"
	"time"
)

// Document is the whole ledger state as one JSON document. It is what
// backups, imports and the snapshot sync exchange.
type Document struct {
	Version           int64              `json:"version"`
	ExportedAt        time.Time          `json:"exported_at"`
	Settings          Settings           `json:"settings"`
	Counters          map[string]int     `json:"counters"`
	Clients           []Client           `json:"clients"`
	WholesaleClients  []WholesaleClient  `json:"wholesale_clients"`
	ClientOperations  []ClientOperation  `json:"client_operations"`
	DeletedOperations []DeletedOperation `json:"deleted_operations"`
	Receipts          []IntakeReceipt    `json:"receipts"`
	Batches           []ExtractionBatch  `json:"batches"`
	Tanks             []Tank             `json:"tanks"`
	Allocations       []StockAllocation  `json:"allocations"`
	Movements         []StockMovement    `json:"movements"`
	DeliveryNotes     []DeliveryNote     `json:"delivery_notes"`
	Invoices          []Invoice          `json:"invoices"`
	InvoicePayments   []InvoicePayment   `json:"invoice_payments"`
	PaymentReceipts   []PaymentReceipt   `json:"payment_receipts"`
}

func (d Document) clone() Document {
	out := d
	out.Counters = make(map[string]int, len(d.Counters))
	for k, v := range d.Counters {
		out.Counters[k] = v
	}
	out.Clients = append([]Client(nil), d.Clients...)
	out.WholesaleClients = append([]WholesaleClient(nil), d.WholesaleClients...)
	out.ClientOperations = append([]ClientOperation(nil), d.ClientOperations...)
	out.DeletedOperations = append([]DeletedOperation(nil), d.DeletedOperations...)
	out.Receipts = make([]IntakeReceipt, len(d.Receipts))
	for i, r := range d.Receipts {
		out.Receipts[i] = cloneReceipt(r)
	}
	out.Batches = make([]ExtractionBatch, len(d.Batches))
	for i, b := range d.Batches {
		out.Batches[i] = cloneBatch(b)
	}
	out.Tanks = append([]Tank(nil), d.Tanks...)
	out.Allocations = append([]StockAllocation(nil), d.Allocations...)
	out.Movements = make([]StockMovement, len(d.Movements))
	for i, m := range d.Movements {
		out.Movements[i] = cloneMovement(m)
	}
	out.DeliveryNotes = make([]DeliveryNote, len(d.DeliveryNotes))
	for i, n := range d.DeliveryNotes {
		out.DeliveryNotes[i] = cloneDeliveryNote(n)
	}
	out.Invoices = make([]Invoice, len(d.Invoices))
	for i, inv := range d.Invoices {
		out.Invoices[i] = cloneInvoice(inv)
	}
	out.InvoicePayments = append([]InvoicePayment(nil), d.InvoicePayments...)
	out.PaymentReceipts = make([]PaymentReceipt, len(d.PaymentReceipts))
	for i, pr := range d.PaymentReceipts {
		out.PaymentReceipts[i] = clonePaymentReceipt(pr)
	}
	return out
}

func cloneReceipt(r IntakeReceipt) IntakeReceipt {
	if r.ClosedAt != nil {
		t := *r.ClosedAt
		r.ClosedAt = &t
	}
	return r
}

func cloneBatch(b ExtractionBatch) ExtractionBatch {
	b.UnitPrice = copyDec(b.UnitPrice)
	return b
}

func cloneMovement(m StockMovement) StockMovement {
	m.UnitPrice = copyDec(m.UnitPrice)
	m.Amount = copyDec(m.Amount)
	return m
}

func cloneDeliveryNote(n DeliveryNote) DeliveryNote {
	if n.Payment != nil {
		p := *n.Payment
		n.Payment = &p
	}
	return n
}

func cloneInvoice(inv Invoice) Invoice {
	inv.Lines = append([]InvoiceLine(nil), inv.Lines...)
	return inv
}

func clonePaymentReceipt(pr PaymentReceipt) PaymentReceipt {
	pr.Lines = append([]SettlementLine(nil), pr.Lines...)
	return pr
}

// Validate checks the invariants a document must satisfy before it can
// replace the ledger state.
func (d Document) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	for _, r := range d.Receipts {
		if !r.NetWeight.Equal(r.GrossWeight.Sub(r.EmptyWeight)) || !r.NetWeight.IsPositive() {
			fail("receipt %s: net weight %s does not match gross - empty", r.Number, r.NetWeight)
		}
		if r.Status != ReceiptOpen && r.Status != ReceiptClosed {
			fail("receipt %s: unknown status %q", r.Number, r.Status)
		}
	}

	batchPerReceipt := make(map[string]int)
	for _, b := range d.Batches {
		if b.Source == SourceReceipt {
			batchPerReceipt[b.ReceiptID]++
		}
	}
	for _, r := range d.Receipts {
		n := batchPerReceipt[r.ID]
		if n > 1 {
			fail("receipt %s: %d extraction batches", r.Number, n)
		}
		if n == 1 && r.Status != ReceiptClosed {
			fail("receipt %s: extracted but still open", r.Number)
		}
	}

	if err := checkStruct(documentValidator, d.Settings); err != nil {
		fail("settings: %v", err)
	}

	tanks := make(map[string]bool, len(d.Tanks))
	for _, t := range d.Tanks {
		tanks[t.ID] = true
		if t.Quantity.IsNegative() || t.Quantity.GreaterThan(t.Capacity) {
			fail("tank %s: quantity %s outside [0, %s]", t.Code, t.Quantity, t.Capacity)
		}
	}

	batches := make(map[string]bool, len(d.Batches))
	for _, b := range d.Batches {
		batches[b.ID] = true
	}
	for _, a := range d.Allocations {
		if !batches[a.BatchID] {
			fail("allocation %s: unknown batch %s", a.ID, a.BatchID)
		}
		if !tanks[a.TankID] {
			fail("allocation %s: unknown tank %s", a.ID, a.TankID)
		}
	}
	for _, b := range d.Batches {
		allocated, limit := d.allocated(b.ID), d.allocatable(b)
		if allocated.GreaterThan(limit) {
			fail("batch %s: allocated %s exceeds allocatable %s", b.ID, allocated, limit)
		}
	}
	for _, m := range d.Movements {
		if !tanks[m.TankID] {
			fail("movement %s: unknown tank %s", m.ID, m.TankID)
		}
		if m.LinkedTankID != "" && !tanks[m.LinkedTankID] {
			fail("movement %s: unknown linked tank %s", m.ID, m.LinkedTankID)
		}
	}

	sources := make(map[string]string)
	for _, inv := range d.Invoices {
		if prev, ok := sources[inv.SourceID]; ok {
			fail("invoice %s: source %s already billed by %s", inv.Number, inv.SourceNumber, prev)
		}
		sources[inv.SourceID] = inv.Number
		if !inv.AmountPaid.Add(inv.Balance).Equal(inv.Total) {
			fail("invoice %s: paid + balance != total", inv.Number)
		}
		if inv.Balance.IsNegative() || inv.AmountPaid.IsNegative() {
			fail("invoice %s: paid %s exceeds total %s", inv.Number, inv.AmountPaid, inv.Total)
		}
		expected := inv
		expected.settle()
		if inv.Status != expected.Status {
			fail("invoice %s: status %q, balance implies %q", inv.Number, inv.Status, expected.Status)
		}
	}

	settled := make(map[string]string)
	for _, pr := range d.PaymentReceipts {
		for _, line := range pr.Lines {
			if prev, ok := settled[line.BatchID]; ok {
				fail("payment receipt %s: batch %s already settled by %s", pr.Number, line.BatchID, prev)
			}
			settled[line.BatchID] = pr.Number
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidDocument, errors.Join(errs...))
}
