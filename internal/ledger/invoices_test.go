package ledger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func serviceReceiptReady(t *testing.T, s *Store) IntakeReceipt {
	t.Helper()
	c := mustClient(t, s, TransactionService)
	r := mustReceipt(t, s, c.ID, "1000", "200")
	mustExtract(t, s, r.ID, "120")
	return r
}

func deliveryNoteWorth(t *testing.T, s *Store, qty, price string) DeliveryNote {
	t.Helper()
	tank := mustTank(t, s, "T-"+qty+"-"+price, "10000")
	batch := directBatch(t, s, "5000")
	_, err := s.AllocateToTank(AllocationInput{TankID: tank.ID, Source: SourceDirect, SourceID: batch.ID, Quantity: dec("5000")})
	require.NoError(t, err)
	buyer, err := s.AddWholesaleClient(WholesaleClientInput{Name: "Grossiste", PaymentTermsDays: 60})
	require.NoError(t, err)
	note, err := s.AddSale(SaleInput{ClientID: buyer.ID, TankID: tank.ID, Quantity: dec(qty), UnitPrice: dec(price), VATRate: decPtr("0"), StampDuty: decPtr("0")})
	require.NoError(t, err)
	return note
}

func TestInvoiceFromReceipt(t *testing.T) {
	s := newTestStore(t)
	r := serviceReceiptReady(t, s)

	inv, err := s.AddInvoiceFromReceipt(ReceiptInvoiceInput{ReceiptID: r.ID})
	require.NoError(t, err)
	require.Equal(t, "FAC0001", inv.Number)
	require.Equal(t, InvoiceFromReceipt, inv.Source)
	require.Equal(t, r.Number, inv.SourceNumber)
	require.Len(t, inv.Lines, 1)
	require.True(t, strings.HasPrefix(inv.Lines[0].Description, "Service de trituration - BR0001 ("))
	require.True(t, strings.HasSuffix(inv.Lines[0].Description, "kg d'olives)"))
	requireDec(t, "800", inv.Lines[0].Quantity)
	requireDec(t, "120", inv.ExclTax)
	requireDec(t, "22.8", inv.VATAmount)
	requireDec(t, "143.8", inv.Total)
	requireDec(t, "0", inv.AmountPaid)
	requireDec(t, "143.8", inv.Balance)
	require.Equal(t, InvoicePending, inv.Status)
	require.Equal(t, fixedNow.AddDate(0, 0, 30), inv.DueDate)

	_, err = s.AddInvoiceFromReceipt(ReceiptInvoiceInput{ReceiptID: r.ID})
	require.ErrorIs(t, err, ErrAlreadyInvoiced)
	require.Len(t, s.Invoices(), 1)
}

func TestInvoiceFromReceiptGuards(t *testing.T) {
	s := newTestStore(t)
	c := mustClient(t, s, TransactionService)
	open := mustReceipt(t, s, c.ID, "500", "100")

	_, err := s.AddInvoiceFromReceipt(ReceiptInvoiceInput{ReceiptID: open.ID})
	require.ErrorIs(t, err, ErrReceiptNotClosed)

	bawaza := mustClient(t, s, TransactionBawaza)
	br := mustReceipt(t, s, bawaza.ID, "500", "100")
	mustExtract(t, s, br.ID, "60")
	_, err = s.AddInvoiceFromReceipt(ReceiptInvoiceInput{ReceiptID: br.ID})
	require.ErrorIs(t, err, ErrNotServiceReceipt)

	_, err = s.AddInvoiceFromReceipt(ReceiptInvoiceInput{ReceiptID: "missing"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInvoiceFromDeliveryNoteCopiesAmounts(t *testing.T) {
	s := newTestStore(t)
	note := deliveryNoteWorth(t, s, "10", "100")

	inv, err := s.AddInvoiceFromDeliveryNote(DeliveryNoteInvoiceInput{DeliveryNoteID: note.ID})
	require.NoError(t, err)
	require.Equal(t, note.Amounts, inv.Amounts)
	require.Equal(t, "Huile d'olive - "+note.Number, inv.Lines[0].Description)
	require.Equal(t, fixedNow.AddDate(0, 0, 60), inv.DueDate)

	got, err := s.DeliveryNote(note.ID)
	require.NoError(t, err)
	require.True(t, got.Invoiced)
	require.Equal(t, inv.ID, got.InvoiceID)

	_, err = s.AddInvoiceFromDeliveryNote(DeliveryNoteInvoiceInput{DeliveryNoteID: note.ID})
	require.ErrorIs(t, err, ErrAlreadyInvoiced)
}

func TestInvoicePaymentBalance(t *testing.T) {
	s := newTestStore(t)
	note := deliveryNoteWorth(t, s, "10", "100")
	inv, err := s.AddInvoiceFromDeliveryNote(DeliveryNoteInvoiceInput{DeliveryNoteID: note.ID})
	require.NoError(t, err)
	requireDec(t, "1000", inv.Total)

	_, _, err = s.AddInvoicePayment(InvoicePaymentInput{InvoiceID: inv.ID, Amount: dec("1200"), Mode: ModeTransfer})
	require.ErrorIs(t, err, ErrPaymentExceedsBalance)
	got, err := s.Invoice(inv.ID)
	require.NoError(t, err)
	requireDec(t, "0", got.AmountPaid)
	require.Empty(t, s.InvoicePayments(inv.ID))

	payment, got, err := s.AddInvoicePayment(InvoicePaymentInput{InvoiceID: inv.ID, Amount: dec("1000"), Mode: ModeTransfer})
	require.NoError(t, err)
	requireDec(t, "1000", payment.Amount)
	requireDec(t, "1000", got.AmountPaid)
	requireDec(t, "0", got.Balance)
	require.Equal(t, InvoicePaid, got.Status)
	require.Len(t, s.InvoicePayments(inv.ID), 1)
}

func TestInvoicePartialPayments(t *testing.T) {
	s := newTestStore(t)
	note := deliveryNoteWorth(t, s, "10", "100")
	inv, err := s.AddInvoiceFromDeliveryNote(DeliveryNoteInvoiceInput{DeliveryNoteID: note.ID})
	require.NoError(t, err)

	_, got, err := s.AddInvoicePayment(InvoicePaymentInput{InvoiceID: inv.ID, Amount: dec("400"), Mode: ModeCash})
	require.NoError(t, err)
	require.Equal(t, InvoicePartiallyPaid, got.Status)
	requireDec(t, "600", got.Balance)
	requireDec(t, "600", s.Outstanding(note.ClientID))

	_, got, err = s.AddInvoicePayment(InvoicePaymentInput{InvoiceID: inv.ID, Amount: dec("600"), Mode: ModeCash})
	require.NoError(t, err)
	require.Equal(t, InvoicePaid, got.Status)
	requireDec(t, "0", s.Outstanding(note.ClientID))

	_, _, err = s.AddInvoicePayment(InvoicePaymentInput{InvoiceID: inv.ID, Amount: dec("0.001"), Mode: ModeCash})
	require.ErrorIs(t, err, ErrPaymentExceedsBalance)
}

func TestUpdateInvoiceRecomputesFromPreTax(t *testing.T) {
	s := newTestStore(t)
	note := deliveryNoteWorth(t, s, "10", "100")
	inv, err := s.AddInvoiceFromDeliveryNote(DeliveryNoteInvoiceInput{DeliveryNoteID: note.ID})
	require.NoError(t, err)

	notes := "relance"
	got, err := s.UpdateInvoice(inv.ID, InvoiceUpdate{VATRate: decPtr("19"), StampDuty: decPtr("1"), Notes: &notes})
	require.NoError(t, err)
	requireDec(t, "1000", got.ExclTax)
	requireDec(t, "190", got.VATAmount)
	requireDec(t, "1191", got.Total)
	requireDec(t, "1191", got.Balance)
	require.Equal(t, "relance", got.Notes)

	_, _, err = s.AddInvoicePayment(InvoicePaymentInput{InvoiceID: inv.ID, Amount: dec("1100"), Mode: ModeCash})
	require.NoError(t, err)

	_, err = s.UpdateInvoice(inv.ID, InvoiceUpdate{VATRate: decPtr("0"), StampDuty: decPtr("0")})
	require.ErrorIs(t, err, ErrTotalBelowPaid)
	got, err = s.Invoice(inv.ID)
	require.NoError(t, err)
	requireDec(t, "1191", got.Total)
	requireDec(t, "91", got.Balance)
	require.Equal(t, InvoicePartiallyPaid, got.Status)

	got, err = s.UpdateInvoice(inv.ID, InvoiceUpdate{VATRate: decPtr("10")})
	require.NoError(t, err)
	requireDec(t, "1101", got.Total)
	requireDec(t, "1", got.Balance)
}

func TestInvoicedWholesaleClientCannotBeDeleted(t *testing.T) {
	src := newTestStore(t)
	note := deliveryNoteWorth(t, src, "10", "100")
	_, err := src.AddInvoiceFromDeliveryNote(DeliveryNoteInvoiceInput{DeliveryNoteID: note.ID})
	require.NoError(t, err)

	doc := src.Document()
	doc.DeliveryNotes = nil
	s := newTestStore(t)
	require.NoError(t, s.Import(doc))

	require.ErrorIs(t, s.DeleteWholesaleClient(note.ClientID), ErrClientInUse)
	require.Len(t, s.WholesaleClients(), 1)
}
