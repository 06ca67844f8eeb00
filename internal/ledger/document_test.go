package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func populated(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t)
	tank := mustTank(t, s, "R1", "1000")
	c := mustClient(t, s, TransactionBawaza)
	r := pricedBawazaReceipt(t, s, c.ID, tank.ID, "100", "10")
	_, _, err := s.AddPaymentReceipt(PaymentReceiptInput{ClientID: c.ID, Items: []SettlementItem{{Source: SourceReceipt, ID: r.ID}}, Mode: ModeCash})
	require.NoError(t, err)
	return s
}

func TestDocumentIsACopy(t *testing.T) {
	s := populated(t)
	doc := s.Document()
	require.Equal(t, s.Version(), doc.Version)

	doc.Tanks[0].Quantity = dec("999")
	*doc.Batches[0].UnitPrice = dec("1")
	doc.PaymentReceipts[0].Lines[0].Amount = dec("0")

	fresh := s.Document()
	requireDec(t, "1", fresh.Tanks[0].Quantity)
	requireDec(t, "10", *fresh.Batches[0].UnitPrice)
	requireDec(t, "1000", fresh.PaymentReceipts[0].Lines[0].Amount)
}

func TestDocumentJSONRoundTripImports(t *testing.T) {
	src := populated(t)
	raw, err := json.Marshal(src.Document())
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(raw, &doc))

	dst := newTestStore(t)
	require.NoError(t, dst.Import(doc))
	require.GreaterOrEqual(t, dst.Version(), src.Version())
	require.Len(t, dst.Receipts(), 1)
	require.Len(t, dst.PaymentReceipts(), 1)

	c := mustClient(t, dst, TransactionService)
	require.Equal(t, "CLT0002", c.Code)
}

func TestImportReconcilesMissingCounters(t *testing.T) {
	doc := populated(t).Document()
	doc.Counters = nil

	s := newTestStore(t)
	require.NoError(t, s.Import(doc))

	c := mustClient(t, s, TransactionService)
	require.Equal(t, "CLT0002", c.Code)
	r := mustReceipt(t, s, c.ID, "300", "100")
	require.Equal(t, "BR0002", r.Number)
}

func TestImportRejectsBrokenDocuments(t *testing.T) {
	base := populated(t).Document()
	cases := map[string]func(d *Document){
		"tank overflow": func(d *Document) { d.Tanks[0].Quantity = d.Tanks[0].Capacity.Add(dec("1")) },
		"net weight":    func(d *Document) { d.Receipts[0].NetWeight = dec("1") },
		"invoice balance": func(d *Document) {
			d.Invoices = append(d.Invoices, Invoice{ID: "inv", Number: "FAC0001", SourceID: "x", Amounts: Amounts{Total: dec("10")}})
		},
		"double settlement": func(d *Document) {
			dup := clonePaymentReceipt(d.PaymentReceipts[0])
			dup.Number = "REG-OUT-0002"
			d.PaymentReceipts = append(d.PaymentReceipts, dup)
		},
		"open extracted receipt": func(d *Document) { d.Receipts[0].Status = ReceiptOpen },
		"over allocated batch": func(d *Document) {
			d.Allocations = append(d.Allocations, StockAllocation{ID: "extra", BatchID: d.Batches[0].ID, TankID: d.Tanks[0].ID, Quantity: dec("25")})
		},
		"mill share above 100":        func(d *Document) { d.Settings.MillSharePercent = dec("250") },
		"vat rate above 100":          func(d *Document) { d.Settings.DefaultVATRate = dec("120") },
		"allocation to unknown tank":  func(d *Document) { d.Allocations[0].TankID = "ghost" },
		"allocation of unknown batch": func(d *Document) { d.Allocations[0].BatchID = "ghost" },
		"movement on unknown tank":    func(d *Document) { d.Movements[0].TankID = "ghost" },
		"overpaid invoice": func(d *Document) {
			d.Invoices = append(d.Invoices, Invoice{ID: "inv", Number: "FAC0001", SourceID: "x", Amounts: Amounts{Total: dec("10")},
				AmountPaid: dec("15"), Balance: dec("-5"), Status: InvoicePaid})
		},
		"stale invoice status": func(d *Document) {
			d.Invoices = append(d.Invoices, Invoice{ID: "inv", Number: "FAC0001", SourceID: "x", Amounts: Amounts{Total: dec("10")},
				AmountPaid: dec("4"), Balance: dec("6"), Status: InvoicePending})
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			doc := base.clone()
			mutate(&doc)

			s := newTestStore(t)
			err := s.Import(doc)
			require.ErrorIs(t, err, ErrInvalidDocument)
			require.Zero(t, s.Version())
			require.Empty(t, s.Receipts())
		})
	}
}

func TestVersionAdvancesOnlyOnCommit(t *testing.T) {
	s := newTestStore(t)
	require.Zero(t, s.Version())

	mustClient(t, s, TransactionService)
	require.EqualValues(t, 1, s.Version())

	_, err := s.AddTank(TankInput{Code: "", Capacity: dec("10")})
	require.Error(t, err)
	_, err = s.SetTankUnavailable("missing", true)
	require.Error(t, err)
	require.EqualValues(t, 1, s.Version())
}

func TestImportedMillShareBoundsLaterAllocations(t *testing.T) {
	doc := populated(t).Document()
	doc.Settings.MillSharePercent = dec("250")

	s := newTestStore(t)
	require.ErrorIs(t, s.Import(doc), ErrInvalidDocument)

	doc.Settings.MillSharePercent = dec("20")
	require.NoError(t, s.Import(doc))
	batch := s.Batches()[0]
	_, err := s.AllocateToTank(AllocationInput{TankID: doc.Tanks[0].ID, Source: SourceReceipt, SourceID: batch.ReceiptID, Quantity: dec("20"), UnitPrice: decPtr("10")})
	require.ErrorIs(t, err, ErrAllocationExceedsBatch)
	allocated, err := s.AllocatedQuantity(batch.ID)
	require.NoError(t, err)
	requireDec(t, "1", allocated)
}

func TestUpdateSettingsKeepsAllocationsCovered(t *testing.T) {
	s := populated(t)
	settings := s.Settings()
	settings.MillSharePercent = dec("0.5")

	_, err := s.UpdateSettings(settings)
	require.ErrorIs(t, err, ErrAllocationExceedsBatch)
	requireDec(t, "20", s.Settings().MillSharePercent)

	settings.MillSharePercent = dec("1")
	_, err = s.UpdateSettings(settings)
	require.NoError(t, err)
	require.NoError(t, s.Document().Validate())
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	s := newTestStore(t)
	lists := map[string]any{
		"tanks":              s.Tanks(),
		"clients":            s.Clients(),
		"wholesale clients":  s.WholesaleClients(),
		"allocations":        s.Allocations(""),
		"movements":          s.MovementsForTank(""),
		"invoice payments":   s.InvoicePayments(""),
		"client operations":  s.ClientOperations(),
		"deleted operations": s.DeletedOperations(),
	}
	for name, list := range lists {
		raw, err := json.Marshal(list)
		require.NoError(t, err)
		require.JSONEq(t, "[]", string(raw), name)
	}
}
