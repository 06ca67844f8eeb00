package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// pricedBawazaReceipt returns a closed bawaza receipt whose batch carries a
// unit price.
func pricedBawazaReceipt(t *testing.T, s *Store, clientID, tankID, oil, price string) IntakeReceipt {
	t.Helper()
	r := mustReceipt(t, s, clientID, "1000", "200")
	mustExtract(t, s, r.ID, oil)
	_, err := s.AllocateToTank(AllocationInput{TankID: tankID, Source: SourceReceipt, SourceID: r.ID, Quantity: dec("1"), UnitPrice: decPtr(price)})
	require.NoError(t, err)
	return r
}

func TestPaymentReceiptSkipsSettledBatches(t *testing.T) {
	s := newTestStore(t)
	tank := mustTank(t, s, "R1", "1000")
	c := mustClient(t, s, TransactionBawaza)
	first := pricedBawazaReceipt(t, s, c.ID, tank.ID, "100", "10")
	second := pricedBawazaReceipt(t, s, c.ID, tank.ID, "50", "12")

	pr, skipped, err := s.AddPaymentReceipt(PaymentReceiptInput{
		ClientID: c.ID,
		Items:    []SettlementItem{{Source: SourceReceipt, ID: first.ID}},
		Mode:     ModeCash,
	})
	require.NoError(t, err)
	require.Empty(t, skipped)
	require.Equal(t, "REG-OUT-0001", pr.Number)
	require.Equal(t, CashOutflow, pr.Direction)
	requireDec(t, "1000", pr.Total)

	pr, skipped, err = s.AddPaymentReceipt(PaymentReceiptInput{
		ClientID: c.ID,
		Items: []SettlementItem{
			{Source: SourceReceipt, ID: first.ID},
			{Source: SourceReceipt, ID: second.ID},
		},
		Mode: ModeCheque,
	})
	require.NoError(t, err)
	require.Len(t, pr.Lines, 1)
	require.Equal(t, second.Number, pr.Lines[0].Reference)
	requireDec(t, "600", pr.Total)
	require.Equal(t, []SkippedItem{{Item: SettlementItem{Source: SourceReceipt, ID: first.ID}, Reason: SkipAlreadySettled}}, skipped)

	before := s.Document()
	_, skipped, err = s.AddPaymentReceipt(PaymentReceiptInput{
		ClientID: c.ID,
		Items:    []SettlementItem{{Source: SourceReceipt, ID: first.ID}},
		Mode:     ModeCash,
	})
	require.ErrorIs(t, err, ErrNothingToSettle)
	require.Len(t, skipped, 1)
	after := s.Document()
	require.Len(t, after.PaymentReceipts, len(before.PaymentReceipts))
	require.Len(t, after.ClientOperations, len(before.ClientOperations))
}

func TestPaymentReceiptRecordsClientOperation(t *testing.T) {
	s := newTestStore(t)
	tank := mustTank(t, s, "R1", "1000")
	c := mustClient(t, s, TransactionBawaza)
	r := pricedBawazaReceipt(t, s, c.ID, tank.ID, "100", "10.5")

	pr, _, err := s.AddPaymentReceipt(PaymentReceiptInput{ClientID: c.ID, Items: []SettlementItem{{Source: SourceReceipt, ID: r.ID}}, Mode: ModeCash})
	require.NoError(t, err)

	stmt, err := s.ClientStatement(c.ID)
	require.NoError(t, err)
	require.Len(t, stmt.Operations, 1)
	op := stmt.Operations[0]
	require.Equal(t, OperationReceiptReceived, op.Type)
	require.Equal(t, "REC-RCV-0001", op.ReceiptNumber)
	requireDec(t, "1050", op.Amount)
	require.Contains(t, op.Label, pr.Number)

	_, err = s.DeleteClientOperation(op.ID, "")
	require.ErrorIs(t, err, ErrSystemOperation)
}

func TestPaymentReceiptFilters(t *testing.T) {
	s := newTestStore(t)
	tank := mustTank(t, s, "R1", "1000")
	owner := mustClient(t, s, TransactionBawaza)
	other := mustClient(t, s, TransactionBawaza)
	priced := pricedBawazaReceipt(t, s, owner.ID, tank.ID, "100", "10")
	foreign := pricedBawazaReceipt(t, s, other.ID, tank.ID, "100", "10")
	unpricedReceipt := mustReceipt(t, s, owner.ID, "400", "100")
	mustExtract(t, s, unpricedReceipt.ID, "40")

	pr, skipped, err := s.AddPaymentReceipt(PaymentReceiptInput{
		ClientID: owner.ID,
		Items: []SettlementItem{
			{Source: SourceReceipt, ID: priced.ID},
			{Source: SourceReceipt, ID: priced.ID},
			{Source: SourceReceipt, ID: foreign.ID},
			{Source: SourceReceipt, ID: unpricedReceipt.ID},
			{Source: SourceDirect, ID: "missing"},
		},
		Mode: ModeTransfer,
	})
	require.NoError(t, err)
	require.Len(t, pr.Lines, 1)
	reasons := make([]string, 0, len(skipped))
	for _, sk := range skipped {
		reasons = append(reasons, sk.Reason)
	}
	require.Equal(t, []string{SkipDuplicate, SkipUnresolved, SkipUnpriced, SkipUnresolved}, reasons)
}

func TestPaymentReceiptInflowNumbering(t *testing.T) {
	s := newTestStore(t)
	tank := mustTank(t, s, "R1", "1000")
	c := mustClient(t, s, TransactionPurchaseAtSource)
	r := pricedBawazaReceipt(t, s, c.ID, tank.ID, "10", "9")

	pr, _, err := s.AddPaymentReceipt(PaymentReceiptInput{
		ClientID:  c.ID,
		Items:     []SettlementItem{{Source: SourceReceipt, ID: r.ID}},
		Mode:      ModeCash,
		Direction: CashInflow,
	})
	require.NoError(t, err)
	require.Equal(t, "REG-IN-0001", pr.Number)
	require.Empty(t, s.ClientOperations())
}

func TestPaymentReceiptDirectBatch(t *testing.T) {
	s := newTestStore(t)
	tank := mustTank(t, s, "R1", "1000")
	c := mustClient(t, s, TransactionPurchaseAtSource)
	b, err := s.AddExtraction(ExtractionInput{Source: SourceDirect, ClientID: c.ID, OilQuantity: dec("20")})
	require.NoError(t, err)
	require.Equal(t, c.Name, b.ClientName)
	_, err = s.AllocateToTank(AllocationInput{TankID: tank.ID, Source: SourceDirect, SourceID: b.ID, Quantity: dec("20"), UnitPrice: decPtr("11")})
	require.NoError(t, err)

	pr, _, err := s.AddPaymentReceipt(PaymentReceiptInput{ClientID: c.ID, Items: []SettlementItem{{Source: SourceDirect, ID: b.ID}}, Mode: ModeCash})
	require.NoError(t, err)
	requireDec(t, "220", pr.Total)
	require.Equal(t, "Lot "+b.LotNumber, pr.Lines[0].Reference)

	_, _, err = s.AddPaymentReceipt(PaymentReceiptInput{ClientID: c.ID, Mode: ModeCash})
	require.ErrorIs(t, err, ErrValidation)
}
