package ledger

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/maasra-erp/maasra/internal/shared"
)

var fixedNow = time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC)

type countingRecorder struct {
	ok, failed map[string]int
}

func (r *countingRecorder) RecordOperation(op string, err error) {
	if r.ok == nil {
		r.ok = make(map[string]int)
		r.failed = make(map[string]int)
	}
	if err != nil {
		r.failed[op]++
		return
	}
	r.ok[op]++
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	seq := 0
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%04d", seq)
		}),
		WithSettings(Settings{
			CompanyName:               "Huilerie Test",
			ServicePricePerKg:         dec("0.150"),
			BasePurchasePricePerLiter: dec("12"),
			MillSharePercent:          dec("20"),
			DefaultVATRate:            dec("19"),
			DefaultStampDuty:          dec("1"),
		}),
	}
	return NewStore(append(base, opts...)...)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func requireDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func mustClient(t *testing.T, s *Store, typ TransactionType) Client {
	t.Helper()
	c, err := s.AddClient(ClientInput{Name: "Client " + string(typ), TransactionType: typ})
	require.NoError(t, err)
	return c
}

func mustReceipt(t *testing.T, s *Store, clientID, gross, empty string) IntakeReceipt {
	t.Helper()
	r, err := s.AddReceipt(ReceiptInput{ClientID: clientID, GrossWeight: dec(gross), EmptyWeight: dec(empty)})
	require.NoError(t, err)
	return r
}

func mustExtract(t *testing.T, s *Store, receiptID, oil string) ExtractionBatch {
	t.Helper()
	b, err := s.AddExtraction(ExtractionInput{Source: SourceReceipt, ReceiptID: receiptID, OilQuantity: dec(oil)})
	require.NoError(t, err)
	return b
}

func mustTank(t *testing.T, s *Store, code, capacity string) Tank {
	t.Helper()
	tank, err := s.AddTank(TankInput{Code: code, Capacity: dec(capacity)})
	require.NoError(t, err)
	return tank
}

func TestErrorsWrapSharedKinds(t *testing.T) {
	require.True(t, errors.Is(ErrTankCapacityExceeded, shared.ErrConflict))
	require.True(t, errors.Is(notFound("tank", "x"), shared.ErrNotFound))
	require.True(t, errors.Is(notFound("tank", "x"), ErrNotFound))
	require.True(t, errors.Is(ErrValidation, shared.ErrValidation))
}

func TestReceiptNetWeightAndExtractionCloses(t *testing.T) {
	s := newTestStore(t)
	c := mustClient(t, s, TransactionService)

	r := mustReceipt(t, s, c.ID, "1000", "200")
	require.Equal(t, "BR0001", r.Number)
	requireDec(t, "800", r.NetWeight)
	require.Equal(t, ReceiptOpen, r.Status)

	b := mustExtract(t, s, r.ID, "120")
	requireDec(t, "120", b.OilQuantity)
	requireDec(t, "800", b.OliveWeight)
	require.Equal(t, c.ID, b.ClientID)

	got, err := s.Receipt(r.ID)
	require.NoError(t, err)
	require.Equal(t, ReceiptClosed, got.Status)
	require.NotNil(t, got.ClosedAt)
}

func TestReceiptRejectsNonPositiveNet(t *testing.T) {
	s := newTestStore(t)
	c := mustClient(t, s, TransactionService)

	_, err := s.AddReceipt(ReceiptInput{ClientID: c.ID, GrossWeight: dec("200"), EmptyWeight: dec("200")})
	require.ErrorIs(t, err, ErrNetWeightNotPositive)

	_, err = s.AddReceipt(ReceiptInput{ClientID: c.ID, GrossWeight: dec("0"), EmptyWeight: dec("0")})
	require.ErrorIs(t, err, ErrValidation)
	require.Empty(t, s.Receipts())
}

func TestUpdateReceiptKeepsNetWeight(t *testing.T) {
	s := newTestStore(t)
	c := mustClient(t, s, TransactionService)
	r := mustReceipt(t, s, c.ID, "1500", "300")

	vehicle := "123 TU 4567"
	updated, err := s.UpdateReceipt(r.ID, ReceiptUpdate{Vehicle: &vehicle})
	require.NoError(t, err)
	require.Equal(t, vehicle, updated.Vehicle)
	requireDec(t, "1200", updated.NetWeight)
}

func TestSecondExtractionRejected(t *testing.T) {
	s := newTestStore(t)
	c := mustClient(t, s, TransactionService)
	r := mustReceipt(t, s, c.ID, "1000", "200")
	mustExtract(t, s, r.ID, "120")
	before := s.Version()

	_, err := s.AddExtraction(ExtractionInput{Source: SourceReceipt, ReceiptID: r.ID, OilQuantity: dec("50")})
	require.ErrorIs(t, err, ErrReceiptNotOpen)
	require.ErrorIs(t, err, shared.ErrConflict)
	require.Len(t, s.Batches(), 1)
	require.Equal(t, before, s.Version())
}

func TestDirectExtractionGetsLotNumber(t *testing.T) {
	s := newTestStore(t)

	b, err := s.AddExtraction(ExtractionInput{Source: SourceDirect, ClientName: "Passage", OilQuantity: dec("40")})
	require.NoError(t, err)
	require.Equal(t, "LOT0001", b.LotNumber)
	require.Equal(t, "Passage", b.ClientName)
	require.Empty(t, b.ReceiptID)

	b2, err := s.AddExtraction(ExtractionInput{Source: SourceDirect, LotNumber: "L-77", OilQuantity: dec("10")})
	require.NoError(t, err)
	require.Equal(t, "L-77", b2.LotNumber)
}

func TestExtractionValidation(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddExtraction(ExtractionInput{Source: SourceReceipt, OilQuantity: dec("10")})
	require.ErrorIs(t, err, ErrValidation)

	_, err = s.AddExtraction(ExtractionInput{Source: SourceDirect, OilQuantity: dec("0")})
	require.ErrorIs(t, err, ErrValidation)
}

func TestClientTransactionTypeFrozenOnceReferenced(t *testing.T) {
	s := newTestStore(t)
	c := mustClient(t, s, TransactionService)
	mustReceipt(t, s, c.ID, "500", "100")

	typ := TransactionBawaza
	_, err := s.UpdateClient(c.ID, ClientUpdate{TransactionType: &typ})
	require.ErrorIs(t, err, ErrClientInUse)

	name := "Renamed"
	got, err := s.UpdateClient(c.ID, ClientUpdate{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Name)
	require.Equal(t, c.Code, got.Code)

	require.ErrorIs(t, s.DeleteClient(c.ID), ErrClientInUse)
}

func TestNumbersNeverReusedAfterDelete(t *testing.T) {
	s := newTestStore(t)
	a := mustClient(t, s, TransactionService)
	require.Equal(t, "CLT0001", a.Code)
	b := mustClient(t, s, TransactionService)
	require.Equal(t, "CLT0002", b.Code)

	require.NoError(t, s.DeleteClient(b.ID))
	c := mustClient(t, s, TransactionService)
	require.Equal(t, "CLT0003", c.Code)
}

func TestClientOperationsAndTombstones(t *testing.T) {
	s := newTestStore(t)
	c := mustClient(t, s, TransactionBawaza)

	capital, err := s.AddClientOperation(ClientOperationInput{ClientID: c.ID, Type: OperationCapital, Amount: dec("500")})
	require.NoError(t, err)
	require.Equal(t, "REC-CAP-0001", capital.ReceiptNumber)

	advance, err := s.AddClientOperation(ClientOperationInput{ClientID: c.ID, Type: OperationAdvance, Amount: dec("200"), Label: "avance"})
	require.NoError(t, err)
	require.Equal(t, "REC-AVA-0001", advance.ReceiptNumber)

	_, err = s.AddClientOperation(ClientOperationInput{ClientID: c.ID, Type: OperationReceiptReceived, Amount: dec("1")})
	require.ErrorIs(t, err, ErrValidation)

	tomb, err := s.DeleteClientOperation(advance.ID, "saisie en double")
	require.NoError(t, err)
	require.Equal(t, advance.ID, tomb.OperationID)
	require.Equal(t, "REC-AVA-0001", tomb.ReceiptNumber)
	require.Equal(t, fixedNow, tomb.DeletedAt)
	require.Equal(t, "saisie en double", tomb.Reason)

	require.Len(t, s.ClientOperations(), 1)
	require.Len(t, s.DeletedOperations(), 1)

	next, err := s.AddClientOperation(ClientOperationInput{ClientID: c.ID, Type: OperationAdvance, Amount: dec("50")})
	require.NoError(t, err)
	require.Equal(t, "REC-AVA-0002", next.ReceiptNumber)

	stmt, err := s.ClientStatement(c.ID)
	require.NoError(t, err)
	require.Len(t, stmt.Operations, 2)
	requireDec(t, "500", stmt.Totals[OperationCapital])
	requireDec(t, "50", stmt.Totals[OperationAdvance])

	_, err = s.DeleteClientOperation("missing", "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecorderSeesEveryOutcome(t *testing.T) {
	rec := &countingRecorder{}
	s := newTestStore(t, WithRecorder(rec))
	tank := mustTank(t, s, "R1", "10")

	_, err := s.SetTankCapacity(tank.ID, dec("20"))
	require.NoError(t, err)
	_, err = s.SetTankCapacity("nope", dec("20"))
	require.Error(t, err)

	require.Equal(t, 1, rec.ok["add_tank"])
	require.Equal(t, 1, rec.ok["set_tank_capacity"])
	require.Equal(t, 1, rec.failed["set_tank_capacity"])
}

func TestSettingsValidated(t *testing.T) {
	s := newTestStore(t)

	settings := s.Settings()
	settings.MillSharePercent = dec("120")
	_, err := s.UpdateSettings(settings)
	require.ErrorIs(t, err, ErrValidation)

	settings.MillSharePercent = dec("25")
	got, err := s.UpdateSettings(settings)
	require.NoError(t, err)
	requireDec(t, "25", got.MillSharePercent)
	requireDec(t, "25", s.Settings().MillSharePercent)
}
