package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// refreshStatus derives a tank status from its quantity. An unavailable tank
// keeps its status until released.
func (t *Tank) refreshStatus() {
	if t.Status == TankUnavailable {
		return
	}
	if t.Quantity.GreaterThanOrEqual(t.Capacity) {
		t.Status = TankFull
		return
	}
	t.Status = TankAvailable
}

// AddTank creates an empty tank.
func (s *Store) AddTank(in TankInput) (Tank, error) {
	if err := s.check(in); err != nil {
		return Tank{}, err
	}
	var out Tank
	err := s.apply("add_tank", func(tx *txn) error {
		code := strings.TrimSpace(in.Code)
		for _, t := range tx.doc.Tanks {
			if strings.EqualFold(t.Code, code) {
				return fmt.Errorf("%w: tank code %q already used", ErrValidation, code)
			}
		}
		out = Tank{
			ID:        tx.newID(),
			Code:      code,
			Capacity:  round(in.Capacity),
			Quantity:  zero,
			Notes:     in.Notes,
			CreatedAt: tx.now,
		}
		out.refreshStatus()
		tx.doc.Tanks = append(tx.doc.Tanks, out)
		return nil
	})
	return out, err
}

// SetTankCapacity resizes a tank. The new capacity cannot drop below the
// quantity it holds.
func (s *Store) SetTankCapacity(id string, capacity decimal.Decimal) (Tank, error) {
	if !capacity.IsPositive() {
		return Tank{}, fmt.Errorf("%w: capacity must be greater than zero", ErrValidation)
	}
	var out Tank
	err := s.apply("set_tank_capacity", func(tx *txn) error {
		i := tx.doc.tankIndex(id)
		if i < 0 {
			return notFound("tank", id)
		}
		t := &tx.doc.Tanks[i]
		capacity = round(capacity)
		if capacity.LessThan(t.Quantity) {
			return fmt.Errorf("%w: %s holds %s", ErrCapacityBelowQuantity, t.Code, t.Quantity)
		}
		t.Capacity = capacity
		t.refreshStatus()
		out = *t
		return nil
	})
	return out, err
}

// SetTankUnavailable marks a tank out of service, or releases it.
func (s *Store) SetTankUnavailable(id string, unavailable bool) (Tank, error) {
	var out Tank
	err := s.apply("set_tank_unavailable", func(tx *txn) error {
		i := tx.doc.tankIndex(id)
		if i < 0 {
			return notFound("tank", id)
		}
		t := &tx.doc.Tanks[i]
		if unavailable {
			t.Status = TankUnavailable
		} else {
			t.Status = TankAvailable
			t.refreshStatus()
		}
		out = *t
		return nil
	})
	return out, err
}

// usableTank returns the tank at id, rejecting unavailable tanks.
func (tx *txn) usableTank(id string) (*Tank, error) {
	i := tx.doc.tankIndex(id)
	if i < 0 {
		return nil, notFound("tank", id)
	}
	t := &tx.doc.Tanks[i]
	if t.Status == TankUnavailable {
		return nil, fmt.Errorf("%w: %s", ErrTankUnavailable, t.Code)
	}
	return t, nil
}

func (d *Document) allocated(batchID string) decimal.Decimal {
	sum := zero
	for _, a := range d.Allocations {
		if a.BatchID == batchID {
			sum = sum.Add(a.Quantity)
		}
	}
	return sum
}

// batchClient returns the client owning a batch, if any.
func (d *Document) batchClient(b ExtractionBatch) (Client, bool) {
	if b.ClientID == "" {
		return Client{}, false
	}
	i := d.clientIndex(b.ClientID)
	if i < 0 {
		return Client{}, false
	}
	return d.Clients[i], true
}

// allocatable is the part of a batch's oil the mill owns.
func (d *Document) allocatable(b ExtractionBatch) decimal.Decimal {
	c, ok := d.batchClient(b)
	if !ok {
		return b.OilQuantity
	}
	switch c.TransactionType {
	case TransactionService:
		return zero
	case TransactionBawaza:
		return percentOf(b.OilQuantity, d.Settings.MillSharePercent)
	default:
		return b.OilQuantity
	}
}

// requiresPrice reports whether the mill buys the batch oil from its client.
func (d *Document) requiresPrice(b ExtractionBatch) bool {
	c, ok := d.batchClient(b)
	if !ok {
		return false
	}
	return c.TransactionType == TransactionBawaza || c.TransactionType == TransactionPurchaseAtSource
}

func (d *Document) batchReference(b ExtractionBatch) string {
	if b.Source == SourceReceipt {
		if i := d.receiptIndex(b.ReceiptID); i >= 0 {
			return d.Receipts[i].Number
		}
		return ""
	}
	return "Lot " + b.LotNumber
}

// AllocateToTank moves part of a batch's oil into a tank. The first
// allocation of a purchased batch fixes its unit price.
func (s *Store) AllocateToTank(in AllocationInput) (StockAllocation, error) {
	if err := s.check(in); err != nil {
		return StockAllocation{}, err
	}
	var out StockAllocation
	err := s.apply("allocate_to_tank", func(tx *txn) error {
		t, err := tx.usableTank(in.TankID)
		if err != nil {
			return err
		}
		bi := tx.doc.resolveBatch(in.Source, in.SourceID)
		if bi < 0 {
			return notFound("batch", in.SourceID)
		}
		b := &tx.doc.Batches[bi]
		qty := round(in.Quantity)

		if after := t.Quantity.Add(qty); after.GreaterThan(t.Capacity) {
			return fmt.Errorf("%w: %s holds %s of %s, cannot take %s", ErrTankCapacityExceeded, t.Code, t.Quantity, t.Capacity, qty)
		}
		share := tx.doc.allocatable(*b)
		if share.IsZero() {
			if c, ok := tx.doc.batchClient(*b); ok && c.TransactionType == TransactionService {
				return ErrServiceOilNotStock
			}
		}
		if done := tx.doc.allocated(b.ID); done.Add(qty).GreaterThan(share) {
			return fmt.Errorf("%w: %s already allocated of %s", ErrAllocationExceedsBatch, done, share)
		}
		switch {
		case b.UnitPrice == nil && in.UnitPrice != nil:
			price := round(*in.UnitPrice)
			b.UnitPrice = &price
		case b.UnitPrice == nil && tx.doc.requiresPrice(*b):
			return ErrPriceRequired
		case b.UnitPrice != nil && in.UnitPrice != nil && !round(*in.UnitPrice).Equal(*b.UnitPrice):
			return fmt.Errorf("%w: batch priced at %s", ErrPriceMismatch, b.UnitPrice)
		}

		date := tx.dateOr(in.Date)
		t.Quantity = t.Quantity.Add(qty)
		t.refreshStatus()
		out = StockAllocation{
			ID:        tx.newID(),
			Source:    b.Source,
			BatchID:   b.ID,
			ReceiptID: b.ReceiptID,
			TankID:    t.ID,
			Quantity:  qty,
			Date:      date,
			CreatedAt: tx.now,
		}
		tx.doc.Allocations = append(tx.doc.Allocations, out)
		tx.doc.Movements = append(tx.doc.Movements, StockMovement{
			ID:        tx.newID(),
			TankID:    t.ID,
			Type:      MovementInflow,
			Quantity:  qty,
			Date:      date,
			Reference: tx.doc.batchReference(*b),
			ClientID:  b.ClientID,
			UnitPrice: copyDec(b.UnitPrice),
			CreatedAt: tx.now,
		})
		return nil
	})
	return out, err
}

// AllocatedQuantity is the oil of a batch already placed in tanks.
func (s *Store) AllocatedQuantity(batchID string) (decimal.Decimal, error) {
	var (
		out decimal.Decimal
		err error
	)
	s.view(func(d *Document) {
		if d.batchIndex(batchID) < 0 {
			err = notFound("batch", batchID)
			return
		}
		out = d.allocated(batchID)
	})
	return out, err
}

// AllocatableQuantity is the oil of a batch that may still be placed in tanks.
func (s *Store) AllocatableQuantity(batchID string) (decimal.Decimal, error) {
	var (
		out decimal.Decimal
		err error
	)
	s.view(func(d *Document) {
		i := d.batchIndex(batchID)
		if i < 0 {
			err = notFound("batch", batchID)
			return
		}
		out = d.allocatable(d.Batches[i]).Sub(d.allocated(batchID))
		if out.IsNegative() {
			out = zero
		}
	})
	return out, err
}

// TransferBetweenTanks moves oil from one tank to another and records a
// correlated transfer_out/transfer_in pair.
func (s *Store) TransferBetweenTanks(in TransferInput) ([2]StockMovement, error) {
	if err := s.check(in); err != nil {
		return [2]StockMovement{}, err
	}
	if in.FromTankID == in.ToTankID {
		return [2]StockMovement{}, ErrSameTank
	}
	var out [2]StockMovement
	err := s.apply("transfer_between_tanks", func(tx *txn) error {
		from, err := tx.usableTank(in.FromTankID)
		if err != nil {
			return err
		}
		to, err := tx.usableTank(in.ToTankID)
		if err != nil {
			return err
		}
		qty := round(in.Quantity)
		if from.Quantity.LessThan(qty) {
			return fmt.Errorf("%w: %s holds %s, %s requested", ErrInsufficientStock, from.Code, from.Quantity, qty)
		}
		if to.Quantity.Add(qty).GreaterThan(to.Capacity) {
			return fmt.Errorf("%w: %s holds %s of %s, cannot take %s", ErrTankCapacityExceeded, to.Code, to.Quantity, to.Capacity, qty)
		}
		from.Quantity = from.Quantity.Sub(qty)
		to.Quantity = to.Quantity.Add(qty)
		from.refreshStatus()
		to.refreshStatus()

		date := tx.dateOr(in.Date)
		ref := transferReference(tx.newID())
		out[0] = StockMovement{
			ID:           tx.newID(),
			TankID:       from.ID,
			Type:         MovementTransferOut,
			Quantity:     qty,
			Date:         date,
			Reference:    ref,
			LinkedTankID: to.ID,
			CreatedAt:    tx.now,
		}
		out[1] = StockMovement{
			ID:           tx.newID(),
			TankID:       to.ID,
			Type:         MovementTransferIn,
			Quantity:     qty,
			Date:         date,
			Reference:    ref,
			LinkedTankID: from.ID,
			CreatedAt:    tx.now,
		}
		tx.doc.Movements = append(tx.doc.Movements, out[0], out[1])
		return nil
	})
	return out, err
}

func transferReference(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return "TRF-" + strings.ToUpper(id)
}

// Tank returns a tank by id.
func (s *Store) Tank(id string) (Tank, error) {
	var (
		out Tank
		err error
	)
	s.view(func(d *Document) {
		i := d.tankIndex(id)
		if i < 0 {
			err = notFound("tank", id)
			return
		}
		out = d.Tanks[i]
	})
	return out, err
}

// Tanks lists tanks in creation order.
func (s *Store) Tanks() []Tank {
	out := make([]Tank, 0)
	s.view(func(d *Document) {
		out = append(out, d.Tanks...)
	})
	return out
}

// Allocations lists the allocations of a batch, or all of them when batchID
// is empty.
func (s *Store) Allocations(batchID string) []StockAllocation {
	out := make([]StockAllocation, 0)
	s.view(func(d *Document) {
		for _, a := range d.Allocations {
			if batchID == "" || a.BatchID == batchID {
				out = append(out, a)
			}
		}
	})
	return out
}

// MovementsForTank lists the movements of a tank, or every movement when
// tankID is empty.
func (s *Store) MovementsForTank(tankID string) []StockMovement {
	out := make([]StockMovement, 0)
	s.view(func(d *Document) {
		for _, m := range d.Movements {
			if tankID == "" || m.TankID == tankID {
				out = append(out, cloneMovement(m))
			}
		}
	})
	return out
}

// Movements lists every stock movement in append order.
func (s *Store) Movements() []StockMovement {
	return s.MovementsForTank("")
}
