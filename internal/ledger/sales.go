package ledger

import (
	"fmt"
	"strings"
)

// AddSale draws oil from a tank for a wholesale client and issues the
// delivery note.
func (s *Store) AddSale(in SaleInput) (DeliveryNote, error) {
	if err := s.check(in); err != nil {
		return DeliveryNote{}, err
	}
	var out DeliveryNote
	err := s.apply("add_sale", func(tx *txn) error {
		if tx.doc.wholesaleClientIndex(in.ClientID) < 0 {
			return notFound("wholesale client", in.ClientID)
		}
		t, err := tx.usableTank(in.TankID)
		if err != nil {
			return err
		}
		qty := round(in.Quantity)
		if t.Quantity.LessThan(qty) {
			return fmt.Errorf("%w: %s holds %s, %s requested", ErrInsufficientStock, t.Code, t.Quantity, qty)
		}
		price := round(in.UnitPrice)
		amounts := ComputeAmounts(
			qty.Mul(price),
			orDefault(in.VATRate, tx.doc.Settings.DefaultVATRate),
			orDefault(in.StampDuty, tx.doc.Settings.DefaultStampDuty),
		)

		t.Quantity = t.Quantity.Sub(qty)
		t.refreshStatus()

		date := tx.dateOr(in.Date)
		out = DeliveryNote{
			ID:            tx.newID(),
			Number:        tx.doc.next(PrefixDeliveryNote),
			Date:          date,
			ClientID:      in.ClientID,
			TankID:        t.ID,
			Quantity:      qty,
			UnitPrice:     price,
			Amounts:       amounts,
			PaymentStatus: PaymentPending,
			Notes:         in.Notes,
			CreatedAt:     tx.now,
		}
		tx.doc.DeliveryNotes = append(tx.doc.DeliveryNotes, out)
		tx.doc.Movements = append(tx.doc.Movements, StockMovement{
			ID:        tx.newID(),
			TankID:    t.ID,
			Type:      MovementSaleOutflow,
			Quantity:  qty,
			Date:      date,
			Reference: out.Number,
			ClientID:  in.ClientID,
			UnitPrice: copyDec(&price),
			Amount:    copyDec(&amounts.Total),
			CreatedAt: tx.now,
		})
		return nil
	})
	return out, err
}

// MarkDeliveryNotePaid settles a delivery note in full. Delivery notes have
// no partial payment state.
func (s *Store) MarkDeliveryNotePaid(id string, in DeliveryPaymentInput) (DeliveryNote, error) {
	if err := s.check(in); err != nil {
		return DeliveryNote{}, err
	}
	var out DeliveryNote
	err := s.apply("mark_delivery_note_paid", func(tx *txn) error {
		i := tx.doc.deliveryNoteIndex(id)
		if i < 0 {
			return notFound("delivery note", id)
		}
		n := &tx.doc.DeliveryNotes[i]
		if n.PaymentStatus == PaymentPaid {
			return fmt.Errorf("%w: %s", ErrAlreadyPaid, n.Number)
		}
		n.PaymentStatus = PaymentPaid
		n.Payment = &DeliveryPayment{
			Date:      tx.dateOr(in.Date),
			Mode:      in.Mode,
			Reference: strings.TrimSpace(in.Reference),
			Notes:     in.Notes,
		}
		out = cloneDeliveryNote(*n)
		return nil
	})
	return out, err
}

// DeliveryNote returns a delivery note by id.
func (s *Store) DeliveryNote(id string) (DeliveryNote, error) {
	var (
		out DeliveryNote
		err error
	)
	s.view(func(d *Document) {
		i := d.deliveryNoteIndex(id)
		if i < 0 {
			err = notFound("delivery note", id)
			return
		}
		out = cloneDeliveryNote(d.DeliveryNotes[i])
	})
	return out, err
}

// DeliveryNotes lists delivery notes in creation order.
func (s *Store) DeliveryNotes() []DeliveryNote {
	var out []DeliveryNote
	s.view(func(d *Document) {
		out = make([]DeliveryNote, 0, len(d.DeliveryNotes))
		for _, n := range d.DeliveryNotes {
			out = append(out, cloneDeliveryNote(n))
		}
	})
	return out
}
