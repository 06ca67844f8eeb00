package ledger

import (
	"fmt"
	"strings"
)

// AddReceipt opens a weighbridge ticket. The net weight is computed once here
// and never re-derived.
func (s *Store) AddReceipt(in ReceiptInput) (IntakeReceipt, error) {
	if err := s.check(in); err != nil {
		return IntakeReceipt{}, err
	}
	gross := round(in.GrossWeight)
	empty := round(in.EmptyWeight)
	net := gross.Sub(empty)
	if !net.IsPositive() {
		return IntakeReceipt{}, fmt.Errorf("%w: gross %s, empty %s", ErrNetWeightNotPositive, gross, empty)
	}
	var out IntakeReceipt
	err := s.apply("add_receipt", func(tx *txn) error {
		if tx.doc.clientIndex(in.ClientID) < 0 {
			return notFound("client", in.ClientID)
		}
		out = IntakeReceipt{
			ID:          tx.newID(),
			Number:      tx.doc.next(PrefixReceipt),
			Date:        tx.dateOr(in.Date),
			ClientID:    in.ClientID,
			GrossWeight: gross,
			EmptyWeight: empty,
			NetWeight:   net,
			Vehicle:     strings.TrimSpace(in.Vehicle),
			Notes:       in.Notes,
			Status:      ReceiptOpen,
			CreatedAt:   tx.now,
		}
		tx.doc.Receipts = append(tx.doc.Receipts, out)
		return nil
	})
	return out, err
}

// UpdateReceipt edits the date, vehicle and notes of a receipt.
func (s *Store) UpdateReceipt(id string, in ReceiptUpdate) (IntakeReceipt, error) {
	if err := s.check(in); err != nil {
		return IntakeReceipt{}, err
	}
	var out IntakeReceipt
	err := s.apply("update_receipt", func(tx *txn) error {
		i := tx.doc.receiptIndex(id)
		if i < 0 {
			return notFound("receipt", id)
		}
		r := &tx.doc.Receipts[i]
		if in.Date != nil && !in.Date.IsZero() {
			r.Date = in.Date.UTC()
		}
		if in.Vehicle != nil {
			r.Vehicle = strings.TrimSpace(*in.Vehicle)
		}
		if in.Notes != nil {
			r.Notes = *in.Notes
		}
		out = cloneReceipt(*r)
		return nil
	})
	return out, err
}

// AddExtraction records a pressing run. A receipt batch closes its receipt in
// the same transition; a receipt that is not open is rejected.
func (s *Store) AddExtraction(in ExtractionInput) (ExtractionBatch, error) {
	if err := s.check(in); err != nil {
		return ExtractionBatch{}, err
	}
	var out ExtractionBatch
	err := s.apply("add_extraction", func(tx *txn) error {
		batch := ExtractionBatch{
			ID:          tx.newID(),
			Source:      in.Source,
			OliveWeight: round(in.OliveWeight),
			Date:        tx.dateOr(in.Date),
			OilQuantity: round(in.OilQuantity),
			CreatedAt:   tx.now,
		}
		switch in.Source {
		case SourceReceipt:
			i := tx.doc.receiptIndex(in.ReceiptID)
			if i < 0 {
				return notFound("receipt", in.ReceiptID)
			}
			r := &tx.doc.Receipts[i]
			if r.Status != ReceiptOpen || tx.doc.batchForReceipt(r.ID) >= 0 {
				return fmt.Errorf("%w: %s is %s", ErrReceiptNotOpen, r.Number, r.Status)
			}
			batch.ReceiptID = r.ID
			batch.ClientID = r.ClientID
			if batch.OliveWeight.IsZero() {
				batch.OliveWeight = r.NetWeight
			}
			closed := tx.now
			r.Status = ReceiptClosed
			r.ClosedAt = &closed
		case SourceDirect:
			if in.ClientID != "" {
				ci := tx.doc.clientIndex(in.ClientID)
				if ci < 0 {
					return notFound("client", in.ClientID)
				}
				batch.ClientID = in.ClientID
				batch.ClientName = tx.doc.Clients[ci].Name
			}
			if name := strings.TrimSpace(in.ClientName); name != "" {
				batch.ClientName = name
			}
			batch.LotNumber = strings.TrimSpace(in.LotNumber)
			if batch.LotNumber == "" {
				batch.LotNumber = tx.doc.next(PrefixLot)
			}
		}
		tx.doc.Batches = append(tx.doc.Batches, batch)
		out = cloneBatch(batch)
		return nil
	})
	return out, err
}

// Receipt returns an intake receipt by id.
func (s *Store) Receipt(id string) (IntakeReceipt, error) {
	var (
		out IntakeReceipt
		err error
	)
	s.view(func(d *Document) {
		i := d.receiptIndex(id)
		if i < 0 {
			err = notFound("receipt", id)
			return
		}
		out = cloneReceipt(d.Receipts[i])
	})
	return out, err
}

// Receipts lists intake receipts in creation order.
func (s *Store) Receipts() []IntakeReceipt {
	var out []IntakeReceipt
	s.view(func(d *Document) {
		out = make([]IntakeReceipt, 0, len(d.Receipts))
		for _, r := range d.Receipts {
			out = append(out, cloneReceipt(r))
		}
	})
	return out
}

// Batch returns an extraction batch by id.
func (s *Store) Batch(id string) (ExtractionBatch, error) {
	var (
		out ExtractionBatch
		err error
	)
	s.view(func(d *Document) {
		i := d.batchIndex(id)
		if i < 0 {
			err = notFound("batch", id)
			return
		}
		out = cloneBatch(d.Batches[i])
	})
	return out, err
}

// Batches lists extraction batches in creation order.
func (s *Store) Batches() []ExtractionBatch {
	var out []ExtractionBatch
	s.view(func(d *Document) {
		out = make([]ExtractionBatch, 0, len(d.Batches))
		for _, b := range d.Batches {
			out = append(out, cloneBatch(b))
		}
	})
	return out
}
