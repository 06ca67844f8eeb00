package ledger

import (
	"fmt"
	"strings"
)

// AddPaymentReceipt settles the batches of one client. Items that do not
// resolve to a batch of the client, that are already settled, repeated or
// unpriced are left out and reported. An outflow receipt also records a
// receipt_received operation on the client account.
func (s *Store) AddPaymentReceipt(in PaymentReceiptInput) (PaymentReceipt, []SkippedItem, error) {
	if err := s.check(in); err != nil {
		return PaymentReceipt{}, nil, err
	}
	direction := in.Direction
	if direction == "" {
		direction = CashOutflow
	}
	var (
		out     PaymentReceipt
		skipped []SkippedItem
	)
	err := s.apply("add_payment_receipt", func(tx *txn) error {
		skipped = nil
		if tx.doc.clientIndex(in.ClientID) < 0 {
			return notFound("client", in.ClientID)
		}
		settled := tx.doc.settledBatches()
		seen := make(map[string]bool, len(in.Items))
		skip := func(item SettlementItem, reason string) {
			skipped = append(skipped, SkippedItem{Item: item, Reason: reason})
		}

		var lines []SettlementLine
		total := zero
		for _, item := range in.Items {
			bi := tx.doc.resolveBatch(item.Source, item.ID)
			if bi < 0 || tx.doc.Batches[bi].ClientID != in.ClientID {
				skip(item, SkipUnresolved)
				continue
			}
			b := tx.doc.Batches[bi]
			switch {
			case seen[b.ID]:
				skip(item, SkipDuplicate)
				continue
			case settled[b.ID]:
				skip(item, SkipAlreadySettled)
				continue
			case b.UnitPrice == nil:
				skip(item, SkipUnpriced)
				continue
			}
			seen[b.ID] = true
			amount := round(b.OilQuantity.Mul(*b.UnitPrice))
			lines = append(lines, SettlementLine{
				BatchID:     b.ID,
				Source:      b.Source,
				Reference:   tx.doc.batchReference(b),
				Date:        b.Date,
				OliveWeight: b.OliveWeight,
				OilQuantity: b.OilQuantity,
				UnitPrice:   *b.UnitPrice,
				Amount:      amount,
			})
			total = total.Add(amount)
		}
		if len(lines) == 0 {
			return fmt.Errorf("%w: %d item(s) skipped", ErrNothingToSettle, len(skipped))
		}

		prefix := PrefixSettlementOut
		if direction == CashInflow {
			prefix = PrefixSettlementIn
		}
		date := tx.dateOr(in.Date)
		out = PaymentReceipt{
			ID:          tx.newID(),
			Number:      tx.doc.next(prefix),
			Direction:   direction,
			Date:        date,
			ClientID:    in.ClientID,
			Lines:       lines,
			Total:       total,
			PaymentMode: in.Mode,
			Notes:       strings.TrimSpace(in.Notes),
			CreatedAt:   tx.now,
		}
		tx.doc.PaymentReceipts = append(tx.doc.PaymentReceipts, out)
		if direction == CashOutflow {
			tx.appendOperation(in.ClientID, OperationReceiptReceived, date, "Règlement "+out.Number, total)
		}
		out = clonePaymentReceipt(out)
		return nil
	})
	if err != nil {
		return PaymentReceipt{}, skipped, err
	}
	return out, skipped, nil
}

// PaymentReceipts lists payment receipts in creation order.
func (s *Store) PaymentReceipts() []PaymentReceipt {
	var out []PaymentReceipt
	s.view(func(d *Document) {
		out = make([]PaymentReceipt, 0, len(d.PaymentReceipts))
		for _, pr := range d.PaymentReceipts {
			out = append(out, clonePaymentReceipt(pr))
		}
	})
	return out
}
