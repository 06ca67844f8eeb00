package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func operationPrefix(t OperationType) string {
	switch t {
	case OperationCapital:
		return PrefixCapital
	case OperationAdvance:
		return PrefixAdvance
	default:
		return PrefixReceived
	}
}

// AddClientOperation records capital or an advance on a client account. Each
// operation type numbers its receipts independently.
func (s *Store) AddClientOperation(in ClientOperationInput) (ClientOperation, error) {
	if err := s.check(in); err != nil {
		return ClientOperation{}, err
	}
	var out ClientOperation
	err := s.apply("add_client_operation", func(tx *txn) error {
		if tx.doc.clientIndex(in.ClientID) < 0 {
			return notFound("client", in.ClientID)
		}
		out = tx.appendOperation(in.ClientID, in.Type, tx.dateOr(in.Date), strings.TrimSpace(in.Label), round(in.Amount))
		return nil
	})
	return out, err
}

func (tx *txn) appendOperation(clientID string, typ OperationType, date time.Time, label string, amount decimal.Decimal) ClientOperation {
	op := ClientOperation{
		ID:            tx.newID(),
		ClientID:      clientID,
		Type:          typ,
		Date:          date,
		Label:         label,
		Amount:        amount,
		ReceiptNumber: tx.doc.next(operationPrefix(typ)),
		CreatedAt:     tx.now,
	}
	tx.doc.ClientOperations = append(tx.doc.ClientOperations, op)
	return op
}

// DeleteClientOperation removes a live operation and appends its tombstone to
// the deleted operations log.
func (s *Store) DeleteClientOperation(id, reason string) (DeletedOperation, error) {
	var out DeletedOperation
	err := s.apply("delete_client_operation", func(tx *txn) error {
		i := tx.doc.operationIndex(id)
		if i < 0 {
			return notFound("client operation", id)
		}
		op := tx.doc.ClientOperations[i]
		if op.Type == OperationReceiptReceived {
			return ErrSystemOperation
		}
		out = DeletedOperation{
			ID:            tx.newID(),
			OperationID:   op.ID,
			ClientID:      op.ClientID,
			Type:          op.Type,
			Date:          op.Date,
			Label:         op.Label,
			Amount:        op.Amount,
			ReceiptNumber: op.ReceiptNumber,
			DeletedAt:     tx.now,
			Reason:        strings.TrimSpace(reason),
		}
		tx.doc.ClientOperations = append(tx.doc.ClientOperations[:i], tx.doc.ClientOperations[i+1:]...)
		tx.doc.DeletedOperations = append(tx.doc.DeletedOperations, out)
		return nil
	})
	return out, err
}

// ClientStatement summarises the live operations of one client.
type ClientStatement struct {
	Client     Client                            `json:"client"`
	Operations []ClientOperation                 `json:"operations"`
	Totals     map[OperationType]decimal.Decimal `json:"totals"`
}

// ClientStatement lists a client's operations with totals per type.
func (s *Store) ClientStatement(clientID string) (ClientStatement, error) {
	var (
		out ClientStatement
		err error
	)
	s.view(func(d *Document) {
		i := d.clientIndex(clientID)
		if i < 0 {
			err = notFound("client", clientID)
			return
		}
		out.Client = d.Clients[i]
		out.Totals = map[OperationType]decimal.Decimal{
			OperationCapital:         zero,
			OperationAdvance:         zero,
			OperationReceiptReceived: zero,
		}
		for _, op := range d.ClientOperations {
			if op.ClientID != clientID {
				continue
			}
			out.Operations = append(out.Operations, op)
			out.Totals[op.Type] = out.Totals[op.Type].Add(op.Amount)
		}
	})
	return out, err
}

// ClientOperations lists the live operations in creation order.
func (s *Store) ClientOperations() []ClientOperation {
	out := make([]ClientOperation, 0)
	s.view(func(d *Document) {
		out = append(out, d.ClientOperations...)
	})
	return out
}

// DeletedOperations lists the tombstones in deletion order.
func (s *Store) DeletedOperations() []DeletedOperation {
	out := make([]DeletedOperation, 0)
	s.view(func(d *Document) {
		out = append(out, d.DeletedOperations...)
	})
	return out
}
