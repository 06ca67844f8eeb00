package ledger

import (
	"fmt"
	"strings"
)

// AddClient registers a client with the next CLT code.
func (s *Store) AddClient(in ClientInput) (Client, error) {
	if err := s.check(in); err != nil {
		return Client{}, err
	}
	var out Client
	err := s.apply("add_client", func(tx *txn) error {
		out = Client{
			ID:              tx.newID(),
			Code:            tx.doc.next(PrefixClient),
			Name:            strings.TrimSpace(in.Name),
			TransactionType: in.TransactionType,
			Phone:           in.Phone,
			Notes:           in.Notes,
			CreatedAt:       tx.now,
		}
		tx.doc.Clients = append(tx.doc.Clients, out)
		return nil
	})
	return out, err
}

// UpdateClient edits a client. The code never changes, and the transaction
// type is frozen once receipts or batches reference the client.
func (s *Store) UpdateClient(id string, in ClientUpdate) (Client, error) {
	if err := s.check(in); err != nil {
		return Client{}, err
	}
	var out Client
	err := s.apply("update_client", func(tx *txn) error {
		i := tx.doc.clientIndex(id)
		if i < 0 {
			return notFound("client", id)
		}
		c := &tx.doc.Clients[i]
		if in.TransactionType != nil && *in.TransactionType != c.TransactionType && tx.doc.clientHasIntake(id) {
			return fmt.Errorf("%w: transaction type of %s is frozen", ErrClientInUse, c.Code)
		}
		if in.Name != nil {
			c.Name = strings.TrimSpace(*in.Name)
		}
		if in.TransactionType != nil {
			c.TransactionType = *in.TransactionType
		}
		if in.Phone != nil {
			c.Phone = *in.Phone
		}
		if in.Notes != nil {
			c.Notes = *in.Notes
		}
		out = *c
		return nil
	})
	return out, err
}

// DeleteClient removes a client nothing references.
func (s *Store) DeleteClient(id string) error {
	return s.apply("delete_client", func(tx *txn) error {
		i := tx.doc.clientIndex(id)
		if i < 0 {
			return notFound("client", id)
		}
		if tx.doc.clientReferenced(id) {
			return fmt.Errorf("%w: %s", ErrClientInUse, tx.doc.Clients[i].Code)
		}
		tx.doc.Clients = append(tx.doc.Clients[:i], tx.doc.Clients[i+1:]...)
		return nil
	})
}

// Client returns a client by id.
func (s *Store) Client(id string) (Client, error) {
	var (
		out Client
		err error
	)
	s.view(func(d *Document) {
		i := d.clientIndex(id)
		if i < 0 {
			err = notFound("client", id)
			return
		}
		out = d.Clients[i]
	})
	return out, err
}

// Clients lists every client in creation order.
func (s *Store) Clients() []Client {
	out := make([]Client, 0)
	s.view(func(d *Document) {
		out = append(out, d.Clients...)
	})
	return out
}

func (d *Document) clientHasIntake(id string) bool {
	for _, r := range d.Receipts {
		if r.ClientID == id {
			return true
		}
	}
	for _, b := range d.Batches {
		if b.ClientID == id {
			return true
		}
	}
	return false
}

func (d *Document) clientReferenced(id string) bool {
	if d.clientHasIntake(id) {
		return true
	}
	for _, op := range d.ClientOperations {
		if op.ClientID == id {
			return true
		}
	}
	for _, pr := range d.PaymentReceipts {
		if pr.ClientID == id {
			return true
		}
	}
	return false
}

// AddWholesaleClient registers a wholesale client with the next CLG code.
func (s *Store) AddWholesaleClient(in WholesaleClientInput) (WholesaleClient, error) {
	if err := s.check(in); err != nil {
		return WholesaleClient{}, err
	}
	var out WholesaleClient
	err := s.apply("add_wholesale_client", func(tx *txn) error {
		out = WholesaleClient{
			ID:        tx.newID(),
			Code:      tx.doc.next(PrefixWholesaleClient),
			CreatedAt: tx.now,
		}
		out.assign(in)
		tx.doc.WholesaleClients = append(tx.doc.WholesaleClients, out)
		return nil
	})
	return out, err
}

// UpdateWholesaleClient replaces the editable details of a wholesale client.
func (s *Store) UpdateWholesaleClient(id string, in WholesaleClientInput) (WholesaleClient, error) {
	if err := s.check(in); err != nil {
		return WholesaleClient{}, err
	}
	var out WholesaleClient
	err := s.apply("update_wholesale_client", func(tx *txn) error {
		i := tx.doc.wholesaleClientIndex(id)
		if i < 0 {
			return notFound("wholesale client", id)
		}
		tx.doc.WholesaleClients[i].assign(in)
		out = tx.doc.WholesaleClients[i]
		return nil
	})
	return out, err
}

// DeleteWholesaleClient removes a wholesale client without sales or invoices.
func (s *Store) DeleteWholesaleClient(id string) error {
	return s.apply("delete_wholesale_client", func(tx *txn) error {
		i := tx.doc.wholesaleClientIndex(id)
		if i < 0 {
			return notFound("wholesale client", id)
		}
		for _, n := range tx.doc.DeliveryNotes {
			if n.ClientID == id {
				return fmt.Errorf("%w: %s", ErrClientInUse, tx.doc.WholesaleClients[i].Code)
			}
		}
		for _, inv := range tx.doc.Invoices {
			if inv.ClientID == id {
				return fmt.Errorf("%w: %s", ErrClientInUse, tx.doc.WholesaleClients[i].Code)
			}
		}
		tx.doc.WholesaleClients = append(tx.doc.WholesaleClients[:i], tx.doc.WholesaleClients[i+1:]...)
		return nil
	})
}

// WholesaleClient returns a wholesale client by id.
func (s *Store) WholesaleClient(id string) (WholesaleClient, error) {
	var (
		out WholesaleClient
		err error
	)
	s.view(func(d *Document) {
		i := d.wholesaleClientIndex(id)
		if i < 0 {
			err = notFound("wholesale client", id)
			return
		}
		out = d.WholesaleClients[i]
	})
	return out, err
}

func (c *WholesaleClient) assign(in WholesaleClientInput) {
	c.Name = strings.TrimSpace(in.Name)
	c.TaxID = in.TaxID
	c.Address = in.Address
	c.Phone = in.Phone
	c.Email = in.Email
	c.PaymentTermsDays = in.PaymentTermsDays
	c.Notes = in.Notes
}

// WholesaleClients lists wholesale clients in creation order.
func (s *Store) WholesaleClients() []WholesaleClient {
	out := make([]WholesaleClient, 0)
	s.view(func(d *Document) {
		out = append(out, d.WholesaleClients...)
	})
	return out
}
