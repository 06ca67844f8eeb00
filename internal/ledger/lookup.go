package ledger

func (d *Document) clientIndex(id string) int {
	for i := range d.Clients {
		if d.Clients[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) wholesaleClientIndex(id string) int {
	for i := range d.WholesaleClients {
		if d.WholesaleClients[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) receiptIndex(id string) int {
	for i := range d.Receipts {
		if d.Receipts[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) batchIndex(id string) int {
	for i := range d.Batches {
		if d.Batches[i].ID == id {
			return i
		}
	}
	return -1
}

// batchForReceipt returns the index of the batch extracted from receiptID.
func (d *Document) batchForReceipt(receiptID string) int {
	for i := range d.Batches {
		if d.Batches[i].Source == SourceReceipt && d.Batches[i].ReceiptID == receiptID {
			return i
		}
	}
	return -1
}

// resolveBatch maps a (source, id) pair to a batch index: receipt ids for
// receipt batches, batch ids for direct batches.
func (d *Document) resolveBatch(source BatchSource, id string) int {
	switch source {
	case SourceReceipt:
		return d.batchForReceipt(id)
	case SourceDirect:
		i := d.batchIndex(id)
		if i >= 0 && d.Batches[i].Source == SourceDirect {
			return i
		}
	}
	return -1
}

func (d *Document) tankIndex(id string) int {
	for i := range d.Tanks {
		if d.Tanks[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) deliveryNoteIndex(id string) int {
	for i := range d.DeliveryNotes {
		if d.DeliveryNotes[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) invoiceIndex(id string) int {
	for i := range d.Invoices {
		if d.Invoices[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) invoiceForSource(sourceID string) int {
	for i := range d.Invoices {
		if d.Invoices[i].SourceID == sourceID {
			return i
		}
	}
	return -1
}

func (d *Document) operationIndex(id string) int {
	for i := range d.ClientOperations {
		if d.ClientOperations[i].ID == id {
			return i
		}
	}
	return -1
}

// settledBatches lists every batch already covered by a payment receipt.
func (d *Document) settledBatches() map[string]bool {
	out := make(map[string]bool)
	for _, pr := range d.PaymentReceipts {
		for _, line := range pr.Lines {
			out[line.BatchID] = true
		}
	}
	return out
}
