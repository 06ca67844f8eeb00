package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// Numbering prefixes. Each prefix owns an independent counter.
const (
	PrefixReceipt         = "BR"
	PrefixClient          = "CLT"
	PrefixWholesaleClient = "CLG"
	PrefixInvoice         = "FAC"
	PrefixDeliveryNote    = "BL"
	PrefixLot             = "LOT"
	PrefixCapital         = "REC-CAP-"
	PrefixAdvance         = "REC-AVA-"
	PrefixReceived        = "REC-RCV-"
	PrefixSettlementOut   = "REG-OUT-"
	PrefixSettlementIn    = "REG-IN-"
)

// formatNumber renders prefix + zero padded counter, e.g. BR0007.
func formatNumber(prefix string, n int) string {
	return fmt.Sprintf("%s%04d", prefix, n)
}

// next advances the counter of prefix and returns the formatted number.
func (d *Document) next(prefix string) string {
	if d.Counters == nil {
		d.Counters = make(map[string]int)
	}
	d.Counters[prefix]++
	return formatNumber(prefix, d.Counters[prefix])
}

// observe raises the counter of prefix to the suffix of number when higher.
func (d *Document) observe(prefix, number string) {
	if !strings.HasPrefix(number, prefix) {
		return
	}
	n, err := strconv.Atoi(strings.TrimPrefix(number, prefix))
	if err != nil || n <= 0 {
		return
	}
	if d.Counters == nil {
		d.Counters = make(map[string]int)
	}
	if n > d.Counters[prefix] {
		d.Counters[prefix] = n
	}
}

// reconcileCounters makes every counter at least the highest number present,
// so documents written without counters never hand out duplicates.
func (d *Document) reconcileCounters() {
	for _, c := range d.Clients {
		d.observe(PrefixClient, c.Code)
	}
	for _, c := range d.WholesaleClients {
		d.observe(PrefixWholesaleClient, c.Code)
	}
	for _, r := range d.Receipts {
		d.observe(PrefixReceipt, r.Number)
	}
	for _, b := range d.Batches {
		d.observe(PrefixLot, b.LotNumber)
	}
	for _, n := range d.DeliveryNotes {
		d.observe(PrefixDeliveryNote, n.Number)
	}
	for _, inv := range d.Invoices {
		d.observe(PrefixInvoice, inv.Number)
	}
	ops := func(number string) {
		d.observe(PrefixCapital, number)
		d.observe(PrefixAdvance, number)
		d.observe(PrefixReceived, number)
	}
	for _, op := range d.ClientOperations {
		ops(op.ReceiptNumber)
	}
	for _, op := range d.DeletedOperations {
		ops(op.ReceiptNumber)
	}
	for _, pr := range d.PaymentReceipts {
		d.observe(PrefixSettlementOut, pr.Number)
		d.observe(PrefixSettlementIn, pr.Number)
	}
}
