package ledger

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/maasra-erp/maasra/internal/platform/httpx"
	"github.com/maasra-erp/maasra/internal/shared"
)

// Handler exposes the Store over JSON.
type Handler struct {
	logger *slog.Logger
	store  *Store
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, store *Store) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, store: store}
}

// fail writes err as a problem response. Rejections are expected traffic and
// logged at debug level.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	attrs := []any{slog.String("op", op), slog.String("path", r.URL.Path), slog.Any("error", err)}
	switch {
	case errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrConflict), errors.Is(err, httpx.ErrMalformedBody):
		h.logger.Debug("ledger request rejected", attrs...)
	default:
		h.logger.Error("ledger request failed", attrs...)
	}
	httpx.RespondError(w, err)
}

// decode reads the body into target and answers 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, op string, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		h.fail(w, r, op, err)
		return false
	}
	return true
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.Document())
}

func (h *Handler) putDocument(w http.ResponseWriter, r *http.Request) {
	var doc Document
	if !h.decode(w, r, "import", &doc) {
		return
	}
	if err := h.store.Import(doc); err != nil {
		h.fail(w, r, "import", err)
		return
	}
	h.logger.Info("ledger document imported", slog.Int64("version", h.store.Version()))
	httpx.JSON(w, http.StatusOK, map[string]int64{"version": h.store.Version()})
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.Settings())
}

func (h *Handler) putSettings(w http.ResponseWriter, r *http.Request) {
	var in Settings
	if !h.decode(w, r, "update_settings", &in) {
		return
	}
	out, err := h.store.UpdateSettings(in)
	if err != nil {
		h.fail(w, r, "update_settings", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.Clients())
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var in ClientInput
	if !h.decode(w, r, "add_client", &in) {
		return
	}
	out, err := h.store.AddClient(in)
	if err != nil {
		h.fail(w, r, "add_client", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.Client(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get_client", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	var in ClientUpdate
	if !h.decode(w, r, "update_client", &in) {
		return
	}
	out, err := h.store.UpdateClient(chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, "update_client", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteClient(chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete_client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clientStatement(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.ClientStatement(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "client_statement", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) listWholesaleClients(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.WholesaleClients())
}

func (h *Handler) createWholesaleClient(w http.ResponseWriter, r *http.Request) {
	var in WholesaleClientInput
	if !h.decode(w, r, "add_wholesale_client", &in) {
		return
	}
	out, err := h.store.AddWholesaleClient(in)
	if err != nil {
		h.fail(w, r, "add_wholesale_client", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) getWholesaleClient(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.WholesaleClient(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get_wholesale_client", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) updateWholesaleClient(w http.ResponseWriter, r *http.Request) {
	var in WholesaleClientInput
	if !h.decode(w, r, "update_wholesale_client", &in) {
		return
	}
	out, err := h.store.UpdateWholesaleClient(chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, "update_wholesale_client", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) deleteWholesaleClient(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteWholesaleClient(chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete_wholesale_client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listOperations(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.ClientOperations())
}

func (h *Handler) listDeletedOperations(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.DeletedOperations())
}

func (h *Handler) createOperation(w http.ResponseWriter, r *http.Request) {
	var in ClientOperationInput
	if !h.decode(w, r, "add_client_operation", &in) {
		return
	}
	out, err := h.store.AddClientOperation(in)
	if err != nil {
		h.fail(w, r, "add_client_operation", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) deleteOperation(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.DeleteClientOperation(chi.URLParam(r, "id"), r.URL.Query().Get("reason"))
	if err != nil {
		h.fail(w, r, "delete_client_operation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) listReceipts(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.Receipts())
}

func (h *Handler) createReceipt(w http.ResponseWriter, r *http.Request) {
	var in ReceiptInput
	if !h.decode(w, r, "add_receipt", &in) {
		return
	}
	out, err := h.store.AddReceipt(in)
	if err != nil {
		h.fail(w, r, "add_receipt", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) getReceipt(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.Receipt(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get_receipt", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) updateReceipt(w http.ResponseWriter, r *http.Request) {
	var in ReceiptUpdate
	if !h.decode(w, r, "update_receipt", &in) {
		return
	}
	out, err := h.store.UpdateReceipt(chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, "update_receipt", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) listBatches(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.Batches())
}

func (h *Handler) createExtraction(w http.ResponseWriter, r *http.Request) {
	var in ExtractionInput
	if !h.decode(w, r, "add_extraction", &in) {
		return
	}
	out, err := h.store.AddExtraction(in)
	if err != nil {
		h.fail(w, r, "add_extraction", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) getBatch(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.Batch(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get_batch", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

type batchStock struct {
	BatchID     string            `json:"batch_id"`
	Allocated   decimal.Decimal   `json:"allocated"`
	Allocatable decimal.Decimal   `json:"allocatable"`
	Allocations []StockAllocation `json:"allocations"`
}

func (h *Handler) batchAllocations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	allocated, err := h.store.AllocatedQuantity(id)
	if err != nil {
		h.fail(w, r, "batch_allocations", err)
		return
	}
	allocatable, err := h.store.AllocatableQuantity(id)
	if err != nil {
		h.fail(w, r, "batch_allocations", err)
		return
	}
	httpx.JSON(w, http.StatusOK, batchStock{
		BatchID:     id,
		Allocated:   allocated,
		Allocatable: allocatable,
		Allocations: h.store.Allocations(id),
	})
}

func (h *Handler) listTanks(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.Tanks())
}

func (h *Handler) createTank(w http.ResponseWriter, r *http.Request) {
	var in TankInput
	if !h.decode(w, r, "add_tank", &in) {
		return
	}
	out, err := h.store.AddTank(in)
	if err != nil {
		h.fail(w, r, "add_tank", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) getTank(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.Tank(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get_tank", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) setTankCapacity(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Capacity decimal.Decimal `json:"capacity"`
	}
	if !h.decode(w, r, "set_tank_capacity", &in) {
		return
	}
	out, err := h.store.SetTankCapacity(chi.URLParam(r, "id"), in.Capacity)
	if err != nil {
		h.fail(w, r, "set_tank_capacity", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) setTankAvailability(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Unavailable bool `json:"unavailable"`
	}
	if !h.decode(w, r, "set_tank_unavailable", &in) {
		return
	}
	out, err := h.store.SetTankUnavailable(chi.URLParam(r, "id"), in.Unavailable)
	if err != nil {
		h.fail(w, r, "set_tank_unavailable", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) tankMovements(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.Tank(id); err != nil {
		h.fail(w, r, "tank_movements", err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.store.MovementsForTank(id))
}

func (h *Handler) listAllocations(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.Allocations(r.URL.Query().Get("batch_id")))
}

func (h *Handler) createAllocation(w http.ResponseWriter, r *http.Request) {
	var in AllocationInput
	if !h.decode(w, r, "allocate_to_tank", &in) {
		return
	}
	out, err := h.store.AllocateToTank(in)
	if err != nil {
		h.fail(w, r, "allocate_to_tank", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) createTransfer(w http.ResponseWriter, r *http.Request) {
	var in TransferInput
	if !h.decode(w, r, "transfer_between_tanks", &in) {
		return
	}
	out, err := h.store.TransferBetweenTanks(in)
	if err != nil {
		h.fail(w, r, "transfer_between_tanks", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.Movements())
}

func (h *Handler) listDeliveryNotes(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.DeliveryNotes())
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var in SaleInput
	if !h.decode(w, r, "add_sale", &in) {
		return
	}
	out, err := h.store.AddSale(in)
	if err != nil {
		h.fail(w, r, "add_sale", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) getDeliveryNote(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.DeliveryNote(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get_delivery_note", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) payDeliveryNote(w http.ResponseWriter, r *http.Request) {
	var in DeliveryPaymentInput
	if !h.decode(w, r, "mark_delivery_note_paid", &in) {
		return
	}
	out, err := h.store.MarkDeliveryNotePaid(chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, "mark_delivery_note_paid", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.Invoices())
}

func (h *Handler) createInvoiceFromReceipt(w http.ResponseWriter, r *http.Request) {
	var in ReceiptInvoiceInput
	if !h.decode(w, r, "add_invoice_from_receipt", &in) {
		return
	}
	out, err := h.store.AddInvoiceFromReceipt(in)
	if err != nil {
		h.fail(w, r, "add_invoice_from_receipt", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) createInvoiceFromDeliveryNote(w http.ResponseWriter, r *http.Request) {
	var in DeliveryNoteInvoiceInput
	if !h.decode(w, r, "add_invoice_from_delivery_note", &in) {
		return
	}
	out, err := h.store.AddInvoiceFromDeliveryNote(in)
	if err != nil {
		h.fail(w, r, "add_invoice_from_delivery_note", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.Invoice(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get_invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) updateInvoice(w http.ResponseWriter, r *http.Request) {
	var in InvoiceUpdate
	if !h.decode(w, r, "update_invoice", &in) {
		return
	}
	out, err := h.store.UpdateInvoice(chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, "update_invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) listInvoicePayments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.Invoice(id); err != nil {
		h.fail(w, r, "invoice_payments", err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.store.InvoicePayments(id))
}

type invoicePaymentResult struct {
	Payment InvoicePayment `json:"payment"`
	Invoice Invoice        `json:"invoice"`
}

func (h *Handler) createInvoicePayment(w http.ResponseWriter, r *http.Request) {
	var in InvoicePaymentInput
	if !h.decode(w, r, "add_invoice_payment", &in) {
		return
	}
	in.InvoiceID = chi.URLParam(r, "id")
	payment, invoice, err := h.store.AddInvoicePayment(in)
	if err != nil {
		h.fail(w, r, "add_invoice_payment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoicePaymentResult{Payment: payment, Invoice: invoice})
}

func (h *Handler) listPaymentReceipts(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.store.PaymentReceipts())
}

type paymentReceiptResult struct {
	Receipt PaymentReceipt `json:"receipt"`
	Skipped []SkippedItem  `json:"skipped"`
}

func (h *Handler) createPaymentReceipt(w http.ResponseWriter, r *http.Request) {
	var in PaymentReceiptInput
	if !h.decode(w, r, "add_payment_receipt", &in) {
		return
	}
	out, skipped, err := h.store.AddPaymentReceipt(in)
	if err != nil {
		h.fail(w, r, "add_payment_receipt", err)
		return
	}
	if skipped == nil {
		skipped = []SkippedItem{}
	}
	httpx.JSON(w, http.StatusCreated, paymentReceiptResult{Receipt: out, Skipped: skipped})
}
