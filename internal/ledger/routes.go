package ledger

import "github.com/go-chi/chi/v5"

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/document", h.getDocument)
	r.Put("/document", h.putDocument)
	r.Get("/settings", h.getSettings)
	r.Put("/settings", h.putSettings)

	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.listClients)
		r.Post("/", h.createClient)
		r.Get("/{id}", h.getClient)
		r.Patch("/{id}", h.updateClient)
		r.Delete("/{id}", h.deleteClient)
		r.Get("/{id}/statement", h.clientStatement)
	})
	r.Route("/wholesale-clients", func(r chi.Router) {
		r.Get("/", h.listWholesaleClients)
		r.Post("/", h.createWholesaleClient)
		r.Get("/{id}", h.getWholesaleClient)
		r.Put("/{id}", h.updateWholesaleClient)
		r.Delete("/{id}", h.deleteWholesaleClient)
	})
	r.Route("/operations", func(r chi.Router) {
		r.Get("/", h.listOperations)
		r.Post("/", h.createOperation)
		r.Get("/deleted", h.listDeletedOperations)
		r.Delete("/{id}", h.deleteOperation)
	})

	// Intake and stock
	r.Route("/receipts", func(r chi.Router) {
		r.Get("/", h.listReceipts)
		r.Post("/", h.createReceipt)
		r.Get("/{id}", h.getReceipt)
		r.Patch("/{id}", h.updateReceipt)
	})
	r.Route("/batches", func(r chi.Router) {
		r.Get("/", h.listBatches)
		r.Post("/", h.createExtraction)
		r.Get("/{id}", h.getBatch)
		r.Get("/{id}/allocations", h.batchAllocations)
	})
	r.Route("/tanks", func(r chi.Router) {
		r.Get("/", h.listTanks)
		r.Post("/", h.createTank)
		r.Get("/{id}", h.getTank)
		r.Put("/{id}/capacity", h.setTankCapacity)
		r.Put("/{id}/availability", h.setTankAvailability)
		r.Get("/{id}/movements", h.tankMovements)
	})
	r.Get("/allocations", h.listAllocations)
	r.Post("/allocations", h.createAllocation)
	r.Post("/transfers", h.createTransfer)
	r.Get("/movements", h.listMovements)

	// Sales and billing
	r.Route("/delivery-notes", func(r chi.Router) {
		r.Get("/", h.listDeliveryNotes)
		r.Post("/", h.createSale)
		r.Get("/{id}", h.getDeliveryNote)
		r.Post("/{id}/payment", h.payDeliveryNote)
	})
	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.listInvoices)
		r.Post("/from-receipt", h.createInvoiceFromReceipt)
		r.Post("/from-delivery-note", h.createInvoiceFromDeliveryNote)
		r.Get("/{id}", h.getInvoice)
		r.Patch("/{id}", h.updateInvoice)
		r.Get("/{id}/payments", h.listInvoicePayments)
		r.Post("/{id}/payments", h.createInvoicePayment)
	})
	r.Get("/payment-receipts", h.listPaymentReceipts)
	r.Post("/payment-receipts", h.createPaymentReceipt)
}
