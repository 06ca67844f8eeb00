package ledger

import (
	"fmt"

	"github.com/maasra-erp/maasra/internal/shared"
)

// Lookup failures.
var (
	ErrNotFound = fmt.Errorf("ledger: %w", shared.ErrNotFound)
)

// ErrValidation wraps malformed input.
var ErrValidation = fmt.Errorf("ledger: %w", shared.ErrValidation)

// Business rule rejections. Each wraps shared.ErrConflict.
var (
	ErrReceiptNotOpen         = conflict("intake receipt is not open")
	ErrReceiptNotClosed       = conflict("intake receipt is not closed")
	ErrNetWeightNotPositive   = conflict("net weight must be greater than zero")
	ErrTankUnavailable        = conflict("tank is marked unavailable")
	ErrTankCapacityExceeded   = conflict("tank capacity exceeded")
	ErrInsufficientStock      = conflict("insufficient tank quantity")
	ErrSameTank               = conflict("source and destination tank must differ")
	ErrCapacityBelowQuantity  = conflict("capacity below current tank quantity")
	ErrServiceOilNotStock     = conflict("service oil belongs to the client and cannot enter mill stock")
	ErrAllocationExceedsBatch = conflict("allocation exceeds the batch allocatable quantity")
	ErrPriceRequired          = conflict("unit price required on first allocation")
	ErrPriceMismatch          = conflict("batch already priced differently")
	ErrAlreadyInvoiced        = conflict("source already invoiced")
	ErrNotServiceReceipt      = conflict("only service receipts can be invoiced")
	ErrBatchMissing           = conflict("no extraction batch recorded for receipt")
	ErrTotalBelowPaid         = conflict("invoice total cannot drop below the amount already paid")
	ErrPaymentExceedsBalance  = conflict("payment exceeds invoice balance")
	ErrAlreadyPaid            = conflict("delivery note already paid")
	ErrNothingToSettle        = conflict("no settleable extraction batch in request")
	ErrClientInUse            = conflict("client is referenced by ledger records")
	ErrSystemOperation        = conflict("system generated operation cannot be deleted")
	ErrInvalidDocument        = conflict("document violates ledger invariants")
)

func conflict(msg string) error {
	return fmt.Errorf("ledger: %s: %w", msg, shared.ErrConflict)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}
