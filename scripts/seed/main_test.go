package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/maasra-erp/maasra/internal/ledger"
)

func TestSeedBuildsConsistentLedger(t *testing.T) {
	store := ledger.NewStore()
	require.NoError(t, seed(store, time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)))

	doc := store.Document()
	require.NoError(t, doc.Validate())
	require.Len(t, doc.Tanks, 2)
	require.Len(t, doc.Invoices, 2)
	require.Len(t, doc.PaymentReceipts, 1)

	tanks := map[string]string{}
	for _, tank := range store.Tanks() {
		tanks[tank.Code] = tank.Quantity.String()
	}
	require.Equal(t, map[string]string{"R1": "168", "R2": "450"}, tanks)

	pr := store.PaymentReceipts()[0]
	require.Equal(t, "7755", pr.Total.String())
}
