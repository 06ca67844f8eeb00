package ledger

import (
	"fmt"
	"strings"
)

// Settings returns the mill settings.
func (s *Store) Settings() Settings {
	var out Settings
	s.view(func(d *Document) { out = d.Settings })
	return out
}

// UpdateSettings replaces the mill settings.
func (s *Store) UpdateSettings(in Settings) (Settings, error) {
	if err := s.check(in); err != nil {
		return Settings{}, err
	}
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.ServicePricePerKg = round(in.ServicePricePerKg)
	in.BasePurchasePricePerLiter = round(in.BasePurchasePricePerLiter)
	in.DefaultStampDuty = round(in.DefaultStampDuty)
	err := s.apply("update_settings", func(tx *txn) error {
		tx.doc.Settings = in
		// A lower mill share cannot strand oil already allocated to tanks.
		for _, b := range tx.doc.Batches {
			if tx.doc.allocated(b.ID).GreaterThan(tx.doc.allocatable(b)) {
				return fmt.Errorf("%w: batch %s", ErrAllocationExceedsBatch, tx.doc.batchReference(b))
			}
		}
		return nil
	})
	if err != nil {
		return Settings{}, err
	}
	return in, nil
}
