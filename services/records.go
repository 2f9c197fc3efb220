// Package services holds the pure record-set operations applied after
// collection: cross-state deduplication and the size-threshold filter.
package services

import "loopnet_scraper/models"

// Dedupe keeps the first occurrence per natural key, preserving discovery
// order. Records with no key at all carry nothing identifiable and are
// dropped.
func Dedupe(records []models.ListingRecord) []models.ListingRecord {
	seen := make(map[string]bool, len(records))
	var out []models.ListingRecord
	for _, r := range records {
		key := r.Key()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// FilterBySize applies the inclusion thresholds. A record with no size data
// at all is kept (not enough information to exclude). Otherwise it must meet
// either threshold, and is additionally dropped when both counts are known
// and both fall short. The second rule is kept distinct from the first: they
// differ on partial-data records where only one metric is known.
func FilterBySize(records []models.ListingRecord, minBeds, minUnits int) []models.ListingRecord {
	var out []models.ListingRecord
	for _, r := range records {
		if !meetsSize(&r, minBeds, minUnits) {
			continue
		}
		if r.Beds > 0 && r.Beds < minBeds && r.Units > 0 && r.Units < minUnits {
			continue
		}
		out = append(out, r)
	}
	return out
}

func meetsSize(r *models.ListingRecord, minBeds, minUnits int) bool {
	if r.Beds == 0 && r.Units == 0 {
		return true
	}
	return r.Beds >= minBeds || r.Units >= minUnits
}
