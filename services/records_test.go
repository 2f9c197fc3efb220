package services

import (
	"testing"

	"loopnet_scraper/models"
)

func TestDedupeByURL(t *testing.T) {
	records := []models.ListingRecord{
		{URL: "https://www.loopnet.com/Listing/1/", State: "TX", Price: "$1"},
		{URL: "https://www.loopnet.com/Listing/2/", State: "TX", Price: "$2"},
		{URL: "https://www.loopnet.com/Listing/1/", State: "OK", Price: "$3"},
	}

	out := Dedupe(records)
	if len(out) != 2 {
		t.Fatalf("got %d records; want 2", len(out))
	}
	// First occurrence wins, order preserved.
	if out[0].State != "TX" || out[0].Price != "$1" {
		t.Errorf("first record = %+v", out[0])
	}
	if out[1].URL != "https://www.loopnet.com/Listing/2/" {
		t.Errorf("second record = %+v", out[1])
	}
}

func TestDedupeByAddressWithoutURL(t *testing.T) {
	records := []models.ListingRecord{
		{Address: "456 Main St, Springfield, IL 62704", Price: "$1"},
		{Address: "  456 MAIN ST, Springfield, IL 62704 ", Price: "$2"},
		{Address: "789 Oak Ave, Peoria, IL 61602", Price: "$3"},
	}

	out := Dedupe(records)
	if len(out) != 2 {
		t.Fatalf("got %d records; want 2", len(out))
	}
	if out[0].Price != "$1" {
		t.Errorf("first occurrence must win, got %+v", out[0])
	}
}

func TestDedupeDropsKeyless(t *testing.T) {
	records := []models.ListingRecord{
		{State: "TX", Beds: 60},
		{URL: "https://www.loopnet.com/Listing/1/"},
	}

	out := Dedupe(records)
	if len(out) != 1 {
		t.Fatalf("got %d records; want 1", len(out))
	}
	if out[0].URL == "" {
		t.Errorf("keyless record survived: %+v", out[0])
	}
}

func TestFilterBySize(t *testing.T) {
	const minBeds, minUnits = 50, 40

	tests := []struct {
		name  string
		beds  int
		units int
		keep  bool
	}{
		{"no size data at all", 0, 0, true},
		{"beds meet threshold", 120, 0, true},
		{"units meet threshold", 0, 45, true},
		{"beds at threshold exactly", 50, 0, true},
		{"both known, both short", 10, 10, false},
		{"only beds known, short", 10, 0, false},
		{"only units known, short", 0, 12, false},
		{"beds short but units large", 10, 60, true},
		{"units short but beds large", 80, 5, true},
	}

	for _, tt := range tests {
		records := []models.ListingRecord{{Beds: tt.beds, Units: tt.units, Price: "$1"}}
		out := FilterBySize(records, minBeds, minUnits)
		kept := len(out) == 1
		if kept != tt.keep {
			t.Errorf("%s (beds=%d units=%d): kept=%v; want %v",
				tt.name, tt.beds, tt.units, kept, tt.keep)
		}
	}
}

func TestFilterBySizePreservesOrder(t *testing.T) {
	records := []models.ListingRecord{
		{URL: "a", Beds: 120},
		{URL: "b", Beds: 10, Units: 10},
		{URL: "c", Units: 45},
	}

	out := FilterBySize(records, 50, 40)
	if len(out) != 2 {
		t.Fatalf("got %d records; want 2", len(out))
	}
	if out[0].URL != "a" || out[1].URL != "c" {
		t.Errorf("order not preserved: %+v", out)
	}
}
