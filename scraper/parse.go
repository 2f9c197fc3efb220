package scraper

import (
	"strings"

	"loopnet_scraper/models"
)

// UI chrome that must never be classified as listing data.
var chromePhrases = []string{
	"view details", "view property", "view listing", "view photos",
	"save search", "sign up", "log in", "show map", "clear filters",
	"results per page", "save my search", "see new listings",
	"create alert", "get alerts", "view om", "view flyer",
}

// Looser stoplist for the secondary label-recovery pass.
var fallbackChromeWords = []string{
	"view", "save", "sign up", "show map", "clear", "results per",
}

// parseListingText converts one block of raw card text into a record.
// Numeric fields come from the whole block; the remaining fields are assigned
// by classifying each line in order, first match per category wins. Blocks
// carrying none of price, beds or units are not listings (navigation chrome,
// ads) and yield nil.
func parseListingText(p *Patterns, text, link, state string) *models.ListingRecord {
	lines := splitBlockLines(text)
	if len(lines) == 0 {
		return nil
	}

	rec := &models.ListingRecord{State: state, URL: link}
	lower := strings.ToLower(text)

	rec.Beds = p.BedCount(lower)
	rec.Units = p.UnitCount(lower)
	rec.CapRate = p.CapRate(lower)

	for _, line := range lines {
		ll := strings.ToLower(line)
		if containsAny(ll, chromePhrases) {
			continue
		}
		switch {
		case rec.Price == "" && p.HasPrice(line):
			rec.Price = line
		case rec.Price == "" && strings.Contains(ll, "price not disclosed"):
			rec.Price = "Price Not Disclosed"
		case rec.Price == "" && strings.Contains(ll, "call for") && strings.Contains(ll, "price"):
			rec.Price = "Call for Price"
		case rec.Price == "" && strings.Contains(ll, "negotiable"):
			rec.Price = "Negotiable"
		case rec.Address == "" && p.LooksLikeAddress(line):
			rec.Address = line
		case rec.SqFt == "" && p.SquareFeet(ll) != "":
			rec.SqFt = p.SquareFeet(ll)
		case rec.PropertyType == "" && p.IsTypeLine(ll):
			rec.PropertyType = line
		case rec.BrokerCompany == "" && p.IsBrandLine(ll):
			rec.BrokerCompany = line
		}
	}

	// Best-effort label recovery: a card with neither address nor type still
	// usually opens with a usable title line.
	if rec.Address == "" && rec.PropertyType == "" {
		for _, line := range lines {
			ll := strings.ToLower(line)
			if containsAny(ll, fallbackChromeWords) {
				continue
			}
			if len(line) > 15 && !strings.Contains(line, "$") {
				rec.PropertyType = line
				break
			}
		}
	}

	if rec.Price == "" && rec.Beds == 0 && rec.Units == 0 {
		return nil
	}
	return rec
}

// splitBlockLines splits block text into trimmed non-empty lines, treating
// the "·" bullet separator as a line break.
func splitBlockLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "·", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
