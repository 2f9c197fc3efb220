package scraper

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"loopnet_scraper/models"
)

// Contact-like sub-regions of a detail page, in the shapes the site has used
// for broker/agent cards.
var contactSelectors = []string{
	"[class*='roker']", "[class*='ontact']", "[class*='Agent']",
	"[class*='Team']", "[class*='Advisor']", "[class*='advisor']",
	"[class*='listing-broker']", "[class*='ListingBroker']",
	"[class*='broker-card']", "[class*='BrokerCard']",
	"[class*='contact-card']", "[class*='ContactCard']",
}

// Action words that disqualify a contact-scope line from being a person's
// name.
var nameStopwords = []string{
	"contact", "listed", "team", "view", "request", "schedule", "call",
	"share", "save", "print", "report", "broker", "question", "interest",
	"tour", "message", "inquiry",
}

// Email domains belonging to the source site or its data provider; never
// broker addresses.
var ownDomains = []string{"loopnet.com", "costar.com"}

// DetailInfo holds fields recovered from a listing's own page. It is applied
// to a record only where the record is still empty.
type DetailInfo struct {
	BrokerName    string
	BrokerPhone   string
	BrokerEmail   string
	BrokerCompany string
	Beds          int
	Units         int
	SqFt          string
	Address       string
	CapRate       string
}

// parseDetail extracts contact and size fields from a detail page given its
// visible body text, the concatenated text of contact-like sub-regions (may
// be empty), and the raw markup for tel:/mailto: reference harvesting.
func parseDetail(p *Patterns, bodyText, contactText, markup string) DetailInfo {
	info := DetailInfo{}

	searchText := contactText
	if searchText == "" {
		searchText = bodyText
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup)); err == nil {
		info.BrokerPhone = telReference(doc)
		info.BrokerEmail = mailReference(doc)
	}
	if info.BrokerPhone == "" {
		info.BrokerPhone = p.FirstPhone(searchText)
	}
	if info.BrokerEmail == "" {
		for _, email := range p.Emails(searchText) {
			if !containsAny(strings.ToLower(email), ownDomains) {
				info.BrokerEmail = email
				break
			}
		}
	}

	// The name heuristic only trusts the narrower contact scope; whole-page
	// text produces too many capitalized non-names.
	if contactText != "" {
		info.BrokerName = pickBrokerName(p, contactText)
	}

	for _, line := range strings.Split(searchText, "\n") {
		if p.IsBrandLine(strings.ToLower(strings.TrimSpace(line))) {
			info.BrokerCompany = strings.TrimSpace(line)
			break
		}
	}

	lower := strings.ToLower(bodyText)
	info.Beds = p.DetailBedCount(lower)
	info.Units = p.UnitCount(lower)
	info.SqFt = p.SquareFeet(lower)
	info.Address = p.FullAddress(bodyText)
	info.CapRate = p.CapRate(lower)

	return info
}

// telReference returns the first tel: link target of at least 10 characters.
func telReference(doc *goquery.Document) string {
	phone := ""
	doc.Find("a[href^='tel:']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		candidate := strings.TrimSpace(strings.TrimPrefix(href, "tel:"))
		if len(candidate) >= 10 {
			phone = candidate
			return false
		}
		return true
	})
	return phone
}

// mailReference returns the first mailto: target that is not an address on
// the source site's own domain.
func mailReference(doc *goquery.Document) string {
	email := ""
	doc.Find("a[href^='mailto:']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		candidate := strings.TrimPrefix(href, "mailto:")
		if i := strings.Index(candidate, "?"); i >= 0 {
			candidate = candidate[:i]
		}
		candidate = strings.TrimSpace(candidate)
		if candidate != "" && strings.Contains(candidate, "@") &&
			!strings.Contains(strings.ToLower(candidate), "loopnet") {
			email = candidate
			return false
		}
		return true
	})
	return email
}

// pickBrokerName scans contact-scope lines for the first one shaped like a
// person's name: 4-50 characters, 2-4 words each capitalized, no leading
// digit, no email, no UI-action words.
func pickBrokerName(p *Patterns, contactText string) string {
	for _, line := range strings.Split(contactText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "@") || p.StartsWithDigit(line) ||
			len(line) > 50 || len(line) < 4 {
			continue
		}
		if containsAny(strings.ToLower(line), nameStopwords) {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 4 {
			continue
		}
		if allWordsCapitalized(words) {
			return line
		}
	}
	return ""
}

// allWordsCapitalized checks every word longer than one rune that starts
// with a letter; initials and punctuation tokens are not held against the
// line.
func allWordsCapitalized(words []string) bool {
	for _, w := range words {
		runes := []rune(w)
		if len(runes) <= 1 || !unicode.IsLetter(runes[0]) {
			continue
		}
		if !unicode.IsUpper(runes[0]) {
			return false
		}
	}
	return true
}

// ApplyTo merges the detail-page findings into the record, filling only
// fields that are still empty. Enrichment never overwrites list-page data.
func (d DetailInfo) ApplyTo(r *models.ListingRecord) {
	if r.BrokerName == "" {
		r.BrokerName = d.BrokerName
	}
	if r.BrokerPhone == "" {
		r.BrokerPhone = d.BrokerPhone
	}
	if r.BrokerEmail == "" {
		r.BrokerEmail = d.BrokerEmail
	}
	if r.BrokerCompany == "" {
		r.BrokerCompany = d.BrokerCompany
	}
	if r.Beds == 0 {
		r.Beds = d.Beds
	}
	if r.Units == 0 {
		r.Units = d.Units
	}
	if r.SqFt == "" {
		r.SqFt = d.SqFt
	}
	if r.Address == "" {
		r.Address = d.Address
	}
	if r.CapRate == "" {
		r.CapRate = d.CapRate
	}
}
