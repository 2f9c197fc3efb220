package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

// Patterns is the fixed library of text patterns shared by the search-page
// parser and the detail enricher. Both paths must classify text identically,
// so one instance is built up front and injected into each. All methods are
// pure functions over their input.
type Patterns struct {
	number       *regexp.Regexp
	propertyPath *regexp.Regexp
	viewSplit    *regexp.Regexp
	bed          *regexp.Regexp
	bedDetail    *regexp.Regexp
	unit         *regexp.Regexp
	room         *regexp.Regexp
	capRate      *regexp.Regexp
	price        *regexp.Regexp
	addrZip      *regexp.Regexp
	addrState    *regexp.Regexp
	sqftCheck    *regexp.Regexp
	sqftExtract  *regexp.Regexp
	phone        *regexp.Regexp
	email        *regexp.Regexp
	leadingDigit *regexp.Regexp
	fullAddr     *regexp.Regexp

	brandKeywords []string
	typeKeywords  []string
}

func DefaultPatterns() *Patterns {
	return &Patterns{
		number:       regexp.MustCompile(`\d[\d,]*`),
		propertyPath: regexp.MustCompile(`(?i)/listing/\d|/property/`),
		viewSplit:    regexp.MustCompile(`(?i)(?:View\s+(?:Details|Property|Listing|Photos|OM))\s*·?\s*`),
		bed:          regexp.MustCompile(`(?i)(\d+)[\s-]*(?:licensed\s*bed|bed)`),
		bedDetail:    regexp.MustCompile(`(?i)(\d+)[\s-]*(?:bed|licensed)`),
		unit:         regexp.MustCompile(`(?i)(\d+)[\s-]*unit`),
		room:         regexp.MustCompile(`(?i)(\d+)[\s-]*room`),
		capRate:      regexp.MustCompile(`(?i)([\d.]+)\s*%?\s*cap`),
		price:        regexp.MustCompile(`\$[\d,]+`),
		addrZip:      regexp.MustCompile(`,\s*[A-Z]{2}\s+\d{5}`),
		addrState:    regexp.MustCompile(`,\s*[A-Z]{2}\s*$`),
		sqftCheck:    regexp.MustCompile(`(?i)[\d,]+\s*(?:sqft|sq\s*ft|sf)\b`),
		sqftExtract:  regexp.MustCompile(`(?i)([\d,]+)\s*(?:sqft|sq\s*ft|sf)`),
		phone:        regexp.MustCompile(`\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`),
		email:        regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.]+`),
		leadingDigit: regexp.MustCompile(`^[\d(+]`),
		fullAddr:     regexp.MustCompile(`(\d+[^,\n]+,\s*[A-Za-z\s]+,\s*[A-Z]{2}\s+\d{5})`),

		brandKeywords: []string{
			"marcus", "millichap", "cbre", "cushman", "jll", "colliers",
			"newmark", "berkadia", "ad advisors", "fish commercial",
			"realty", "advisors group", "capital", "brokerage",
			"keller williams", "coldwell banker", "century 21", "nai", "svn",
		},
		typeKeywords: []string{
			"assisted living", "senior living", "senior housing",
			"nursing home", "memory care", "skilled nursing",
			"continuing care", "medical care", "health care",
			"residential care", "adult care", "group home",
		},
	}
}

// ExtractNumber returns the first run of digits (with thousands separators)
// in text as an integer, or 0.
func (p *Patterns) ExtractNumber(text string) int {
	m := p.number.FindString(text)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// BedCount extracts a bed count from lower-cased block text, 0 if absent.
func (p *Patterns) BedCount(lower string) int {
	return firstGroupInt(p.bed, lower)
}

// DetailBedCount is the looser bed pattern used on detail pages, where
// "120 Licensed" appears without a following "bed".
func (p *Patterns) DetailBedCount(lower string) int {
	return firstGroupInt(p.bedDetail, lower)
}

// UnitCount extracts a unit count, falling back to a room count only if no
// unit count is present.
func (p *Patterns) UnitCount(lower string) int {
	if n := firstGroupInt(p.unit, lower); n > 0 {
		return n
	}
	return firstGroupInt(p.room, lower)
}

// CapRate returns a formatted cap rate ("7.5% CAP") or "".
func (p *Patterns) CapRate(lower string) string {
	m := p.capRate.FindStringSubmatch(lower)
	if m == nil {
		return ""
	}
	return m[1] + "% CAP"
}

// SquareFeet returns formatted square footage ("12,345 SF") or "".
func (p *Patterns) SquareFeet(lower string) string {
	if !p.sqftCheck.MatchString(lower) {
		return ""
	}
	m := p.sqftExtract.FindStringSubmatch(lower)
	if m == nil {
		return ""
	}
	return m[1] + " SF"
}

// HasPrice reports whether the line contains a $-prefixed digit run.
func (p *Patterns) HasPrice(line string) bool {
	return p.price.MatchString(line)
}

// LooksLikeAddress reports whether the line ends in a ", ST 12345" or bare
// ", ST" suffix.
func (p *Patterns) LooksLikeAddress(line string) bool {
	return p.addrZip.MatchString(line) || p.addrState.MatchString(line)
}

// FirstPhone returns the first phone-shaped match in text, or "".
func (p *Patterns) FirstPhone(text string) string {
	return p.phone.FindString(text)
}

// Emails returns all email-shaped matches in text.
func (p *Patterns) Emails(text string) []string {
	return p.email.FindAllString(text, -1)
}

// FullAddress returns the first "123 Street, City, ST 12345" shaped match.
func (p *Patterns) FullAddress(text string) string {
	m := p.fullAddr.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// IsPropertyPath reports whether href points at a single listing page.
func (p *Patterns) IsPropertyPath(href string) bool {
	return p.propertyPath.MatchString(href)
}

// SplitViewBlocks segments whole-page text on recurring "View ..."
// action-label boundaries.
func (p *Patterns) SplitViewBlocks(text string) []string {
	return p.viewSplit.Split(text, -1)
}

// IsBrandLine reports whether the lower-cased line names a known brokerage.
func (p *Patterns) IsBrandLine(lower string) bool {
	return containsAny(lower, p.brandKeywords)
}

// IsTypeLine reports whether the lower-cased line looks like a care-facility
// classification.
func (p *Patterns) IsTypeLine(lower string) bool {
	return containsAny(lower, p.typeKeywords)
}

// StartsWithDigit reports whether the line opens with a digit, "(" or "+".
func (p *Patterns) StartsWithDigit(line string) bool {
	return p.leadingDigit.MatchString(line)
}

func firstGroupInt(re *regexp.Regexp, s string) int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
