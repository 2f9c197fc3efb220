package scraper

import (
	"log"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// block is one candidate listing: the text to parse, the listing's own URL
// when resolvable, and the state it was discovered under.
type block struct {
	text  string
	url   string
	state string
}

// blockStrategy locates the repeating listing blocks on a rendered search
// page. Strategies are tried in order; the first one yielding anything wins.
type blockStrategy interface {
	name() string
	extract(page playwright.Page, state string) []block
}

func defaultStrategies(p *Patterns) []blockStrategy {
	return []blockStrategy{
		&cardStrategy{patterns: p},
		&linkStrategy{patterns: p},
		&pageTextStrategy{patterns: p},
	}
}

const fallbackStrategyName = "pagetext"

// extractBlocks tries each strategy in order and returns the first non-empty
// yield. onFallback fires as soon as the structured strategies are exhausted
// and whole-page text parsing begins, whether or not that parsing produces
// anything; a page where even the fallback finds nothing is exactly the page
// worth inspecting.
func extractBlocks(strategies []blockStrategy, page playwright.Page, state string, onFallback func()) []block {
	for _, strategy := range strategies {
		if strategy.name() == fallbackStrategyName {
			onFallback()
		}
		if blocks := strategy.extract(page, state); len(blocks) > 0 {
			return blocks
		}
	}
	return nil
}

// Structural container shapes the site has used for result cards; first
// selector matching more than one element wins.
var cardSelectors = []string{
	"[class*='placard']", "[class*='Placard']",
	"article.placard", "article[class*='placard']",
	"[data-testid='property-card']", "[class*='PropertyCard']",
	"[class*='property-card']", "[class*='listing-card']",
	"[class*='ListingCard']", "[class*='search-card']",
	"[class*='result-card']", "[class*='search-result']",
	"article[class*='card']", ".listing-card",
	"[class*='profileCard']", "[class*='profile-card']",
}

// Hrefs that look like listing paths but are really category or search pages.
var skipHrefParts = []string{
	"senior-housing", "senior-living", "assisted-living",
	"?types=", "?propertytypes=", "/search/",
}

type cardStrategy struct {
	patterns *Patterns
}

func (s *cardStrategy) name() string { return "cards" }

func (s *cardStrategy) extract(page playwright.Page, state string) []block {
	var cards []playwright.Locator
	used := ""
	for _, sel := range cardSelectors {
		found, err := page.Locator(sel).All()
		if err != nil {
			continue
		}
		if len(found) > 1 {
			cards = found
			used = sel
			break
		}
	}
	if cards == nil {
		return nil
	}
	log.Printf("Found %d cards via: %s", len(cards), used)

	var blocks []block
	for _, card := range cards {
		text, err := card.InnerText()
		if err != nil || len(strings.TrimSpace(text)) < 10 {
			continue
		}
		blocks = append(blocks, block{text: text, url: cardLink(card), state: state})
	}
	return blocks
}

// cardLink returns the card's first listing-link target, absolute, or "".
func cardLink(card playwright.Locator) string {
	a := card.Locator("a[href*='/Listing/'], a[href*='/listing/'], a[href*='/property/']").First()
	href, err := a.GetAttribute("href")
	if err != nil || href == "" {
		return ""
	}
	lower := strings.ToLower(href)
	if strings.Contains(lower, "search") || strings.Contains(lower, "?types=") {
		return ""
	}
	return absoluteURL(href)
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return baseURL + href
}

type linkStrategy struct {
	patterns *Patterns
}

func (s *linkStrategy) name() string { return "links" }

func (s *linkStrategy) extract(page playwright.Page, state string) []block {
	anchors, err := page.Locator("a").All()
	if err != nil {
		return nil
	}

	var blocks []block
	seen := make(map[string]bool)
	for _, a := range anchors {
		href, err := a.GetAttribute("href")
		if err != nil || href == "" || seen[href] {
			continue
		}
		if !s.patterns.IsPropertyPath(href) || containsAny(strings.ToLower(href), skipHrefParts) {
			continue
		}
		seen[href] = true

		// The link's own text is usually just a title; the nearest block-level
		// ancestor carries the card fields.
		text := ""
		if v, err := a.Evaluate(
			`el => ((el.closest('div[class]') || el.parentElement || el).innerText) || ''`, nil,
		); err == nil {
			if s, ok := v.(string); ok {
				text = s
			}
		}
		if text == "" {
			text, _ = a.InnerText()
		}
		if len(strings.TrimSpace(text)) < 5 {
			continue
		}
		blocks = append(blocks, block{text: text, url: absoluteURL(href), state: state})
	}
	if len(blocks) > 0 {
		log.Printf("Found %d property links", len(blocks))
	}
	return blocks
}

type pageTextStrategy struct {
	patterns *Patterns
}

func (s *pageTextStrategy) name() string { return fallbackStrategyName }

func (s *pageTextStrategy) extract(page playwright.Page, state string) []block {
	body, err := page.Locator("body").InnerText()
	if err != nil {
		return nil
	}
	log.Println("No card elements found, segmenting full page text")

	var blocks []block
	for _, segment := range segmentPageText(s.patterns, body) {
		blocks = append(blocks, block{text: segment, state: state})
	}
	return blocks
}

// segmentPageText splits whole-page text on "View ..." action labels and
// keeps segments long enough to be listings that mention a price, beds or
// units.
func segmentPageText(p *Patterns, body string) []string {
	var segments []string
	for _, seg := range p.SplitViewBlocks(body) {
		seg = strings.TrimSpace(seg)
		if len(seg) <= 20 {
			continue
		}
		lower := strings.ToLower(seg)
		if strings.Contains(seg, "$") || strings.Contains(lower, "bed") || strings.Contains(lower, "unit") {
			segments = append(segments, seg)
		}
	}
	return segments
}
