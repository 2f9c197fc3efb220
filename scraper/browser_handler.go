package scraper

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"loopnet_scraper/config"
	"loopnet_scraper/models"
)

const (
	baseURL         = "https://www.loopnet.com"
	searchURLFormat = baseURL + "/search/assisted-living-facilities/%s/for-sale/"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	challengePollInterval = 2 * time.Second
	initialChallengeWait  = 180 * time.Second
	pageChallengeWait     = 30 * time.Second
	detailChallengeWait   = 60 * time.Second
)

// Markers that distinguish a bot-challenge interstitial from a result page.
var challengeMarkers = []string{
	"verify you are human", "checking your browser", "just a moment",
	"challenge-platform", "turnstile", "hcaptcha", "recaptcha",
	"cf-challenge", "cf-turnstile", "are you a robot",
	"distil_r_captcha", "perimeterx", "px-captcha",
}

// Clock abstracts time for the challenge-wait loop so the polling ceiling can
// be tested without real delays.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// BrowserHandler drives one browsing session through search-result and
// detail pages. All navigation failures are tolerated: a step that produces
// nothing is logged and the run moves on with whatever loaded.
type BrowserHandler struct {
	cfg        *config.Config
	patterns   *Patterns
	clock      Clock
	strategies []blockStrategy

	mu          sync.Mutex
	pw          *playwright.Playwright
	browser     playwright.Browser
	context     playwright.BrowserContext
	page        playwright.Page
	initialized bool
	debugSaved  bool
}

func NewBrowserHandler(cfg *config.Config, patterns *Patterns) *BrowserHandler {
	return &BrowserHandler{
		cfg:        cfg,
		patterns:   patterns,
		clock:      systemClock{},
		strategies: defaultStrategies(patterns),
	}
}

func (h *BrowserHandler) ID() string { return "loopnet" }

// Start launches the browser and opens the site root once so the session is
// warmed up before the first state search.
func (h *BrowserHandler) Start() error {
	if err := h.ensureBrowser(); err != nil {
		return err
	}
	log.Println("Opening site root...")
	h.navigate(baseURL, initialChallengeWait)
	return nil
}

func (h *BrowserHandler) ensureBrowser() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.initialized {
		return nil
	}

	var err error
	h.pw, err = playwright.Run()
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(h.cfg.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	}
	if h.cfg.ProxyURL != "" {
		launchOpts.Proxy = &playwright.Proxy{Server: h.cfg.ProxyURL}
	}
	h.browser, err = h.pw.Chromium.Launch(launchOpts)
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	h.context, err = h.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:  &playwright.Size{Width: 1920, Height: 1080},
		UserAgent: playwright.String(userAgent),
	})
	if err != nil {
		return fmt.Errorf("failed to create context: %w", err)
	}
	h.context.AddInitScript(playwright.Script{
		Content: playwright.String(`Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`),
	})

	h.page, err = h.context.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}

	h.initialized = true
	return nil
}

func (h *BrowserHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.page != nil {
		h.page.Close()
		h.page = nil
	}
	if h.context != nil {
		h.context.Close()
	}
	if h.browser != nil {
		h.browser.Close()
	}
	if h.pw != nil {
		h.pw.Stop()
	}
	h.initialized = false
}

// Scrape walks one state's paginated search results, returning every record
// parsed along the way. Pagination stops at the page ceiling, a page with no
// records, or a failed advance.
func (h *BrowserHandler) Scrape(ctx context.Context, state string) ([]models.ListingRecord, error) {
	if err := h.ensureBrowser(); err != nil {
		return nil, err
	}

	searchURL := fmt.Sprintf(searchURLFormat, strings.ToLower(state))
	log.Printf("[%s] %s", state, searchURL)
	h.navigate(searchURL, initialChallengeWait)
	h.handleConsent()

	pageNum := 0
	records := collectPages(
		func() []models.ListingRecord {
			pageNum++
			log.Printf("[%s] page %d...", state, pageNum)
			return h.scrapeSearchPage(state)
		},
		func() bool {
			if ctx.Err() != nil {
				return false
			}
			if !h.clickNext() {
				log.Printf("[%s] no next page", state)
				return false
			}
			h.waitForChallenge(pageChallengeWait)
			return true
		},
		h.cfg.MaxPages,
	)
	return records, ctx.Err()
}

// collectPages drives one region's pagination: scrape, then advance, until
// the ceiling is reached, a page yields nothing, or advancing fails. A zero
// yield is end-of-results, not an error.
func collectPages(scrape func() []models.ListingRecord, advance func() bool, maxPages int) []models.ListingRecord {
	var all []models.ListingRecord
	for page := 1; page <= maxPages; page++ {
		records := scrape()
		if len(records) == 0 {
			break
		}
		all = append(all, records...)
		if page == maxPages || !advance() {
			break
		}
	}
	return all
}

// scrapeSearchPage segments the current page into blocks, parses each into a
// record, and dedupes within the page by natural key.
func (h *BrowserHandler) scrapeSearchPage(state string) []models.ListingRecord {
	h.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(6000),
	})
	h.scrollPage(5, time.Second)

	blocks := extractBlocks(h.strategies, h.page, state, func() {
		if !h.debugSaved {
			h.saveDebug()
			h.debugSaved = true
		}
	})

	var records []models.ListingRecord
	seen := make(map[string]bool)
	for _, b := range blocks {
		rec := parseListingText(h.patterns, b.text, b.url, b.state)
		if rec == nil {
			continue
		}
		key := rec.Key()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		records = append(records, *rec)
	}
	log.Printf("Parsed %d listings from this page", len(records))
	return records
}

// navigate loads url with a bounded timeout, then waits best-effort for
// network quiescence and for any challenge screen to clear. Timeouts never
// fail the run; whatever partially loaded is used.
func (h *BrowserHandler) navigate(url string, challengeWait time.Duration) {
	_, err := h.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(30000),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		log.Printf("Page load timeout, continuing: %v", err)
	}
	h.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(8000),
	})
	h.waitForChallenge(challengeWait)
	h.clock.Sleep(time.Second)
}

func (h *BrowserHandler) waitForChallenge(limit time.Duration) bool {
	return waitForChallenge(h.page.Content, limit, h.clock)
}

// waitForChallenge polls page content until no challenge marker remains or
// the ceiling expires, allowing manual resolution in a headed browser.
// Returns false on ceiling expiry; processing continues regardless.
func waitForChallenge(content func() (string, error), limit time.Duration, clock Clock) bool {
	deadline := clock.Now().Add(limit)
	warned := false
	for clock.Now().Before(deadline) {
		html, err := content()
		if err != nil {
			clock.Sleep(challengePollInterval)
			continue
		}
		if marker := detectChallenge(html); marker == "" {
			if warned {
				log.Println("Challenge cleared")
			}
			return true
		} else if !warned {
			log.Printf("Challenge detected (%s); solve it in the browser window, waiting up to %s", marker, limit)
			warned = true
		}
		clock.Sleep(challengePollInterval)
	}
	log.Println("Challenge wait ceiling reached, continuing anyway")
	return false
}

// detectChallenge returns the first challenge marker present in the page
// content, or "" when the page looks normal.
func detectChallenge(content string) string {
	lower := strings.ToLower(content)
	for _, marker := range challengeMarkers {
		if strings.Contains(lower, marker) {
			return marker
		}
	}
	return ""
}

func (h *BrowserHandler) scrollPage(times int, delay time.Duration) {
	for i := 0; i < times; i++ {
		h.page.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`)
		h.clock.Sleep(delay)
	}
}

// Prioritized "next page" affectors: targeted lookups first, then a text
// scan over interactive elements.
var nextSelectors = []string{
	"[aria-label='Next']", "[aria-label='next']", "[aria-label='Next Page']",
	"[class*='next' i]", "[class*='Next']",
	"a[class*='paging-next']", "a[class*='pagingNext']",
	"[class*='pagination'] a:last-child",
}

var nextLabels = map[string]bool{
	"Next": true, "›": true, "»": true, ">": true, "Next Page": true,
}

// clickNext advances to the next result page, reporting whether it managed
// to.
func (h *BrowserHandler) clickNext() bool {
	for _, sel := range nextSelectors {
		btn := h.page.Locator(sel).First()
		if visible, _ := btn.IsVisible(); !visible {
			continue
		}
		if err := btn.Click(); err != nil {
			continue
		}
		h.settleAfterClick()
		return true
	}

	// Fallback: scan every link and button for a "Next" label.
	elements, err := h.page.Locator("a, button").All()
	if err != nil {
		return false
	}
	for _, el := range elements {
		text, err := el.InnerText()
		if err != nil || !nextLabels[strings.TrimSpace(text)] {
			continue
		}
		visible, _ := el.IsVisible()
		enabled, _ := el.IsEnabled()
		if !visible || !enabled {
			continue
		}
		if err := el.Click(); err != nil {
			continue
		}
		h.settleAfterClick()
		return true
	}
	return false
}

func (h *BrowserHandler) settleAfterClick() {
	err := h.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(5000),
	})
	if err != nil {
		h.clock.Sleep(2500 * time.Millisecond)
	}
}

// handleConsent dismisses a cookie/consent banner if one is up. Best effort.
func (h *BrowserHandler) handleConsent() {
	consentSelectors := []string{
		"button:has-text('Accept All')", "button:has-text('I Accept')",
		"button:has-text('Accept')", "button:has-text('Agree')",
		"button[id*='accept']", "button[class*='consent']",
	}
	for _, sel := range consentSelectors {
		btn := h.page.Locator(sel).First()
		if visible, _ := btn.IsVisible(); visible {
			if btn.Click() == nil {
				h.clock.Sleep(2 * time.Second)
			}
			return
		}
	}
}

// saveDebug persists the current page's markup and visible text for offline
// inspection of why structured extraction found nothing.
func (h *BrowserHandler) saveDebug() {
	if content, err := h.page.Content(); err == nil {
		os.WriteFile("debug_page.html", []byte(content), 0644)
	}
	if text, err := h.page.Locator("body").InnerText(); err == nil {
		os.WriteFile("debug_page.txt", []byte(text), 0644)
	}
	log.Println("Saved debug_page.html and debug_page.txt")
}

// ScrapeDetail loads a listing's own page (shorter ceilings than search
// navigation) and recovers broker contact info plus any size attributes the
// list-page parse missed.
func (h *BrowserHandler) ScrapeDetail(url string) DetailInfo {
	if err := h.ensureBrowser(); err != nil {
		log.Printf("Detail visit skipped: %v", err)
		return DetailInfo{}
	}

	_, err := h.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(20000),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		log.Printf("Detail load timeout, continuing: %v", err)
	}
	h.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(5000),
	})
	h.waitForChallenge(detailChallengeWait)
	h.scrollPage(2, 800*time.Millisecond)

	bodyText, err := h.page.Locator("body").InnerText()
	if err != nil {
		bodyText = ""
	}
	markup, _ := h.page.Content()

	// Narrow the search scope to contact-like sub-regions when any exist.
	var contact strings.Builder
	for _, sel := range contactSelectors {
		elements, err := h.page.Locator(sel).All()
		if err != nil {
			continue
		}
		for _, el := range elements {
			if text, err := el.InnerText(); err == nil && strings.TrimSpace(text) != "" {
				contact.WriteString(text)
				contact.WriteString("\n")
			}
		}
	}

	return parseDetail(h.patterns, bodyText, contact.String(), markup)
}
