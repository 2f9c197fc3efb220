package scraper

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"loopnet_scraper/models"
)

// fakeClock advances instantly on Sleep so wait loops run without real delay.
type fakeClock struct {
	now    time.Time
	sleeps int
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
	c.sleeps++
}

func TestDetectChallenge(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"<title>Just a Moment...</title>", "just a moment"},
		{"<div>Verify you are human</div>", "verify you are human"},
		{"<script src='challenge-platform/h/b'></script>", "challenge-platform"},
		{"<html><body>120 Bed Assisted Living</body></html>", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := detectChallenge(tt.content); got != tt.want {
			t.Errorf("detectChallenge(%q) = %q; want %q", tt.content, got, tt.want)
		}
	}
}

func TestWaitForChallengeClears(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	calls := 0
	content := func() (string, error) {
		calls++
		if calls < 3 {
			return "Checking your browser before accessing", nil
		}
		return "<html>normal results</html>", nil
	}

	if !waitForChallenge(content, 180*time.Second, clock) {
		t.Fatal("expected true once the challenge clears")
	}
	if calls != 3 {
		t.Errorf("content polled %d times; want 3", calls)
	}
}

func TestWaitForChallengeCeiling(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	content := func() (string, error) {
		return "Verify you are human", nil
	}

	if waitForChallenge(content, 30*time.Second, clock) {
		t.Fatal("expected false when the ceiling expires")
	}
	// 30s limit at a 2s poll interval: the loop must be bounded.
	if clock.sleeps != 15 {
		t.Errorf("slept %d times; want 15", clock.sleeps)
	}
}

func TestWaitForChallengeToleratesContentErrors(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	calls := 0
	content := func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("page is navigating")
		}
		return "all clear", nil
	}

	if !waitForChallenge(content, time.Minute, clock) {
		t.Fatal("expected true after a transient content error")
	}
}

func TestWaitForChallengeNoChallenge(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	content := func() (string, error) { return "plain results page", nil }

	if !waitForChallenge(content, 180*time.Second, clock) {
		t.Fatal("expected immediate true on a clean page")
	}
	if clock.sleeps != 0 {
		t.Errorf("slept %d times on a clean page; want 0", clock.sleeps)
	}
}

func pageOf(n int) []models.ListingRecord {
	return []models.ListingRecord{{URL: fmt.Sprintf("/Listing/%d/", n), Price: "$1"}}
}

func TestCollectPagesStopsWhenAdvanceFails(t *testing.T) {
	scrapes := 0
	scrape := func() []models.ListingRecord {
		scrapes++
		return pageOf(scrapes)
	}
	advances := 0
	advance := func() bool {
		advances++
		return advances < 3
	}

	records := collectPages(scrape, advance, 12)
	if scrapes != 3 {
		t.Errorf("scraped %d pages; want 3", scrapes)
	}
	if len(records) != 3 {
		t.Errorf("got %d records; want 3", len(records))
	}
}

func TestCollectPagesStopsOnEmptyPage(t *testing.T) {
	scrapes := 0
	scrape := func() []models.ListingRecord {
		scrapes++
		if scrapes == 2 {
			return nil
		}
		return pageOf(scrapes)
	}

	records := collectPages(scrape, func() bool { return true }, 12)
	if len(records) != 1 {
		t.Errorf("got %d records; want 1", len(records))
	}
	if scrapes != 2 {
		t.Errorf("scraped %d pages; want 2", scrapes)
	}
}

func TestCollectPagesHonorsCeiling(t *testing.T) {
	scrapes := 0
	scrape := func() []models.ListingRecord {
		scrapes++
		return pageOf(scrapes)
	}
	advances := 0
	advance := func() bool {
		advances++
		return true
	}

	records := collectPages(scrape, advance, 4)
	if scrapes != 4 {
		t.Errorf("scraped %d pages; want 4", scrapes)
	}
	if len(records) != 4 {
		t.Errorf("got %d records; want 4", len(records))
	}
	// No click after the last allowed page.
	if advances != 3 {
		t.Errorf("advanced %d times; want 3", advances)
	}
}
