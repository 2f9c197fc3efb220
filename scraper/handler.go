package scraper

import (
	"context"

	"loopnet_scraper/models"
)

// Handler is one scraping engine driving a session against the site.
type Handler interface {
	ID() string
	Start() error
	Scrape(ctx context.Context, state string) ([]models.ListingRecord, error)
	ScrapeDetail(url string) DetailInfo
	Close()
}
