package scraper

import (
	"context"
	"fmt"
	"log"
	"time"

	"loopnet_scraper/config"
	"loopnet_scraper/models"
	"loopnet_scraper/services"
	"loopnet_scraper/storage"
)

// Orchestrator runs the full pipeline: paginate every configured state,
// merge and dedupe the haul, enrich from detail pages, filter by size, and
// hand the survivors to the report writer. Per-state failures are recorded
// and skipped; the run always reaches the export step.
type Orchestrator struct {
	cfg     *config.Config
	store   *storage.SQLiteStore
	handler Handler
}

func NewOrchestrator(cfg *config.Config, store *storage.SQLiteStore) *Orchestrator {
	patterns := DefaultPatterns()
	return &Orchestrator{
		cfg:     cfg,
		store:   store,
		handler: NewBrowserHandler(cfg, patterns),
	}
}

func (o *Orchestrator) RunAll(ctx context.Context) error {
	log.Printf("States: %v | Filter: %d+ beds OR %d+ units | Max %d pages/state",
		o.cfg.States, o.cfg.MinBeds, o.cfg.MinUnits, o.cfg.MaxPages)

	if err := o.handler.Start(); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer o.handler.Close()

	var all []models.ListingRecord
	for _, state := range o.cfg.States {
		if ctx.Err() != nil {
			break
		}
		all = append(all, o.runState(ctx, state)...)
	}

	merged := services.Dedupe(all)
	log.Printf("Total unique listings: %d", len(merged))

	o.enrichDetails(ctx, merged)

	final := services.FilterBySize(merged, o.cfg.MinBeds, o.cfg.MinUnits)
	log.Printf("After size filter: %d listings", len(final))

	path, err := storage.WriteReport(o.cfg.OutputDir, o.cfg.States, o.cfg.MinBeds, o.cfg.MinUnits, final, time.Now())
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Printf("Saved: %s (%d listings)", path, len(final))
	o.store.Log(nil, models.LogLevelInfo, fmt.Sprintf("report %s: %d listings", path, len(final)), "")

	if len(final) == 0 {
		log.Println("No listings passed the filter; check the debug files")
	}
	return nil
}

// runState scrapes one state under a run record. Scrape errors mark the run
// failed but never abort the rest of the pipeline.
func (o *Orchestrator) runState(ctx context.Context, state string) []models.ListingRecord {
	run := &models.ScrapeRun{
		State:     state,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	if id, err := o.store.CreateRun(run); err != nil {
		log.Printf("Warning: failed to create run record: %v", err)
	} else {
		run.ID = id
	}
	o.log(run, models.LogLevelInfo, fmt.Sprintf("scraping %s (%s)", state, config.StateName(state)))

	defer func() {
		now := time.Now()
		run.FinishedAt = &now
		if err := o.store.UpdateRun(run); err != nil {
			log.Printf("Warning: failed to update run record: %v", err)
		}
	}()

	records, err := o.handler.Scrape(ctx, state)
	run.ListingsFound = len(records)
	if err != nil {
		run.Status = models.RunStatusFailed
		run.ErrorsCount++
		o.log(run, models.LogLevelError, fmt.Sprintf("scrape error: %v", err))
		return records
	}

	run.Status = models.RunStatusCompleted
	o.log(run, models.LogLevelInfo, fmt.Sprintf("found %d listings", len(records)))
	return records
}

// enrichDetails revisits each record's own page to complete missing broker
// contact fields. Records that already have full contact info skip their
// visit; a fixed delay between visits keeps the session polite.
func (o *Orchestrator) enrichDetails(ctx context.Context, records []models.ListingRecord) {
	delay := time.Duration(o.cfg.Scraper.DetailDelayMS) * time.Millisecond

	for i := range records {
		if ctx.Err() != nil {
			return
		}
		rec := &records[i]
		if rec.URL == "" {
			continue
		}
		if rec.HasBrokerContact() {
			log.Printf("[%d/%d] skipping, already have broker info", i+1, len(records))
			continue
		}
		log.Printf("[%d/%d] %s", i+1, len(records), rec.URL)
		o.handler.ScrapeDetail(rec.URL).ApplyTo(rec)
		time.Sleep(delay)
	}
}

func (o *Orchestrator) log(run *models.ScrapeRun, level models.LogLevel, message string) {
	log.Printf("[%s] %s: %s", level, run.State, message)
	runID := run.ID
	o.store.Log(&runID, level, message, run.State)
}
