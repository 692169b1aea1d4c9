package prodcrawl

import (
	"context"
	"time"
)

// CrawlRecord is one persisted crawl session and its discoveries.
type CrawlRecord struct {
	ID             string
	BaseURL        string
	Domain         string
	PagesProcessed int
	TotalNodes     int
	Products       []Product
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Validate returns an error if the record is missing required fields.
func (r *CrawlRecord) Validate() error {
	if r.BaseURL == "" {
		return Errorf(EINVALID, "crawl record base URL required")
	}
	if r.Domain == "" {
		return Errorf(EINVALID, "crawl record domain required")
	}
	return nil
}

// CrawlStore persists crawl sessions. Persistence is optional; the
// engine itself only ever writes the JSON report files.
type CrawlStore interface {
	// CreateCrawl persists a finished crawl session with its products.
	CreateCrawl(ctx context.Context, record *CrawlRecord) error

	// FindCrawlByID retrieves a persisted crawl session.
	// Returns ENOTFOUND if no such session exists.
	FindCrawlByID(ctx context.Context, id string) (*CrawlRecord, error)
}
