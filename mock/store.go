package mock

import (
	"context"

	"github.com/fwojciec/prodcrawl"
)

var _ prodcrawl.CrawlStore = (*CrawlStore)(nil)

// CrawlStore is a mock implementation of prodcrawl.CrawlStore.
type CrawlStore struct {
	CreateCrawlFn   func(ctx context.Context, record *prodcrawl.CrawlRecord) error
	FindCrawlByIDFn func(ctx context.Context, id string) (*prodcrawl.CrawlRecord, error)
}

func (s *CrawlStore) CreateCrawl(ctx context.Context, record *prodcrawl.CrawlRecord) error {
	return s.CreateCrawlFn(ctx, record)
}

func (s *CrawlStore) FindCrawlByID(ctx context.Context, id string) (*prodcrawl.CrawlRecord, error) {
	return s.FindCrawlByIDFn(ctx, id)
}
