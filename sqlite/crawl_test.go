package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/prodcrawl"
	"github.com/fwojciec/prodcrawl/sqlite"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCrawlService_CreateCrawl(t *testing.T) {
	t.Parallel()

	t.Run("creates crawl with generated ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewCrawlService(db)
		ctx := context.Background()

		record := &prodcrawl.CrawlRecord{
			BaseURL:        "https://example.com",
			Domain:         "example.com",
			PagesProcessed: 12,
			TotalNodes:     40,
			Products: []prodcrawl.Product{
				{ProductName: "Widget", URL: "https://example.com/widget"},
				{ProductName: "Gadget", URL: "https://example.com/gadget"},
			},
			StartedAt:  time.Now().UTC().Add(-time.Minute),
			FinishedAt: time.Now().UTC(),
		}

		err := svc.CreateCrawl(ctx, record)
		require.NoError(t, err)
		assert.NotEmpty(t, record.ID, "ID should be generated")
	})

	t.Run("rejects record without base URL", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewCrawlService(db)

		err := svc.CreateCrawl(context.Background(), &prodcrawl.CrawlRecord{Domain: "example.com"})
		require.Error(t, err)
		assert.Equal(t, prodcrawl.EINVALID, prodcrawl.ErrorCode(err))
	})
}

func TestCrawlService_FindCrawlByID(t *testing.T) {
	t.Parallel()

	t.Run("round-trips a crawl with its products in order", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewCrawlService(db)
		ctx := context.Background()

		record := &prodcrawl.CrawlRecord{
			BaseURL:        "https://example.com",
			Domain:         "example.com",
			PagesProcessed: 3,
			TotalNodes:     9,
			Products: []prodcrawl.Product{
				{ProductName: "Widget", URL: "https://example.com/widget"},
				{ProductName: "Gadget", URL: "https://example.com/gadget"},
			},
		}
		require.NoError(t, svc.CreateCrawl(ctx, record))

		found, err := svc.FindCrawlByID(ctx, record.ID)
		require.NoError(t, err)

		assert.Equal(t, record.ID, found.ID)
		assert.Equal(t, "https://example.com", found.BaseURL)
		assert.Equal(t, "example.com", found.Domain)
		assert.Equal(t, 3, found.PagesProcessed)
		assert.Equal(t, 9, found.TotalNodes)
		assert.Equal(t, record.Products, found.Products)
		assert.False(t, found.StartedAt.IsZero())
		assert.False(t, found.FinishedAt.IsZero())
	})

	t.Run("returns ENOTFOUND for unknown ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewCrawlService(db)

		_, err := svc.FindCrawlByID(context.Background(), "missing")
		require.Error(t, err)
		assert.Equal(t, prodcrawl.ENOTFOUND, prodcrawl.ErrorCode(err))
	})
}
