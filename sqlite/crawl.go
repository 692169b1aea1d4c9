package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fwojciec/prodcrawl"
)

// Compile-time interface verification.
var _ prodcrawl.CrawlStore = (*CrawlService)(nil)

// CrawlService implements prodcrawl.CrawlStore using SQLite.
type CrawlService struct {
	db *DB
}

// NewCrawlService creates a new CrawlService.
func NewCrawlService(db *DB) *CrawlService {
	return &CrawlService{db: db}
}

// CreateCrawl persists a finished crawl session with its products.
func (s *CrawlService) CreateCrawl(ctx context.Context, record *prodcrawl.CrawlRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	record.ID = uuid.New().String()
	if record.StartedAt.IsZero() {
		record.StartedAt = time.Now().UTC()
	}
	if record.FinishedAt.IsZero() {
		record.FinishedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO crawls (id, base_url, domain, pages_processed, total_nodes, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.BaseURL, record.Domain, record.PagesProcessed, record.TotalNodes,
		record.StartedAt.Format(time.RFC3339), record.FinishedAt.Format(time.RFC3339))
	if err != nil {
		return err
	}

	for i, product := range record.Products {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO products (id, crawl_id, product_name, url, position)
			VALUES (?, ?, ?, ?, ?)
		`, uuid.New().String(), record.ID, product.ProductName, product.URL, i)
		if err != nil {
			return err
		}
	}

	return nil
}

// FindCrawlByID retrieves a persisted crawl session with its products.
func (s *CrawlService) FindCrawlByID(ctx context.Context, id string) (*prodcrawl.CrawlRecord, error) {
	var record prodcrawl.CrawlRecord
	var startedAt, finishedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, base_url, domain, pages_processed, total_nodes, started_at, finished_at
		FROM crawls
		WHERE id = ?
	`, id).Scan(&record.ID, &record.BaseURL, &record.Domain, &record.PagesProcessed,
		&record.TotalNodes, &startedAt, &finishedAt)

	if err == sql.ErrNoRows {
		return nil, prodcrawl.Errorf(prodcrawl.ENOTFOUND, "crawl not found")
	}
	if err != nil {
		return nil, err
	}

	record.StartedAt, err = parseRFC3339(startedAt, "started_at")
	if err != nil {
		return nil, err
	}
	record.FinishedAt, err = parseRFC3339(finishedAt, "finished_at")
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_name, url
		FROM products
		WHERE crawl_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var product prodcrawl.Product
		if err := rows.Scan(&product.ProductName, &product.URL); err != nil {
			return nil, err
		}
		record.Products = append(record.Products, product)
	}

	return &record, rows.Err()
}

// parseRFC3339 parses an RFC3339 formatted timestamp string.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}
