package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/caldera-labs/reviewpulse/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/caldera-labs/reviewpulse/internal/core/domain"
	"github.com/caldera-labs/reviewpulse/internal/core/ports/driven"
	"github.com/caldera-labs/reviewpulse/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.ReviewStore = (*Store)(nil)

// Store is the SQLite-backed ReviewStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.reviewpulse/data/reviews.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".reviewpulse", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "reviews.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var pending []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		version, err := migrationVersion(name)
		if err != nil {
			return err
		}
		if version > currentVersion {
			pending = append(pending, name)
		}
	}
	sort.Strings(pending)

	for _, name := range pending {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		version, _ := migrationVersion(name)

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration transaction: %w", err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// migrationVersion parses the numeric prefix of a migration filename.
func migrationVersion(name string) (int, error) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0, fmt.Errorf("malformed migration filename %q", name)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, fmt.Errorf("malformed migration version in %q: %w", name, err)
	}
	return version, nil
}

// UpsertProduct stores a product, fully replacing any prior row.
func (s *Store) UpsertProduct(ctx context.Context, p *domain.Product) error {
	if p == nil || p.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, platform, name, brand, price, mrp, discount,
			rating, review_count, seller, stock_status, url, reviews_url,
			scraped_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			platform = excluded.platform,
			name = excluded.name,
			brand = excluded.brand,
			price = excluded.price,
			mrp = excluded.mrp,
			discount = excluded.discount,
			rating = excluded.rating,
			review_count = excluded.review_count,
			seller = excluded.seller,
			stock_status = excluded.stock_status,
			url = excluded.url,
			reviews_url = excluded.reviews_url,
			scraped_at = excluded.scraped_at,
			updated_at = excluded.updated_at
	`, p.ID, p.Platform, p.Name, p.Brand, p.Price, p.MRP, p.Discount,
		p.Rating, p.ReviewCount, p.Seller, p.StockStatus, p.URL, p.ReviewsURL,
		p.ScrapedAt, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("saving product: %w", err)
	}
	return nil
}

// InsertReviews bulk-inserts reviews with insert-or-ignore semantics.
// A single bad row is logged and skipped, never aborting the batch.
func (s *Store) InsertReviews(ctx context.Context, reviews []domain.Review) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO reviews (id, product_id, reviewer, rating,
			title, text, date, verified, helpful_count, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range reviews {
		if r.ID == "" {
			logger.Warn("Skipping review with empty ID for product %s", r.ProductID)
			continue
		}

		res, err := stmt.ExecContext(ctx, r.ID, r.ProductID, r.Reviewer, r.Rating,
			r.Title, r.Text, r.Date, r.Verified, r.HelpfulCount, r.ScrapedAt)
		if err != nil {
			logger.Error("Inserting review %s: %v", r.ID, err)
			continue
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return inserted, nil
}

// AppendSentimentResults bulk-appends results without deduplication.
func (s *Store) AppendSentimentResults(ctx context.Context, results []domain.SentimentResult) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sentiment_analysis (review_id, sentiment, confidence,
			response_time, tokens_used, analysed_at, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, r := range results {
		if r.ReviewID == "" {
			logger.Warn("Skipping sentiment result with empty review ID")
			continue
		}

		_, err := stmt.ExecContext(ctx, r.ReviewID, string(r.Sentiment), r.Confidence,
			r.ResponseTime.Seconds(), r.TokensUsed, r.AnalysedAt, r.Error)
		if err != nil {
			logger.Error("Inserting sentiment result for %s: %v", r.ReviewID, err)
			continue
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return written, nil
}

// UnanalyzedReviews returns reviews with non-empty text and no
// sentiment row at all, in insertion order. A non-positive limit means
// no limit.
func (s *Store) UnanalyzedReviews(ctx context.Context, limit int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT disables the cap
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.product_id, r.reviewer, r.rating, r.title, r.text,
			r.date, r.verified, r.helpful_count, r.scraped_at
		FROM reviews r
		LEFT JOIN sentiment_analysis sa ON r.id = sa.review_id
		WHERE sa.id IS NULL AND r.text != ''
		ORDER BY r.rowid
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying unanalyzed reviews: %w", err)
	}
	defer rows.Close()

	return collectReviews(rows)
}

// SentimentStatistics aggregates label counts, overall totals and the
// per-product breakdown.
func (s *Store) SentimentStatistics(ctx context.Context) (*domain.SentimentStatistics, error) {
	stats := &domain.SentimentStatistics{
		Distribution: make(map[domain.Sentiment]int),
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT product_id), COALESCE(AVG(rating), 0)
		FROM reviews
	`)
	if err := row.Scan(&stats.TotalReviews, &stats.TotalProducts, &stats.AverageRating); err != nil {
		return nil, fmt.Errorf("querying review totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sentiment, COUNT(*)
		FROM sentiment_analysis
		WHERE sentiment IN ('POSITIVE', 'NEGATIVE', 'NEUTRAL')
		GROUP BY sentiment
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sentiment distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sentiment string
		var count int
		if err := rows.Scan(&sentiment, &count); err != nil {
			return nil, fmt.Errorf("scanning distribution row: %w", err)
		}
		stats.Distribution[domain.Sentiment(sentiment)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating distribution: %w", err)
	}

	productRows, err := s.db.QueryContext(ctx, `
		SELECT r.product_id, COALESCE(p.name, ''), COALESCE(p.brand, ''),
			sa.sentiment, COUNT(*)
		FROM sentiment_analysis sa
		JOIN reviews r ON sa.review_id = r.id
		LEFT JOIN products p ON r.product_id = p.id
		WHERE sa.sentiment IN ('POSITIVE', 'NEGATIVE', 'NEUTRAL')
		GROUP BY r.product_id, sa.sentiment
	`)
	if err != nil {
		return nil, fmt.Errorf("querying product sentiment: %w", err)
	}
	defer productRows.Close()

	for productRows.Next() {
		var ps domain.ProductSentiment
		var sentiment string
		if err := productRows.Scan(&ps.ProductID, &ps.ProductName, &ps.Brand, &sentiment, &ps.Count); err != nil {
			return nil, fmt.Errorf("scanning product sentiment row: %w", err)
		}
		ps.Sentiment = domain.Sentiment(sentiment)
		stats.Products = append(stats.Products, ps)
	}
	if err := productRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product sentiment: %w", err)
	}

	return stats, nil
}

// Product retrieves a product by ID.
func (s *Store) Product(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, platform, name, brand, price, mrp, discount, rating,
			review_count, seller, stock_status, url, reviews_url,
			scraped_at, updated_at
		FROM products WHERE id = ?
	`, id)

	var p domain.Product
	var scrapedAt, updatedAt sql.NullTime
	err := row.Scan(&p.ID, &p.Platform, &p.Name, &p.Brand, &p.Price, &p.MRP,
		&p.Discount, &p.Rating, &p.ReviewCount, &p.Seller, &p.StockStatus,
		&p.URL, &p.ReviewsURL, &scrapedAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying product: %w", err)
	}
	p.ScrapedAt = scrapedAt.Time
	p.UpdatedAt = updatedAt.Time
	return &p, nil
}

// ReviewsByProduct returns all stored reviews for a product.
func (s *Store) ReviewsByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, reviewer, rating, title, text, date,
			verified, helpful_count, scraped_at
		FROM reviews WHERE product_id = ?
		ORDER BY rowid
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("querying reviews: %w", err)
	}
	defer rows.Close()

	return collectReviews(rows)
}

// LatestSentiment returns the most recent result for a review,
// resolved latest-AnalysedAt-wins across its append-only rows.
func (s *Store) LatestSentiment(ctx context.Context, reviewID string) (*domain.SentimentResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT review_id, sentiment, confidence, response_time,
			tokens_used, analysed_at, error
		FROM sentiment_analysis
		WHERE review_id = ?
		ORDER BY analysed_at DESC, id DESC
		LIMIT 1
	`, reviewID)

	var r domain.SentimentResult
	var sentiment string
	var responseSeconds float64
	var analysedAt sql.NullTime
	err := row.Scan(&r.ReviewID, &sentiment, &r.Confidence, &responseSeconds,
		&r.TokensUsed, &analysedAt, &r.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying sentiment result: %w", err)
	}
	r.Sentiment = domain.Sentiment(sentiment)
	r.ResponseTime = time.Duration(responseSeconds * float64(time.Second))
	r.AnalysedAt = analysedAt.Time
	return &r, nil
}

// collectReviews scans review rows into a slice.
func collectReviews(rows *sql.Rows) ([]domain.Review, error) {
	var reviews []domain.Review //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.Review
		var scrapedAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.ProductID, &r.Reviewer, &r.Rating,
			&r.Title, &r.Text, &r.Date, &r.Verified, &r.HelpfulCount, &scrapedAt); err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		r.ScrapedAt = scrapedAt.Time
		reviews = append(reviews, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reviews: %w", err)
	}
	return reviews, nil
}
