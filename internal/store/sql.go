// Atelier - Fashion Catalog Ingestion and Rotation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atelier

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/atelier/internal/config"
	"github.com/tomtom215/atelier/internal/logging"
	"github.com/tomtom215/atelier/internal/metrics"
	"github.com/tomtom215/atelier/internal/models"
)

const table = "products"

const columns = `id, source, source_item_code, title, title_key, brand, source_brand, price,
	image_url, affiliate_url, tags, category, review_count, review_average, quality_score,
	recommendation_score, brand_priority, is_active, last_synced, created_at`

// upsertSQL replaces every column except id and created_at.
const upsertSQL = `INSERT INTO products (` + columns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
ON CONFLICT (id) DO UPDATE SET
	source = excluded.source,
	source_item_code = excluded.source_item_code,
	title = excluded.title,
	title_key = excluded.title_key,
	brand = excluded.brand,
	source_brand = excluded.source_brand,
	price = excluded.price,
	image_url = excluded.image_url,
	affiliate_url = excluded.affiliate_url,
	tags = excluded.tags,
	category = excluded.category,
	review_count = excluded.review_count,
	review_average = excluded.review_average,
	quality_score = excluded.quality_score,
	recommendation_score = excluded.recommendation_score,
	brand_priority = excluded.brand_priority,
	is_active = excluded.is_active,
	last_synced = excluded.last_synced`

// SQLStore is a ProductStore over database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	timeout time.Duration
}

// Open returns the ProductStore selected by cfg.Driver.
func Open(cfg config.DatabaseConfig) (ProductStore, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemoryStore(), nil
	case config.DriverDuckDB:
		return OpenDuckDB(cfg.Path, cfg)
	case config.DriverPostgres:
		return OpenSQL(Postgres, cfg.DSN, cfg)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// OpenDuckDB opens (creating if needed) a DuckDB file. An empty path opens an
// in-memory database.
func OpenDuckDB(path string, cfg config.DatabaseConfig) (*SQLStore, error) {
	dsn := ""
	if path != "" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
		dsn = fmt.Sprintf("%s?access_mode=read_write&threads=%d", path, runtime.NumCPU())
	}
	return OpenSQL(DuckDB, dsn, cfg)
}

// OpenSQL opens dsn with the dialect's driver and bootstraps the schema.
func OpenSQL(d Dialect, dsn string, cfg config.DatabaseConfig) (*SQLStore, error) {
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", d.Name, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(5 * time.Minute)

	s := &SQLStore{db: db, dialect: d, timeout: cfg.QueryTimeout}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("failed to ping %s: %w", d.Name, err)
	}
	for _, stmt := range d.schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			closeQuietly(db)
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	logging.Info().Str("driver", d.Name).Msg("Product store ready")
	return s, nil
}

// Dialect returns the store's dialect.
func (s *SQLStore) Dialect() Dialect { return s.dialect }

func (s *SQLStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func observe(op string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	metrics.RecordDBQuery(op, table, time.Since(start), err)
}

func (s *SQLStore) Upsert(ctx context.Context, products []*models.Product) (n int, err error) {
	if len(products) == 0 {
		return 0, nil
	}
	start := time.Now()
	defer func() { observe("upsert", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, writeErr("upsert", len(products), err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return 0, writeErr("upsert", len(products), err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for _, p := range products {
		args, aerr := productArgs(p)
		if aerr != nil {
			return 0, writeErr("upsert", len(products), aerr)
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return 0, writeErr("upsert", len(products), fmt.Errorf("product %s: %w", p.ID, err))
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, writeErr("upsert", len(products), err)
	}
	return len(products), nil
}

func productArgs(p *models.Product) ([]any, error) {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	tagJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	created := p.CreatedAt
	if created.IsZero() {
		created = p.LastSynced
	}
	return []any{
		p.ID, p.Source, p.SourceItemCode, p.Title, p.TitleKey, p.Brand, p.SourceBrand, p.Price,
		p.ImageURL, p.AffiliateURL, string(tagJSON), p.Category, p.ReviewCount, p.ReviewAverage,
		p.QualityScore, p.RecommendationScore, p.BrandPriority, p.IsActive,
		p.LastSynced.UTC(), created.UTC(),
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*models.Product, error) {
	var (
		p       models.Product
		tagJSON string
	)
	err := row.Scan(&p.ID, &p.Source, &p.SourceItemCode, &p.Title, &p.TitleKey, &p.Brand,
		&p.SourceBrand, &p.Price, &p.ImageURL, &p.AffiliateURL, &tagJSON, &p.Category,
		&p.ReviewCount, &p.ReviewAverage, &p.QualityScore, &p.RecommendationScore,
		&p.BrandPriority, &p.IsActive, &p.LastSynced, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagJSON), &p.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of %s: %w", p.ID, err)
	}
	p.LastSynced = p.LastSynced.UTC()
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func (s *SQLStore) queryOne(ctx context.Context, op, query string, args ...any) (p *models.Product, err error) {
	start := time.Now()
	defer func() { observe(op, start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	p, err = scanProduct(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *SQLStore) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.queryOne(ctx, "get", `SELECT `+columns+` FROM products WHERE id = $1`, id)
}

func (s *SQLStore) FindActiveByTitleKey(ctx context.Context, titleKey, brand string) (*models.Product, error) {
	return s.queryOne(ctx, "find_title_key",
		`SELECT `+columns+` FROM products
		WHERE title_key = $1 AND brand = $2 AND is_active = TRUE
		ORDER BY id LIMIT 1`, titleKey, brand)
}

func (s *SQLStore) exec(ctx context.Context, op string, size int, query string, args ...any) (n int, err error) {
	start := time.Now()
	defer func() { observe(op, start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, writeErr(op, size, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, writeErr(op, size, err)
	}
	return int(affected), nil
}

// inList renders "$start, $start+1, ..." for ids and appends them to args.
func inList(ids []string, args []any) (string, []any) {
	ph := make([]string, len(ids))
	for i, id := range ids {
		args = append(args, id)
		ph[i] = fmt.Sprintf("$%d", len(args))
	}
	return strings.Join(ph, ", "), args
}

func (s *SQLStore) Touch(ctx context.Context, ids []string, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	list, args := inList(ids, []any{at.UTC()})
	return s.exec(ctx, "touch", len(ids), `UPDATE products SET last_synced = $1 WHERE id IN (`+list+`)`, args...)
}

func (s *SQLStore) UpdatePrice(ctx context.Context, id string, price int, at time.Time) error {
	n, err := s.exec(ctx, "update_price", 1,
		`UPDATE products SET price = $1, last_synced = $2 WHERE id = $3`, price, at.UTC(), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) SetActive(ctx context.Context, ids []string, active bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	list, args := inList(ids, []any{active})
	return s.exec(ctx, "set_active", len(ids), `UPDATE products SET is_active = $1 WHERE id IN (`+list+`)`, args...)
}

func (s *SQLStore) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	list, args := inList(ids, nil)
	return s.exec(ctx, "delete", len(ids), `DELETE FROM products WHERE id IN (`+list+`)`, args...)
}

func (s *SQLStore) DeleteInactiveOlderThan(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	return s.deleteQuery(ctx, "delete_stale", StaleInactiveQuery(cutoff, limit))
}

func (s *SQLStore) DeleteByPriorityAtLeast(ctx context.Context, cutoff, limit int) (int, error) {
	return s.deleteQuery(ctx, "delete_low_priority", LowPriorityQuery(cutoff, limit))
}

func (s *SQLStore) DeleteInactive(ctx context.Context, limit int) (int, error) {
	return s.deleteQuery(ctx, "delete_inactive", InactiveQuery(limit))
}

func (s *SQLStore) DeleteLowestQualityActive(ctx context.Context, limit int) (int, error) {
	return s.deleteQuery(ctx, "delete_low_quality", LowestQualityActiveQuery(limit))
}

func (s *SQLStore) deleteQuery(ctx context.Context, op string, q Query) (int, error) {
	sub, args := selectSQL("id", q)
	return s.exec(ctx, op, q.Limit, `DELETE FROM products WHERE id IN (`+sub+`)`, args...)
}

// whereClause renders f with $N placeholders continuing after args.
func whereClause(f Filter, args []any) (string, []any) {
	var conds []string
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Active != nil {
		add("is_active = $%d", *f.Active)
	}
	if f.Source != "" {
		add("source = $%d", f.Source)
	}
	if !f.SyncedBefore.IsZero() {
		add("last_synced < $%d", f.SyncedBefore.UTC())
	}
	if f.MinPriority > 0 {
		add("brand_priority >= $%d", f.MinPriority)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func selectSQL(cols string, q Query) (string, []any) {
	where, args := whereClause(q.Filter, nil)
	query := `SELECT ` + cols + ` FROM products` + where + orderClause(q.OrderBy)
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return query, args
}

func (s *SQLStore) Count(ctx context.Context, f Filter) (n int, err error) {
	start := time.Now()
	defer func() { observe("count", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	where, args := whereClause(f, nil)
	var count int64
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return int(count), nil
}

func (s *SQLStore) List(ctx context.Context, q Query) (out []*models.Product, err error) {
	start := time.Now()
	defer func() { observe("list", start, err) }()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query, args := selectSQL(columns, q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		p, serr := scanProduct(rows)
		if serr != nil {
			return nil, fmt.Errorf("scan product: %w", serr)
		}
		out = append(out, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close checkpoints DuckDB (best effort) and closes the pool.
func (s *SQLStore) Close() error {
	if s.dialect.Checkpoint {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := s.db.ExecContext(ctx, "CHECKPOINT"); err != nil {
			logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
		}
		cancel()
	}
	return s.db.Close()
}
