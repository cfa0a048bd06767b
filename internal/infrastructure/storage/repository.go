package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"newsherd/internal/domain"
	"newsherd/internal/ports"
)

const articleColumns = "id, url, source, data, categories, scraped_at"

const postgresSchema = `
CREATE TABLE IF NOT EXISTS articles (
    id         BIGSERIAL PRIMARY KEY,
    url        TEXT        NOT NULL UNIQUE,
    source     TEXT        NOT NULL,
    data       TEXT        NOT NULL,
    categories TEXT,
    scraped_at TIMESTAMPTZ NOT NULL
)`

// Repository persists article records in a SQL database. Production runs on
// Postgres; the SQL is kept portable so tests exercise it against SQLite.
type Repository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	now     func() time.Time
}

var _ ports.ArticleStore = (*Repository)(nil)

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// NewRepository wires a sql.DB with the placeholder format its driver expects.
func NewRepository(db *sql.DB, placeholder sq.PlaceholderFormat) *Repository {
	return &Repository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		now:     time.Now,
	}
}

// EnsureSchema creates the articles table when it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Upsert inserts the record or refreshes data and scraped_at of the row that
// already owns the URL. Id, url, source and assigned categories survive the
// conflict path untouched.
func (r *Repository) Upsert(ctx context.Context, article domain.ArticleRecord) (domain.ArticleRecord, error) {
	payload, err := json.Marshal(article.Data)
	if err != nil {
		return domain.ArticleRecord{}, fmt.Errorf("encode article data: %w", err)
	}

	query := r.builder.Insert("articles").
		Columns("url", "source", "data", "scraped_at").
		Values(article.URL, article.Source, string(payload), r.now().UTC()).
		Suffix(`ON CONFLICT (url) DO UPDATE
                SET data = excluded.data,
                    scraped_at = excluded.scraped_at`).
		Suffix("RETURNING " + articleColumns)

	sqlText, args, err := query.ToSql()
	if err != nil {
		return domain.ArticleRecord{}, fmt.Errorf("build upsert: %w", err)
	}

	stored, err := scanArticle(r.db.QueryRowContext(ctx, sqlText, args...))
	if err != nil {
		return domain.ArticleRecord{}, fmt.Errorf("upsert article %s: %w", article.URL, err)
	}
	return stored, nil
}

// FindMany lists records ordered by scrape time descending, optionally
// restricted to one source and truncated to a limit.
func (r *Repository) FindMany(ctx context.Context, filter ports.ArticleFilter) ([]domain.ArticleRecord, error) {
	query := r.builder.Select(articleColumns).
		From("articles").
		OrderBy("scraped_at DESC")

	if filter.Source != "" {
		query = query.Where(sq.Eq{"source": filter.Source})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	sqlText, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.ArticleRecord
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return articles, nil
}

// FindByID loads one record or reports domain.ErrArticleNotFound.
func (r *Repository) FindByID(ctx context.Context, id int64) (domain.ArticleRecord, error) {
	sqlText, args, err := r.builder.Select(articleColumns).
		From("articles").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.ArticleRecord{}, fmt.Errorf("build select: %w", err)
	}

	article, err := scanArticle(r.db.QueryRowContext(ctx, sqlText, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ArticleRecord{}, domain.ErrArticleNotFound
	}
	if err != nil {
		return domain.ArticleRecord{}, fmt.Errorf("query article %d: %w", id, err)
	}
	return article, nil
}

// DeleteOlderThan removes every record scraped strictly before cutoff. This
// is the only deletion path in the system.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	sqlText, args, err := r.builder.Delete("articles").
		Where(sq.Lt{"scraped_at": cutoff.UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	result, err := r.db.ExecContext(ctx, sqlText, args...)
	if err != nil {
		return 0, fmt.Errorf("delete old articles: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted articles: %w", err)
	}
	return deleted, nil
}

// SetCategories stores classification labels on an existing record.
func (r *Repository) SetCategories(ctx context.Context, id int64, categories []string) error {
	encoded, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}

	sqlText, args, err := r.builder.Update("articles").
		Set("categories", string(encoded)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, sqlText, args...)
	if err != nil {
		return fmt.Errorf("update categories for article %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("count updated rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrArticleNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.ArticleRecord, error) {
	var (
		article    domain.ArticleRecord
		payload    string
		categories sql.NullString
	)

	if err := row.Scan(&article.ID, &article.URL, &article.Source, &payload, &categories, &article.ScrapedAt); err != nil {
		return domain.ArticleRecord{}, err
	}

	if err := json.Unmarshal([]byte(payload), &article.Data); err != nil {
		return domain.ArticleRecord{}, fmt.Errorf("decode article data: %w", err)
	}
	if categories.Valid && categories.String != "" {
		if err := json.Unmarshal([]byte(categories.String), &article.Categories); err != nil {
			return domain.ArticleRecord{}, fmt.Errorf("decode categories: %w", err)
		}
	}

	return article, nil
}
