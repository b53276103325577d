package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/alalapi-0/WeDraftSync/internal/domain"
	"github.com/alalapi-0/WeDraftSync/internal/ports"
)

// PostgresRepository persists upload outcomes for deduplication and audit.
// It is optional: the batch runs without it when no DSN is configured.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.HistoryRepository = (*PostgresRepository)(nil)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}
	return NewPostgresRepository(db), nil
}

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Close releases the underlying connection pool.
func (r *PostgresRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// AlreadyUploaded returns the subset of titles with a recorded success.
func (r *PostgresRepository) AlreadyUploaded(ctx context.Context, titles []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if r.db == nil || len(titles) == 0 {
		return result, nil
	}

	query, args, err := r.builder.
		Select("title").
		From("upload_history").
		Where(sq.Eq{"title": titles, "status": string(domain.StatusSuccess)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query upload history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		result[title] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// SaveOutcome inserts one outcome row.
func (r *PostgresRepository) SaveOutcome(ctx context.Context, outcome domain.UploadOutcome) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert("upload_history").
		Columns("title", "status", "media_id", "detail", "created_at").
		Values(outcome.Title, string(outcome.Status), outcome.MediaID, outcome.Detail, sq.Expr("NOW()")).
		ToSql()
	if err != nil {
		return fmt.Errorf("build history insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert upload outcome: %w", err)
	}

	return nil
}
