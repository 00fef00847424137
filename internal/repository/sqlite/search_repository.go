package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/web3profile/internal/logger"
	"github.com/vytor/web3profile/internal/models"
	"github.com/vytor/web3profile/internal/repository"
)

var searchColumns = []string{"id", "query", "address", "name", "hits", "created_at", "last_seen_at"}

type searchRepository struct {
	db *sql.DB
}

// NewSearchRepository creates a new SearchRepository implementation
func NewSearchRepository(db *sql.DB) repository.SearchRepository {
	return &searchRepository{db: db}
}

func (r *searchRepository) Record(ctx context.Context, query, address, name string) (*models.SearchEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("search_repo")
	log.Debug("recording search: query=%s, address=%s", query, address)

	var e models.SearchEntry
	err := r.db.QueryRowContext(ctx, `
INSERT INTO search_history (query, address, name, hits, last_seen_at)
VALUES (?, ?, ?, 1, ?)
ON CONFLICT(address) DO UPDATE SET
    query = excluded.query,
    name = CASE WHEN excluded.name != '' THEN excluded.name ELSE search_history.name END,
    hits = search_history.hits + 1,
    last_seen_at = excluded.last_seen_at
RETURNING id, query, address, name, hits, created_at, last_seen_at
`, query, address, name, time.Now().UTC()).Scan(&e.ID, &e.Query, &e.Address, &e.Name, &e.Hits, &e.CreatedAt, &e.LastSeenAt)
	if err != nil {
		log.Error("failed to record search: %v", err)
		return nil, err
	}
	log.Debug("search recorded: id=%d, hits=%d", e.ID, e.Hits)
	return &e, nil
}

func (r *searchRepository) Recent(ctx context.Context, limit int) ([]models.SearchEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("search_repo")
	log.Debug("listing recent searches: limit=%d", limit)

	query := sqlBuilder.Select(searchColumns...).
		From("search_history").
		OrderBy("last_seen_at DESC", "id DESC").
		Limit(clampLimit(limit))
	return r.list(ctx, log, query)
}

func (r *searchRepository) Popular(ctx context.Context, limit int) ([]models.SearchEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("search_repo")
	log.Debug("listing popular searches: limit=%d", limit)

	query := sqlBuilder.Select(searchColumns...).
		From("search_history").
		OrderBy("hits DESC", "last_seen_at DESC", "id DESC").
		Limit(clampLimit(limit))
	return r.list(ctx, log, query)
}

func (r *searchRepository) list(ctx context.Context, log *logger.Logger, query squirrel.SelectBuilder) ([]models.SearchEntry, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to list searches: %v", err)
		return nil, err
	}
	defer rows.Close()

	entries := []models.SearchEntry{}
	for rows.Next() {
		var e models.SearchEntry
		if err := rows.Scan(&e.ID, &e.Query, &e.Address, &e.Name, &e.Hits, &e.CreatedAt, &e.LastSeenAt); err != nil {
			log.Error("failed to scan search row: %v", err)
			return nil, err
		}
		entries = append(entries, e)
	}
	log.Debug("found %d searches", len(entries))
	return entries, rows.Err()
}

func (r *searchRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("search_repo")
	log.Debug("deleting search: id=%d", id)

	stmt, args, err := sqlBuilder.Delete("search_history").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to delete search %d: %v", id, err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		log.Debug("search not found: id=%d", id)
		return repository.ErrNotFound
	}
	return nil
}
