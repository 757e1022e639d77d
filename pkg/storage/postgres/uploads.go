package postgres

import (
	"context"
	"fmt"
	"time"

	"privuploads/pkg/domain"
	"privuploads/pkg/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	uploadsTable = "private_files"
)

func (p *PgSQL) StoreUploads(ctx context.Context, uploads ...domain.Upload) ([]domain.Upload, error) {
	if len(uploads) == 0 {
		return nil, nil
	}

	pgUploads := domainUploadsToPg(uploads)

	var result []PgUpload
	if err := p.Builder.Insert(uploadsTable).
		Rows(pgUploads).
		Returning(&PgUpload{}).
		Executor().ScanStructsContext(ctx, &result); err != nil {
		return nil, fmt.Errorf("could not store uploads into pg: %w", err)
	}

	return pgUploadsToDomain(result), nil
}

// UploadByPath returns the registry row for a path relative to the private
// root, excluding soft-deleted rows. Returns nil when not found.
func (p *PgSQL) UploadByPath(ctx context.Context, path string) (*domain.Upload, error) {
	var row PgUpload
	found, err := p.Builder.From(uploadsTable).
		Where(
			goqu.I("path").Eq(path),
			goqu.I("deleted_at").IsNull(),
		).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch upload by path from pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

// Uploads returns a page of registry rows filtered by optional cursor and
// limited by limit. Results are ordered by created_at DESC, id DESC.
func (p *PgSQL) Uploads(ctx context.Context, cursor time.Time, limit uint) (storage.UploadsPage, error) {
	w := []goqu.Expression{
		goqu.I("deleted_at").IsNull(),
	}
	if !cursor.IsZero() {
		w = append(w, goqu.I("created_at").Lt(cursor))
	}

	// fetch one extra to determine if there is a next page
	fetch := limit + 1
	ds := p.Builder.From(uploadsTable).
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(fetch)

	var rows []PgUpload
	if err := ds.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.UploadsPage{}, fmt.Errorf("could not fetch uploads from pg: %w", err)
	}

	// if we fetched more than the limit, there is a next page
	var nextCursor *time.Time
	if uint(len(rows)) > limit {
		trimmed := rows[:limit]
		nextCursor = &trimmed[len(trimmed)-1].CreatedAt
		rows = trimmed
	}

	return storage.UploadsPage{
		Uploads:    pgUploadsToDomain(rows),
		NextCursor: nextCursor,
	}, nil
}

// DeleteUpload performs a soft delete by setting the deleted_at timestamp
// for a given upload id, returning the deleted record.
func (p *PgSQL) DeleteUpload(ctx context.Context, id domain.UploadID) (*domain.Upload, error) {
	var row PgUpload
	found, err := p.Builder.Update(uploadsTable).
		Set(goqu.Record{
			"deleted_at": goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgUpload{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not delete upload in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}
