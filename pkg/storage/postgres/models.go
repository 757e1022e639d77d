package postgres

import (
	"database/sql"
	"time"

	"privuploads/pkg/domain"

	"github.com/google/uuid"
)

type PgUpload struct {
	ID uuid.UUID `db:"id" goqu:"skipinsert"`

	Name        string `db:"name"`
	Path        string `db:"path"`
	ContentType string `db:"content_type"`
	SizeBytes   int64  `db:"size_bytes"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	DeletedAt sql.NullTime `db:"deleted_at" goqu:"skipinsert"`
}

func (p *PgUpload) ToDomain() *domain.Upload {
	return &domain.Upload{
		ID:          domain.UploadID(p.ID),
		Name:        p.Name,
		Path:        p.Path,
		ContentType: p.ContentType,
		SizeBytes:   p.SizeBytes,
		CreatedAt:   p.CreatedAt,
		DeletedAt:   p.DeletedAt.Time,
	}
}

func (p *PgUpload) FromDomain(upload domain.Upload) {
	*p = PgUpload{
		ID:          uuid.UUID(upload.ID),
		Name:        upload.Name,
		Path:        upload.Path,
		ContentType: upload.ContentType,
		SizeBytes:   upload.SizeBytes,
		CreatedAt:   upload.CreatedAt,
		DeletedAt: sql.NullTime{
			Time:  upload.DeletedAt,
			Valid: !upload.DeletedAt.IsZero(),
		},
	}
}

func domainUploadsToPg(uploads []domain.Upload) []PgUpload {
	out := make([]PgUpload, len(uploads))
	for i := range out {
		out[i].FromDomain(uploads[i])
	}

	return out
}

func pgUploadsToDomain(uploads []PgUpload) []domain.Upload {
	out := make([]domain.Upload, 0, len(uploads))
	for _, upload := range uploads {
		out = append(out, *upload.ToDomain())
	}

	return out
}
