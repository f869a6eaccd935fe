package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/ids"
)

// AttachmentRepository persists attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.Attachment, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	if attachment.ID == "" {
		attachment.ID = ids.New()
	}
	const query = `
        INSERT INTO attachments (id, complaint_id, file_name, mime_type, size_bytes, storage_key)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		attachment.ID,
		attachment.ComplaintID,
		attachment.FileName,
		attachment.MimeType,
		attachment.SizeBytes,
		attachment.StorageKey,
	).Scan(&attachment.CreatedAt)
}

func (r *attachmentRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.Attachment, error) {
	return listAttachments(ctx, r.pool, complaintID)
}

func listAttachments(ctx context.Context, q querier, complaintID string) ([]domain.Attachment, error) {
	const query = `
        SELECT id, complaint_id, file_name, mime_type, size_bytes, storage_key, created_at
        FROM attachments WHERE complaint_id=$1
        ORDER BY created_at ASC, id ASC`
	rows, err := q.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Attachment{}
	for rows.Next() {
		var attachment domain.Attachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.ComplaintID,
			&attachment.FileName,
			&attachment.MimeType,
			&attachment.SizeBytes,
			&attachment.StorageKey,
			&attachment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}
