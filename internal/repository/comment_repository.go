package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/ids"
)

// CommentRepository manages complaint thread messages.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if comment.ID == "" {
		comment.ID = ids.New()
	}
	const query = `
        INSERT INTO comments (id, complaint_id, user_id, message)
        VALUES ($1,$2,$3,$4)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		comment.ID,
		comment.ComplaintID,
		comment.UserID,
		comment.Message,
	).Scan(&comment.CreatedAt)
}

func (r *commentRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.Comment, error) {
	return listComments(ctx, r.pool, complaintID)
}

func listComments(ctx context.Context, q querier, complaintID string) ([]domain.Comment, error) {
	const query = `
        SELECT m.id, m.complaint_id, m.user_id, m.message, m.created_at, u.name, u.email
        FROM comments m
        JOIN users u ON u.id = m.user_id
        WHERE m.complaint_id=$1
        ORDER BY m.created_at ASC, m.id ASC`
	rows, err := q.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Comment{}
	for rows.Next() {
		var (
			comment domain.Comment
			author  domain.UserSummary
		)
		if err := rows.Scan(
			&comment.ID,
			&comment.ComplaintID,
			&comment.UserID,
			&comment.Message,
			&comment.CreatedAt,
			&author.Name,
			&author.Email,
		); err != nil {
			return nil, err
		}
		author.ID = comment.UserID
		comment.Author = &author
		result = append(result, comment)
	}
	return result, rows.Err()
}
