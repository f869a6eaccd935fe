package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/ids"
)

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	List(ctx context.Context, filter domain.ComplaintFilter) ([]domain.Complaint, int, error)
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	Update(ctx context.Context, id string, patch domain.ComplaintPatch) (*domain.Complaint, error)
	Assign(ctx context.Context, complaintID, staffID string) error
	CountByStatus(ctx context.Context) (domain.StatusCounts, error)
	CountByDepartment(ctx context.Context) ([]domain.DepartmentCount, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintSelect = `
        SELECT c.id, c.title, c.description, c.category_id, c.user_id, c.assigned_to_id,
               c.status, c.priority, c.created_at, c.updated_at, c.resolved_at,
               cat.department_id, cat.name,
               u.name, u.email,
               a.name, a.email
        FROM complaints c
        JOIN categories cat ON cat.id = c.category_id
        JOIN users u ON u.id = c.user_id
        LEFT JOIN users a ON a.id = c.assigned_to_id`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = ids.New()
	}
	if complaint.Status == "" {
		complaint.Status = domain.StatusOpen
	}
	if complaint.Priority == "" {
		complaint.Priority = domain.PriorityMedium
	}
	const query = `
        INSERT INTO complaints (id, title, description, category_id, user_id, assigned_to_id, status, priority)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		complaint.ID,
		complaint.Title,
		complaint.Description,
		complaint.CategoryID,
		complaint.ReporterID,
		complaint.AssignedToID,
		complaint.Status,
		complaint.Priority,
	).Scan(&complaint.CreatedAt, &complaint.UpdatedAt)
}

// List returns one page of complaints matching filter, newest first, along
// with the number of matches across all pages.
func (r *complaintRepository) List(ctx context.Context, filter domain.ComplaintFilter) ([]domain.Complaint, int, error) {
	where, args := buildComplaintWhere(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM complaints c WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	query := fmt.Sprintf(`%s WHERE %s ORDER BY c.created_at DESC, c.id DESC LIMIT %d OFFSET %d`,
		complaintSelect, where, limit, filter.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []domain.Complaint{}
	for rows.Next() {
		complaint, err := scanComplaint(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *complaint)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func buildComplaintWhere(filter domain.ComplaintFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("c.status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("c.priority=$%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("c.category_id=$%d", len(args)))
	}
	if filter.ReporterID != nil {
		args = append(args, *filter.ReporterID)
		clauses = append(clauses, fmt.Sprintf("c.user_id=$%d", len(args)))
	}
	if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		clauses = append(clauses, fmt.Sprintf("c.assigned_to_id=$%d", len(args)))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		args = append(args, "%"+escapeLike(term)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(`(c.title ILIKE %s ESCAPE '\' OR c.description ILIKE %s ESCAPE '\')`, placeholder, placeholder))
	}
	return strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// GetByID loads the complaint with its thread and attachments. A missing
// complaint yields (nil, nil).
func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	complaint, err := loadComplaint(ctx, r.pool, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return complaint, err
}

func loadComplaint(ctx context.Context, q querier, id string) (*domain.Complaint, error) {
	complaint, err := scanComplaint(q.QueryRow(ctx, complaintSelect+` WHERE c.id=$1`, id))
	if err != nil {
		return nil, err
	}
	if complaint.Comments, err = listComments(ctx, q, id); err != nil {
		return nil, err
	}
	if complaint.Attachments, err = listAttachments(ctx, q, id); err != nil {
		return nil, err
	}
	return complaint, nil
}

// Update applies the fields present in patch in a single statement. Moving
// into a closing status stamps resolved_at; reopening clears it.
func (r *complaintRepository) Update(ctx context.Context, id string, patch domain.ComplaintPatch) (*domain.Complaint, error) {
	sets := []string{"updated_at=NOW()"}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.CategoryID != nil {
		add("category_id", *patch.CategoryID)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.AssignedToID != nil {
		if *patch.AssignedToID == "" {
			sets = append(sets, "assigned_to_id=NULL")
		} else {
			add("assigned_to_id", *patch.AssignedToID)
		}
	}
	if patch.Status != nil {
		add("status", *patch.Status)
		if patch.Status.Closes() {
			sets = append(sets, "resolved_at=COALESCE(resolved_at, NOW())")
		} else {
			sets = append(sets, "resolved_at=NULL")
		}
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE complaints SET %s WHERE id=$%d`, strings.Join(sets, ", "), len(args))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}

	// The row lock taken by the update keeps the read-back consistent with
	// what this call wrote.
	complaint, err := loadComplaint(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return complaint, nil
}

// Assign sets the assignee and moves the complaint to IN_PROGRESS atomically.
func (r *complaintRepository) Assign(ctx context.Context, complaintID, staffID string) error {
	const query = `
        UPDATE complaints
        SET assigned_to_id=$1, status='IN_PROGRESS', resolved_at=NULL, updated_at=NOW()
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, staffID, complaintID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) CountByStatus(ctx context.Context) (domain.StatusCounts, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status='OPEN'),
               COUNT(*) FILTER (WHERE status='IN_PROGRESS'),
               COUNT(*) FILTER (WHERE status='RESOLVED'),
               COUNT(*) FILTER (WHERE status='REJECTED')
        FROM complaints`
	var counts domain.StatusCounts
	err := r.pool.QueryRow(ctx, query).Scan(
		&counts.Total,
		&counts.Open,
		&counts.InProgress,
		&counts.Resolved,
		&counts.Rejected,
	)
	return counts, err
}

func (r *complaintRepository) CountByDepartment(ctx context.Context) ([]domain.DepartmentCount, error) {
	const query = `
        SELECT d.name, COUNT(c.id)
        FROM departments d
        LEFT JOIN categories cat ON cat.department_id = d.id
        LEFT JOIN complaints c ON c.category_id = cat.id
        GROUP BY d.id, d.name
        ORDER BY d.name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.DepartmentCount{}
	for rows.Next() {
		var row domain.DepartmentCount
		if err := rows.Scan(&row.Name, &row.Count); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var (
		complaint                  domain.Complaint
		category                   domain.Category
		reporter                   domain.UserSummary
		assigneeName, assigneeMail *string
	)
	if err := row.Scan(
		&complaint.ID,
		&complaint.Title,
		&complaint.Description,
		&complaint.CategoryID,
		&complaint.ReporterID,
		&complaint.AssignedToID,
		&complaint.Status,
		&complaint.Priority,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
		&complaint.ResolvedAt,
		&category.DepartmentID,
		&category.Name,
		&reporter.Name,
		&reporter.Email,
		&assigneeName,
		&assigneeMail,
	); err != nil {
		return nil, err
	}
	category.ID = complaint.CategoryID
	reporter.ID = complaint.ReporterID
	complaint.Category = &category
	complaint.Reporter = &reporter
	if complaint.AssignedToID != nil && assigneeName != nil {
		summary := domain.UserSummary{ID: *complaint.AssignedToID, Name: *assigneeName}
		if assigneeMail != nil {
			summary.Email = *assigneeMail
		}
		complaint.AssignedTo = &summary
	}
	return &complaint, nil
}
