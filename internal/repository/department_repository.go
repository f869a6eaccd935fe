package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/ids"
)

// DepartmentRepository manages departments and their categories.
type DepartmentRepository interface {
	Upsert(ctx context.Context, dept *domain.Department) error
	UpsertCategory(ctx context.Context, cat *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListWithCategories(ctx context.Context) ([]domain.Department, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

// Upsert inserts the department or, when the name is taken, loads the stored
// row into dept.
func (r *departmentRepository) Upsert(ctx context.Context, dept *domain.Department) error {
	if dept.ID == "" {
		dept.ID = ids.New()
	}
	const query = `
        INSERT INTO departments (id, name, description)
        VALUES ($1, $2, $3)
        ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, dept.ID, dept.Name, dept.Description).Scan(&dept.ID, &dept.CreatedAt)
}

func (r *departmentRepository) UpsertCategory(ctx context.Context, cat *domain.Category) error {
	if cat.ID == "" {
		cat.ID = ids.New()
	}
	const query = `
        INSERT INTO categories (id, department_id, name)
        VALUES ($1, $2, $3)
        ON CONFLICT (id) DO UPDATE SET department_id = EXCLUDED.department_id, name = EXCLUDED.name`
	_, err := r.pool.Exec(ctx, query, cat.ID, cat.DepartmentID, cat.Name)
	return translate(err)
}

func (r *departmentRepository) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	const query = `SELECT id, department_id, name FROM categories WHERE id=$1`
	var cat domain.Category
	if err := r.pool.QueryRow(ctx, query, id).Scan(&cat.ID, &cat.DepartmentID, &cat.Name); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *departmentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM departments WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}

func (r *departmentRepository) ListWithCategories(ctx context.Context) ([]domain.Department, error) {
	const query = `
        SELECT d.id, d.name, d.description, d.created_at, c.id, c.name
        FROM departments d
        LEFT JOIN categories c ON c.department_id = d.id
        ORDER BY d.name ASC, c.name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Department{}
	index := map[string]int{}
	for rows.Next() {
		var (
			dept           domain.Department
			catID, catName *string
		)
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.Description, &dept.CreatedAt, &catID, &catName); err != nil {
			return nil, err
		}
		pos, ok := index[dept.ID]
		if !ok {
			dept.Categories = []domain.Category{}
			result = append(result, dept)
			pos = len(result) - 1
			index[dept.ID] = pos
		}
		if catID != nil {
			result[pos].Categories = append(result[pos].Categories, domain.Category{
				ID:           *catID,
				DepartmentID: dept.ID,
				Name:         *catName,
			})
		}
	}
	return result, rows.Err()
}
