// Package memory implements the repository interfaces in process memory.
// It backs tests and local runs without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/ids"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// Store holds every entity behind one mutex.
type Store struct {
	mu          sync.Mutex
	now         func() time.Time
	users       map[string]domain.User
	departments map[string]domain.Department
	categories  map[string]domain.Category
	complaints  map[string]domain.Complaint
	comments    []domain.Comment
	attachments []domain.Attachment
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// SteppingClock returns a clock that starts at start and advances by step on every read.
func SteppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(step)
		return current
	}
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:         func() time.Time { return time.Now().UTC() },
		users:       map[string]domain.User{},
		departments: map[string]domain.Department{},
		categories:  map[string]domain.Category{},
		complaints:  map[string]domain.Complaint{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// next must be called with mu held.
func (m *Store) next() (string, time.Time) {
	now := m.now()
	return ids.NewAt(now), now
}

var (
	_ repository.UserRepository       = users{}
	_ repository.DepartmentRepository = departments{}
	_ repository.ComplaintRepository  = complaints{}
	_ repository.CommentRepository    = comments{}
	_ repository.AttachmentRepository = attachments{}
)

// Repository views over the store.
func (m *Store) Users() repository.UserRepository             { return users{m} }
func (m *Store) Departments() repository.DepartmentRepository { return departments{m} }
func (m *Store) Complaints() repository.ComplaintRepository   { return complaints{m} }
func (m *Store) Comments() repository.CommentRepository       { return comments{m} }
func (m *Store) Attachments() repository.AttachmentRepository { return attachments{m} }

type users struct{ m *Store }

func (r users) Create(_ context.Context, user *domain.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, u := range r.m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	id, now := r.m.next()
	if user.ID == "" {
		user.ID = id
	}
	user.CreatedAt, user.UpdatedAt = now, now
	r.m.users[user.ID] = *user
	return nil
}

func (r users) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == strings.ToLower(email) {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r users) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.User
	for _, u := range r.m.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type departments struct{ m *Store }

func (r departments) Upsert(_ context.Context, dept *domain.Department) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, d := range r.m.departments {
		if d.Name == dept.Name {
			dept.ID, dept.CreatedAt = d.ID, d.CreatedAt
			return nil
		}
	}
	id, now := r.m.next()
	if dept.ID == "" {
		dept.ID = id
	}
	dept.CreatedAt = now
	r.m.departments[dept.ID] = *dept
	return nil
}

func (r departments) UpsertCategory(_ context.Context, cat *domain.Category) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.categories[cat.ID] = *cat
	return nil
}

func (r departments) GetCategory(_ context.Context, id string) (*domain.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (r departments) Exists(_ context.Context, id string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	_, ok := r.m.departments[id]
	return ok, nil
}

func (r departments) ListWithCategories(_ context.Context) ([]domain.Department, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Department
	for _, d := range r.m.departments {
		d.Categories = []domain.Category{}
		for _, c := range r.m.categories {
			if c.DepartmentID == d.ID {
				d.Categories = append(d.Categories, c)
			}
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type complaints struct{ m *Store }

func (r complaints) Create(_ context.Context, c *domain.Complaint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	id, now := r.m.next()
	if c.ID == "" {
		c.ID = id
	}
	c.CreatedAt, c.UpdatedAt = now, now
	r.m.complaints[c.ID] = *c
	return nil
}

func (r complaints) List(_ context.Context, f domain.ComplaintFilter) ([]domain.Complaint, int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var matched []domain.Complaint
	for _, c := range r.m.complaints {
		if f.Status != nil && c.Status != *f.Status {
			continue
		}
		if f.Priority != nil && c.Priority != *f.Priority {
			continue
		}
		if f.CategoryID != nil && c.CategoryID != *f.CategoryID {
			continue
		}
		if f.ReporterID != nil && c.ReporterID != *f.ReporterID {
			continue
		}
		if f.AssignedToID != nil && (c.AssignedToID == nil || *c.AssignedToID != *f.AssignedToID) {
			continue
		}
		if term := strings.ToLower(f.Search); term != "" &&
			!strings.Contains(strings.ToLower(c.Title), term) &&
			!strings.Contains(strings.ToLower(c.Description), term) {
			continue
		}
		matched = append(matched, r.joined(c))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	total := len(matched)
	start := f.Offset()
	if start > total {
		start = total
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// joined must be called with mu held.
func (r complaints) joined(c domain.Complaint) domain.Complaint {
	if cat, ok := r.m.categories[c.CategoryID]; ok {
		c.Category = &cat
	}
	c.Reporter = r.m.summary(c.ReporterID)
	if c.AssignedToID != nil {
		c.AssignedTo = r.m.summary(*c.AssignedToID)
	}
	return c
}

// summary must be called with mu held.
func (m *Store) summary(userID string) *domain.UserSummary {
	u, ok := m.users[userID]
	if !ok {
		return nil
	}
	return &domain.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (r complaints) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.detail(id), nil
}

// detail must be called with mu held. It returns nil for an unknown id.
func (r complaints) detail(id string) *domain.Complaint {
	c, ok := r.m.complaints[id]
	if !ok {
		return nil
	}
	c = r.joined(c)
	c.Comments = []domain.Comment{}
	for _, cm := range r.m.comments {
		if cm.ComplaintID == id {
			cm.Author = r.m.summary(cm.UserID)
			c.Comments = append(c.Comments, cm)
		}
	}
	c.Attachments = []domain.Attachment{}
	for _, a := range r.m.attachments {
		if a.ComplaintID == id {
			c.Attachments = append(c.Attachments, a)
		}
	}
	return &c
}

// Update applies the patch and returns the complaint as written, read back
// under the same lock.
func (r complaints) Update(_ context.Context, id string, p domain.ComplaintPatch) (*domain.Complaint, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.complaints[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	now := r.m.now()
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.CategoryID != nil {
		c.CategoryID = *p.CategoryID
	}
	if p.Priority != nil {
		c.Priority = *p.Priority
	}
	if p.AssignedToID != nil {
		if *p.AssignedToID == "" {
			c.AssignedToID = nil
		} else {
			v := *p.AssignedToID
			c.AssignedToID = &v
		}
	}
	if p.Status != nil {
		c.Status = *p.Status
		if c.Status.Closes() {
			if c.ResolvedAt == nil {
				c.ResolvedAt = &now
			}
		} else {
			c.ResolvedAt = nil
		}
	}
	c.UpdatedAt = now
	r.m.complaints[id] = c
	return r.detail(id), nil
}

func (r complaints) Assign(_ context.Context, complaintID, staffID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.complaints[complaintID]
	if !ok {
		return pgx.ErrNoRows
	}
	c.AssignedToID = &staffID
	c.Status = domain.StatusInProgress
	c.ResolvedAt = nil
	c.UpdatedAt = r.m.now()
	r.m.complaints[complaintID] = c
	return nil
}

func (r complaints) CountByStatus(_ context.Context) (domain.StatusCounts, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var counts domain.StatusCounts
	for _, c := range r.m.complaints {
		counts.Total++
		switch c.Status {
		case domain.StatusOpen:
			counts.Open++
		case domain.StatusInProgress:
			counts.InProgress++
		case domain.StatusResolved:
			counts.Resolved++
		case domain.StatusRejected:
			counts.Rejected++
		}
	}
	return counts, nil
}

func (r complaints) CountByDepartment(_ context.Context) ([]domain.DepartmentCount, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	byDept := map[string]int{}
	for _, c := range r.m.complaints {
		if cat, ok := r.m.categories[c.CategoryID]; ok {
			byDept[cat.DepartmentID]++
		}
	}
	var out []domain.DepartmentCount
	for _, d := range r.m.departments {
		out = append(out, domain.DepartmentCount{Name: d.Name, Count: byDept[d.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type comments struct{ m *Store }

func (r comments) Create(_ context.Context, c *domain.Comment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	id, now := r.m.next()
	c.ID, c.CreatedAt = id, now
	r.m.comments = append(r.m.comments, *c)
	return nil
}

func (r comments) ListByComplaint(_ context.Context, complaintID string) ([]domain.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Comment
	for _, c := range r.m.comments {
		if c.ComplaintID == complaintID {
			c.Author = r.m.summary(c.UserID)
			out = append(out, c)
		}
	}
	return out, nil
}

type attachments struct{ m *Store }

func (r attachments) Create(_ context.Context, a *domain.Attachment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	id, now := r.m.next()
	a.ID, a.CreatedAt = id, now
	r.m.attachments = append(r.m.attachments, *a)
	return nil
}

func (r attachments) ListByComplaint(_ context.Context, complaintID string) ([]domain.Attachment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Attachment
	for _, a := range r.m.attachments {
		if a.ComplaintID == complaintID {
			out = append(out, a)
		}
	}
	return out, nil
}

