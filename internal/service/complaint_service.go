package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/authz"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const (
	defaultPageLimit  = 10
	maxPageLimit      = 100
	maxPage           = 100000
	maxCommentLength  = 4000
	maxTitleLength    = 200
	maxAttachmentSize = 50 << 20
)

// ComplaintService coordinates complaint workflows.
type ComplaintService struct {
	complaints  repository.ComplaintRepository
	users       repository.UserRepository
	departments repository.DepartmentRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
}

// ComplaintDependencies bundles repositories for complaint service.
type ComplaintDependencies struct {
	ComplaintRepo  repository.ComplaintRepository
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	return &ComplaintService{
		complaints:  deps.ComplaintRepo,
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
	}
}

// CreateComplaintInput describes complaint creation payload.
type CreateComplaintInput struct {
	Title       string
	Description string
	CategoryID  string
	Priority    domain.ComplaintPriority
}

// ListComplaintsInput carries client supplied list filters. Empty strings
// mean no filter.
type ListComplaintsInput struct {
	Status       string
	Priority     string
	CategoryID   string
	ReporterID   string
	AssignedToID string
	Search       string
	Page         int
	Limit        int
}

// ComplaintPage is one page of a complaint listing.
type ComplaintPage struct {
	Items []domain.Complaint `json:"items"`
	Total int                `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// AttachmentInput defines attachment metadata.
type AttachmentInput struct {
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageKey string
}

// Create files a complaint on behalf of the principal.
func (s *ComplaintService) Create(ctx context.Context, principal *auth.Principal, in CreateComplaintInput) (*domain.Complaint, error) {
	if !authz.CanCreateComplaint(principal) {
		return nil, apperrors.NewForbidden("cannot create complaints")
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	categoryID := strings.TrimSpace(in.CategoryID)

	missing := []string{}
	if title == "" {
		missing = append(missing, domain.FieldTitle)
	}
	if description == "" {
		missing = append(missing, domain.FieldDescription)
	}
	if categoryID == "" {
		missing = append(missing, domain.FieldCategoryID)
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, apperrors.NewValidationError("title is too long", map[string]any{"max": maxTitleLength})
	}

	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": string(priority)})
	}
	if err := s.ensureCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	complaint := &domain.Complaint{
		Title:       title,
		Description: description,
		CategoryID:  categoryID,
		ReporterID:  principal.ID,
		Status:      domain.StatusOpen,
		Priority:    priority,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	created, err := s.complaints.GetByID(ctx, complaint.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if created == nil {
		created = complaint
	}

	s.metrics.ComplaintCreated(string(created.Priority))
	s.publish(ctx, events.New(events.EventNewComplaint, created.ID, principal.ID, created))
	return created, nil
}

// List returns the page of complaints visible to the principal. The role
// scope is applied on top of the client filters.
func (s *ComplaintService) List(ctx context.Context, principal *auth.Principal, in ListComplaintsInput) (*ComplaintPage, error) {
	filter, err := buildFilter(in)
	if err != nil {
		return nil, err
	}
	filter = authz.ListScope(principal).Apply(filter)

	items, total, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if items == nil {
		items = []domain.Complaint{}
	}
	return &ComplaintPage{Items: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func buildFilter(in ListComplaintsInput) (domain.ComplaintFilter, error) {
	filter := domain.ComplaintFilter{
		Search: strings.TrimSpace(in.Search),
		Page:   in.Page,
		Limit:  in.Limit,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Page > maxPage {
		return filter, apperrors.NewValidationError("page is out of range", map[string]any{"max": maxPage})
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	if v := strings.ToUpper(strings.TrimSpace(in.Status)); v != "" {
		status := domain.ComplaintStatus(v)
		if !status.Valid() {
			return filter, apperrors.NewValidationError("invalid status", map[string]any{"status": in.Status})
		}
		filter.Status = &status
	}
	if v := strings.ToUpper(strings.TrimSpace(in.Priority)); v != "" {
		priority := domain.ComplaintPriority(v)
		if !priority.Valid() {
			return filter, apperrors.NewValidationError("invalid priority", map[string]any{"priority": in.Priority})
		}
		filter.Priority = &priority
	}
	if v := strings.TrimSpace(in.CategoryID); v != "" {
		filter.CategoryID = &v
	}
	if v := strings.TrimSpace(in.ReporterID); v != "" {
		filter.ReporterID = &v
	}
	if v := strings.TrimSpace(in.AssignedToID); v != "" {
		filter.AssignedToID = &v
	}
	return filter, nil
}

// Get returns the complaint when it exists and is visible to the principal.
func (s *ComplaintService) Get(ctx context.Context, principal *auth.Principal, id string) (*domain.Complaint, error) {
	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanRead(principal, complaint) {
		return nil, authz.ScopeError()
	}
	return complaint, nil
}

// Update applies a partial update. Any status may follow any other.
func (s *ComplaintService) Update(ctx context.Context, principal *auth.Principal, id string, patch domain.ComplaintPatch) (*domain.Complaint, error) {
	if patch.IsEmpty() {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}
	patch, err := normalizePatch(patch)
	if err != nil {
		return nil, err
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckUpdate(principal, current, patch); err != nil {
		return nil, err
	}

	if patch.CategoryID != nil {
		if err := s.ensureCategory(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
	}
	if patch.AssignedToID != nil && *patch.AssignedToID != "" {
		if _, err := s.assignee(ctx, *patch.AssignedToID, apperrors.NewValidationError("assignee does not exist", nil)); err != nil {
			return nil, err
		}
	}

	updated, err := s.complaints.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", nil)
		}
		return nil, apperrors.MapError(err)
	}

	if current.Status != updated.Status {
		s.metrics.StatusChanged(string(current.Status), string(updated.Status))
	}
	s.publishUpdate(ctx, principal.ID, updated)
	return updated, nil
}

func normalizePatch(patch domain.ComplaintPatch) (domain.ComplaintPatch, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" || utf8.RuneCountInString(title) > maxTitleLength {
			return patch, apperrors.NewValidationError("invalid title", nil)
		}
		patch.Title = &title
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description == "" {
			return patch, apperrors.NewValidationError("description cannot be empty", nil)
		}
		patch.Description = &description
	}
	if patch.CategoryID != nil {
		categoryID := strings.TrimSpace(*patch.CategoryID)
		if categoryID == "" {
			return patch, apperrors.NewValidationError("categoryId cannot be empty", nil)
		}
		patch.CategoryID = &categoryID
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return patch, apperrors.NewValidationError("invalid status", map[string]any{"status": string(*patch.Status)})
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return patch, apperrors.NewValidationError("invalid priority", map[string]any{"priority": string(*patch.Priority)})
	}
	if patch.AssignedToID != nil {
		assignee := strings.TrimSpace(*patch.AssignedToID)
		patch.AssignedToID = &assignee
	}
	return patch, nil
}

// AddComment appends a message to the complaint thread.
func (s *ComplaintService) AddComment(ctx context.Context, principal *auth.Principal, complaintID, message string) (*domain.Comment, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("message is required", nil)
	}
	if len(message) > maxCommentLength {
		return nil, apperrors.NewValidationError("message is too long", map[string]any{"max": maxCommentLength})
	}

	complaint, err := s.load(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if !authz.CanComment(principal, complaint) {
		return nil, authz.ScopeError()
	}

	comment := &domain.Comment{
		ComplaintID: complaint.ID,
		UserID:      principal.ID,
		Message:     message,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	comment.Author = &domain.UserSummary{ID: principal.ID, Name: principal.Name, Email: principal.Email}
	return comment, nil
}

// AddAttachment records metadata for a file already held by the storage service.
func (s *ComplaintService) AddAttachment(ctx context.Context, principal *auth.Principal, complaintID string, in AttachmentInput) (*domain.Attachment, error) {
	name := strings.TrimSpace(in.FileName)
	key := strings.TrimSpace(in.StorageKey)
	if name == "" || key == "" {
		return nil, apperrors.NewValidationError("fileName and storageKey are required", nil)
	}
	if in.SizeBytes <= 0 || in.SizeBytes > maxAttachmentSize {
		return nil, apperrors.NewValidationError("invalid attachment size", map[string]any{"max": maxAttachmentSize})
	}

	complaint, err := s.load(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if !authz.CanComment(principal, complaint) {
		return nil, authz.ScopeError()
	}

	attachment := &domain.Attachment{
		ComplaintID: complaint.ID,
		FileName:    name,
		MimeType:    strings.TrimSpace(in.MimeType),
		SizeBytes:   in.SizeBytes,
		StorageKey:  key,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return attachment, nil
}

// CanSubscribe reports, as an error, whether the principal may follow the
// complaint's realtime room.
func (s *ComplaintService) CanSubscribe(ctx context.Context, principal *auth.Principal, complaintID string) error {
	complaint, err := s.load(ctx, complaintID)
	if err != nil {
		return err
	}
	if !authz.CanSubscribe(principal, complaint) {
		return authz.ScopeError()
	}
	return nil
}

func (s *ComplaintService) load(ctx context.Context, id string) (*domain.Complaint, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewNotFound("complaint", nil)
	}
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if complaint == nil {
		return nil, apperrors.NewNotFound("complaint", nil)
	}
	return complaint, nil
}

func (s *ComplaintService) ensureCategory(ctx context.Context, id string) error {
	if _, err := s.departments.GetCategory(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("category does not exist", map[string]any{"categoryId": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// assignee loads a user that may hold complaints. missing is returned when
// the id is unknown.
func (s *ComplaintService) assignee(ctx context.Context, id string, missing error) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, missing
		}
		return nil, apperrors.MapError(err)
	}
	if !user.CanBeAssignee() {
		return nil, apperrors.NewValidationError("assignee must be staff or admin", map[string]any{"role": string(user.Role)})
	}
	return user, nil
}

func (s *ComplaintService) publishUpdate(ctx context.Context, actorID string, complaint *domain.Complaint) {
	updated := events.New(events.EventComplaintUpdated, complaint.ID, actorID, complaint).
		InRoom(events.RoomForComplaint(complaint.ID))
	s.publish(ctx, updated)
	s.publish(ctx, events.New(events.EventStatusChange, complaint.ID, actorID, complaint))
}

func (s *ComplaintService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
