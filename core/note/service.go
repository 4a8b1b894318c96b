package note

import (
	"context"

	"github.com/google/uuid"

	"github.com/istudy/dashboard/core"
)

var ErrNotFound = core.NewNotFoundError("note")

type (
	Repository interface {
		CreateNote(ctx context.Context, n Note) (Note, error)
		QueryNotes(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Note, error)
		GetNoteByID(ctx context.Context, id string) (Note, error)
		UpdateNote(ctx context.Context, n Note) (Note, error)
		DeleteNote(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, userID string, nn NewNote) (Note, error) {
	now := core.NowFunc().UTC()
	return svc.repo.CreateNote(ctx, Note{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     nn.Title,
		Content:   nn.Content,
		Pinned:    nn.Pinned,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Query lists notes, pinned ones first then most recently updated, unless ordering says otherwise.
func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Note, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Search = core.CleanString(filter.Search)
	ordering = core.AllowedOrderings(ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "pinned"}, {Field: "updated_at"}}
	}
	return svc.repo.QueryNotes(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Note, error) {
	return svc.repo.GetNoteByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, un UpdateNote) (Note, error) {
	n, err := svc.repo.GetNoteByID(ctx, id)
	if err != nil {
		return Note{}, err
	}
	if un.Title != nil {
		n.Title = core.CleanString(*un.Title)
	}
	if un.Content != nil {
		n.Content = *un.Content
	}
	if un.Pinned != nil {
		n.Pinned = *un.Pinned
	}
	n.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateNote(ctx, n)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteNote(ctx, id)
}
