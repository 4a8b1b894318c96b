package importantdate

import (
	"context"

	"github.com/google/uuid"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/user"
)

var ErrNotFound = core.NewNotFoundError("important date")

type (
	Repository interface {
		CreateImportantDate(ctx context.Context, d ImportantDate) (ImportantDate, error)
		QueryImportantDates(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]ImportantDate, error)
		GetImportantDateByID(ctx context.Context, id string) (ImportantDate, error)
		UpdateImportantDate(ctx context.Context, d ImportantDate) (ImportantDate, error)
		DeleteImportantDate(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a date scoped after creator's role.
func (svc *Service) Create(ctx context.Context, creator user.User, nd NewImportantDate) (ImportantDate, error) {
	now := core.NowFunc().UTC()
	d := ImportantDate{
		ID:          uuid.NewString(),
		Title:       nd.Title,
		Description: nd.Description,
		Date:        nd.Date,
		CreatedBy:   creator.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	switch {
	case creator.IsAdministrator():
		d.Scope = ScopeAdmin
	case creator.IsAdvisor():
		d.Scope = ScopeAdvisor
		d.AdvisorID = creator.ID
	default:
		d.Scope = ScopeStudent
		d.StudentID = creator.ID
	}
	return svc.repo.CreateImportantDate(ctx, d)
}

// Visible lists the dates viewer may see, soonest first.
func (svc *Service) Visible(ctx context.Context, viewer user.User, filter *QueryFilter, ordering []core.DBOrdering) ([]ImportantDate, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.ForViewer(viewer)
	ordering = core.AllowedOrderings(ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "date", Ascending: true}}
	}
	return svc.repo.QueryImportantDates(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (ImportantDate, error) {
	return svc.repo.GetImportantDateByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ud UpdateImportantDate) (ImportantDate, error) {
	d, err := svc.repo.GetImportantDateByID(ctx, id)
	if err != nil {
		return ImportantDate{}, err
	}
	if ud.Title != nil {
		d.Title = core.CleanString(*ud.Title)
	}
	if ud.Description != nil {
		d.Description = core.CleanString(*ud.Description)
	}
	if ud.Date != nil {
		d.Date = *ud.Date
	}
	d.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateImportantDate(ctx, d)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteImportantDate(ctx, id)
}
