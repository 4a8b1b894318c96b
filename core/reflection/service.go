package reflection

import (
	"context"

	"github.com/google/uuid"

	"github.com/istudy/dashboard/core"
)

var ErrNotFound = core.NewNotFoundError("reflection")

type (
	Repository interface {
		CreateReflection(ctx context.Context, r Reflection) (Reflection, error)
		QueryReflections(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Reflection, error)
		GetReflectionByID(ctx context.Context, id string) (Reflection, error)
		DeleteReflection(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, userID string, nr NewReflection) (Reflection, error) {
	return svc.repo.CreateReflection(ctx, Reflection{
		ID:         uuid.NewString(),
		UserID:     userID,
		Type:       nr.Type,
		MeetingID:  nr.MeetingID,
		Progress:   nr.Progress,
		Challenges: nr.Challenges,
		Questions:  nr.Questions,
		Takeaways:  nr.Takeaways,
		NextSteps:  nr.NextSteps,
		CreatedAt:  core.NowFunc().UTC(),
	})
}

// Query lists reflections newest first unless ordering says otherwise.
func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Reflection, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	ordering = core.AllowedOrderings(ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	return svc.repo.QueryReflections(ctx, filter, ordering)
}

func (svc *Service) ForUsers(ctx context.Context, userIDs ...string) ([]Reflection, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	return svc.Query(ctx, &QueryFilter{UserIDs: userIDs}, nil)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Reflection, error) {
	return svc.repo.GetReflectionByID(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteReflection(ctx, id)
}
