package goal

import (
	"context"

	"github.com/google/uuid"

	"github.com/istudy/dashboard/core"
)

var ErrNotFound = core.NewNotFoundError("goal")

type (
	Repository interface {
		CreateGoal(ctx context.Context, g Goal) (Goal, error)
		QueryGoals(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Goal, error)
		GetGoalByID(ctx context.Context, id string) (Goal, error)
		UpdateGoal(ctx context.Context, g Goal) (Goal, error)
		DeleteGoal(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a validated NewGoal for the student userID.
func (svc *Service) Create(ctx context.Context, userID string, ng NewGoal) (Goal, error) {
	now := core.NowFunc().UTC()
	g := Goal{
		ID:             uuid.NewString(),
		UserID:         userID,
		Title:          ng.Title,
		Description:    ng.Description,
		Category:       ng.Category,
		TargetDate:     ng.TargetDate,
		SuccessMetrics: ng.SuccessMetrics,
		Status:         ng.Status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateGoal(ctx, g)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Goal, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	return svc.repo.QueryGoals(ctx, filter, core.AllowedOrderings(ordering, OrderingFields...))
}

// ForUsers returns the goals of the given users ordered by target date.
func (svc *Service) ForUsers(ctx context.Context, userIDs ...string) ([]Goal, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	filter := &QueryFilter{UserIDs: userIDs}
	return svc.repo.QueryGoals(ctx, filter, []core.DBOrdering{{Field: "target_date", Ascending: true}})
}

func (svc *Service) GetByID(ctx context.Context, id string) (Goal, error) {
	return svc.repo.GetGoalByID(ctx, id)
}

// Update applies a validated UpdateGoal to the goal with id.
func (svc *Service) Update(ctx context.Context, id string, ug UpdateGoal) (Goal, error) {
	g, err := svc.repo.GetGoalByID(ctx, id)
	if err != nil {
		return Goal{}, err
	}
	if ug.Title != nil {
		g.Title = core.CleanString(*ug.Title)
	}
	if ug.Description != nil {
		g.Description = core.CleanString(*ug.Description)
	}
	if ug.Category != nil {
		g.Category = *ug.Category
	}
	if ug.TargetDate != nil {
		g.TargetDate = *ug.TargetDate
	}
	if ug.SuccessMetrics != nil {
		g.SuccessMetrics = core.CleanString(*ug.SuccessMetrics)
	}
	if ug.Status != nil {
		g.Status = *ug.Status
	}
	g.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateGoal(ctx, g)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteGoal(ctx, id)
}
