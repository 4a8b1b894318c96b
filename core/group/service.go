package group

import (
	"context"

	"github.com/google/uuid"

	"github.com/istudy/dashboard/core"
)

var ErrNotFound = core.NewNotFoundError("project group")

type (
	Repository interface {
		CreateGroup(ctx context.Context, g ProjectGroup) (ProjectGroup, error)
		QueryGroups(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]ProjectGroup, error)
		GetGroupByID(ctx context.Context, id string) (ProjectGroup, error)
		UpdateGroup(ctx context.Context, g ProjectGroup) (ProjectGroup, error)
		DeleteGroup(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, advisorID string, ng NewGroup) (ProjectGroup, error) {
	now := core.NowFunc().UTC()
	return svc.repo.CreateGroup(ctx, ProjectGroup{
		ID:          uuid.NewString(),
		Name:        ng.Name,
		Description: ng.Description,
		AdvisorID:   advisorID,
		MemberIDs:   dedupe(nil, ng.MemberIDs...),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]ProjectGroup, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	return svc.repo.QueryGroups(ctx, filter, core.AllowedOrderings(ordering, OrderingFields...))
}

func (svc *Service) GetByID(ctx context.Context, id string) (ProjectGroup, error) {
	return svc.repo.GetGroupByID(ctx, id)
}

// MemberIDs returns the students of group id.
func (svc *Service) MemberIDs(ctx context.Context, id string) ([]string, error) {
	g, err := svc.repo.GetGroupByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return g.MemberIDs, nil
}

func (svc *Service) Update(ctx context.Context, id string, ug UpdateGroup) (ProjectGroup, error) {
	g, err := svc.repo.GetGroupByID(ctx, id)
	if err != nil {
		return ProjectGroup{}, err
	}
	if ug.Name != nil {
		g.Name = core.CleanString(*ug.Name)
	}
	if ug.Description != nil {
		g.Description = core.CleanString(*ug.Description)
	}
	g.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateGroup(ctx, g)
}

func (svc *Service) AddMembers(ctx context.Context, id string, userIDs ...string) (ProjectGroup, error) {
	g, err := svc.repo.GetGroupByID(ctx, id)
	if err != nil {
		return ProjectGroup{}, err
	}
	g.MemberIDs = dedupe(g.MemberIDs, userIDs...)
	g.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateGroup(ctx, g)
}

func (svc *Service) RemoveMember(ctx context.Context, id, userID string) (ProjectGroup, error) {
	g, err := svc.repo.GetGroupByID(ctx, id)
	if err != nil {
		return ProjectGroup{}, err
	}
	kept := make([]string, 0, len(g.MemberIDs))
	for _, mid := range g.MemberIDs {
		if mid != userID {
			kept = append(kept, mid)
		}
	}
	g.MemberIDs = kept
	g.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateGroup(ctx, g)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteGroup(ctx, id)
}

func dedupe(ids []string, more ...string) []string {
	out := make([]string, 0, len(ids)+len(more))
	seen := make(map[string]bool, len(ids)+len(more))
	for _, list := range [][]string{ids, more} {
		for _, id := range list {
			if id != "" && !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
