package actionitem

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/istudy/dashboard/core"
)

var (
	ErrNotFound = core.NewNotFoundError("action item")

	errNoAssignees = core.NewValidationError(nil, core.FieldError{Field: "user_ids", Error: "no students to assign"})
)

type (
	Repository interface {
		CreateActionItems(ctx context.Context, items ...ActionItem) ([]ActionItem, error)
		QueryActionItems(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]ActionItem, error)
		GetActionItemByID(ctx context.Context, id string) (ActionItem, error)
		UpdateActionItem(ctx context.Context, ai ActionItem) (ActionItem, error)
		DeleteActionItem(ctx context.Context, id string) error
	}

	// MemberLookup resolves the students of a project group.
	MemberLookup interface {
		MemberIDs(ctx context.Context, groupID string) ([]string, error)
	}

	Service struct {
		repo    Repository
		members MemberLookup
	}
)

func NewService(repo Repository, members MemberLookup) *Service {
	return &Service{repo: repo, members: members}
}

func (svc *Service) Create(ctx context.Context, userID string, na NewActionItem) (ActionItem, error) {
	now := core.NowFunc().UTC()
	items, err := svc.repo.CreateActionItems(ctx, ActionItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		Text:      na.Text,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return ActionItem{}, err
	}
	return items[0], nil
}

// Assign creates one item per targeted student. Group members are merged with UserIDs.
func (svc *Service) Assign(ctx context.Context, data AssignItems, assignedBy string) ([]ActionItem, error) {
	userIDs := make([]string, 0, len(data.UserIDs))
	seen := make(map[string]bool)
	add := func(ids []string) {
		for _, id := range ids {
			if id != "" && !seen[id] {
				seen[id] = true
				userIDs = append(userIDs, id)
			}
		}
	}
	add(data.UserIDs)

	if data.GroupID != "" {
		members, err := svc.members.MemberIDs(ctx, data.GroupID)
		if err != nil {
			return nil, errors.Wrap(err, "resolving group members")
		}
		add(members)
	}
	if len(userIDs) == 0 {
		return nil, errNoAssignees
	}

	now := core.NowFunc().UTC()
	items := make([]ActionItem, 0, len(userIDs))
	for _, uid := range userIDs {
		items = append(items, ActionItem{
			ID:         uuid.NewString(),
			UserID:     uid,
			Text:       data.Text,
			AssignedBy: assignedBy,
			GroupID:    data.GroupID,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return svc.repo.CreateActionItems(ctx, items...)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]ActionItem, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	return svc.repo.QueryActionItems(ctx, filter, core.AllowedOrderings(ordering, OrderingFields...))
}

// ForUsers returns the items of the given users, newest first.
func (svc *Service) ForUsers(ctx context.Context, userIDs ...string) ([]ActionItem, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	return svc.repo.QueryActionItems(ctx, &QueryFilter{UserIDs: userIDs}, []core.DBOrdering{{Field: "created_at"}})
}

func (svc *Service) GetByID(ctx context.Context, id string) (ActionItem, error) {
	return svc.repo.GetActionItemByID(ctx, id)
}

// SetCompleted toggles completion. Completing clears the struggling flag.
func (svc *Service) SetCompleted(ctx context.Context, id string, completed bool) (ActionItem, error) {
	ai, err := svc.repo.GetActionItemByID(ctx, id)
	if err != nil {
		return ActionItem{}, err
	}
	now := core.NowFunc().UTC()
	ai.Completed = completed
	if completed {
		ai.CompletedAt = &now
		ai.Struggling = false
	} else {
		ai.CompletedAt = nil
	}
	ai.UpdatedAt = now
	return svc.repo.UpdateActionItem(ctx, ai)
}

func (svc *Service) SetStruggling(ctx context.Context, id string, struggling bool) (ActionItem, error) {
	ai, err := svc.repo.GetActionItemByID(ctx, id)
	if err != nil {
		return ActionItem{}, err
	}
	ai.Struggling = struggling
	ai.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateActionItem(ctx, ai)
}

func (svc *Service) UpdateText(ctx context.Context, id string, ua UpdateActionItem) (ActionItem, error) {
	ai, err := svc.repo.GetActionItemByID(ctx, id)
	if err != nil {
		return ActionItem{}, err
	}
	ai.Text = ua.Text
	ai.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateActionItem(ctx, ai)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteActionItem(ctx, id)
}
