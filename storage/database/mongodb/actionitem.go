package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/actionitem"
)

type actionItemRepository struct {
	store store[actionitem.ActionItem]
}

var _ actionitem.Repository = (*actionItemRepository)(nil)

func NewActionItemRepository(d *DB) *actionItemRepository {
	return &actionItemRepository{store: newStore[actionitem.ActionItem](d, actionItemsCollection, actionitem.ErrNotFound)}
}

func (repo *actionItemRepository) CreateActionItems(ctx context.Context, items ...actionitem.ActionItem) ([]actionitem.ActionItem, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if err := repo.store.insert(ctx, items...); err != nil {
		return nil, err
	}
	return items, nil
}

func (repo *actionItemRepository) QueryActionItems(ctx context.Context, filter *actionitem.QueryFilter, ordering []core.DBOrdering) ([]actionitem.ActionItem, error) {
	q := bson.M{}
	if len(filter.UserIDs) > 0 {
		q["user_id"] = in(filter.UserIDs)
	}
	if filter.GroupID != "" {
		q["group_id"] = filter.GroupID
	}
	if filter.Completed != nil {
		q["completed"] = *filter.Completed
	}
	if filter.Struggling != nil {
		q["struggling"] = *filter.Struggling
	}
	return repo.store.find(ctx, q, orDefault(ordering, core.DBOrdering{Field: "created_at"}))
}

func (repo *actionItemRepository) GetActionItemByID(ctx context.Context, id string) (actionitem.ActionItem, error) {
	return repo.store.get(ctx, id)
}

func (repo *actionItemRepository) UpdateActionItem(ctx context.Context, ai actionitem.ActionItem) (actionitem.ActionItem, error) {
	if err := repo.store.replace(ctx, ai.ID, ai); err != nil {
		return actionitem.ActionItem{}, err
	}
	return ai, nil
}

func (repo *actionItemRepository) DeleteActionItem(ctx context.Context, id string) error {
	return repo.store.delete(ctx, id)
}
