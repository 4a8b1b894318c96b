package inmemdb

import (
	"context"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/actionitem"
)

type actionItemRow = actionitem.ActionItem

var actionItemFields = map[string]comparator[actionItemRow]{
	"text":       func(a, b *actionItemRow) int { return cmpString(a.Text, b.Text) },
	"completed":  func(a, b *actionItemRow) int { return cmpBool(a.Completed, b.Completed) },
	"created_at": func(a, b *actionItemRow) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
	"updated_at": func(a, b *actionItemRow) int { return cmpTime(a.UpdatedAt, b.UpdatedAt) },
}

type actionItemRepository struct {
	db *table[actionItemRow]
}

var _ actionitem.Repository = (*actionItemRepository)(nil)

func NewActionItemRepository(db *DB) *actionItemRepository {
	return &actionItemRepository{db: db.actionItems}
}

func (repo *actionItemRepository) CreateActionItems(_ context.Context, items ...actionitem.ActionItem) ([]actionitem.ActionItem, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i := range items {
		ai := items[i]
		repo.db.rows[ai.ID] = &ai
	}
	return items, nil
}

func (repo *actionItemRepository) QueryActionItems(_ context.Context, filter *actionitem.QueryFilter, ordering []core.DBOrdering) ([]actionitem.ActionItem, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	items := repo.db.filter(func(ai *actionitem.ActionItem) bool {
		return (len(filter.UserIDs) == 0 || inSlice(filter.UserIDs, ai.UserID)) &&
			(filter.GroupID == "" || ai.GroupID == filter.GroupID) &&
			(filter.Completed == nil || ai.Completed == *filter.Completed) &&
			(filter.Struggling == nil || ai.Struggling == *filter.Struggling)
	})
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	sortRows(items, ordering, actionItemFields, func(a, b *actionItemRow) int { return cmpString(a.ID, b.ID) })
	return items, nil
}

func (repo *actionItemRepository) GetActionItemByID(_ context.Context, id string) (actionitem.ActionItem, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ai, ok := repo.db.rows[id]; ok {
		return *ai, nil
	}
	return actionitem.ActionItem{}, actionitem.ErrNotFound
}

func (repo *actionItemRepository) UpdateActionItem(_ context.Context, ai actionitem.ActionItem) (actionitem.ActionItem, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[ai.ID]; !ok {
		return actionitem.ActionItem{}, actionitem.ErrNotFound
	}
	repo.db.rows[ai.ID] = &ai
	return ai, nil
}

func (repo *actionItemRepository) DeleteActionItem(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[id]; !ok {
		return actionitem.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}
