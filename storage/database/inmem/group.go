package inmemdb

import (
	"context"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/group"
)

type groupRow = group.ProjectGroup

var groupFields = map[string]comparator[groupRow]{
	"name":       func(a, b *groupRow) int { return cmpString(a.Name, b.Name) },
	"created_at": func(a, b *groupRow) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
}

type groupRepository struct {
	db *table[groupRow]
}

var _ group.Repository = (*groupRepository)(nil)

func NewGroupRepository(db *DB) *groupRepository {
	return &groupRepository{db: db.groups}
}

func (repo *groupRepository) CreateGroup(_ context.Context, g group.ProjectGroup) (group.ProjectGroup, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	g.MemberIDs = append([]string{}, g.MemberIDs...)
	repo.db.rows[g.ID] = &g
	return g, nil
}

func (repo *groupRepository) QueryGroups(_ context.Context, filter *group.QueryFilter, ordering []core.DBOrdering) ([]group.ProjectGroup, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	groups := repo.db.filter(func(g *group.ProjectGroup) bool {
		return (filter.AdvisorID == "" || g.AdvisorID == filter.AdvisorID) &&
			(filter.MemberID == "" || g.HasMember(filter.MemberID))
	})
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	sortRows(groups, ordering, groupFields, func(a, b *groupRow) int { return cmpString(a.ID, b.ID) })
	return groups, nil
}

func (repo *groupRepository) GetGroupByID(_ context.Context, id string) (group.ProjectGroup, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if g, ok := repo.db.rows[id]; ok {
		return *g, nil
	}
	return group.ProjectGroup{}, group.ErrNotFound
}

func (repo *groupRepository) UpdateGroup(_ context.Context, g group.ProjectGroup) (group.ProjectGroup, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[g.ID]; !ok {
		return group.ProjectGroup{}, group.ErrNotFound
	}
	g.MemberIDs = append([]string{}, g.MemberIDs...)
	repo.db.rows[g.ID] = &g
	return g, nil
}

func (repo *groupRepository) DeleteGroup(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[id]; !ok {
		return group.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}
