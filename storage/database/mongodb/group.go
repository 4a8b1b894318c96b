package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/group"
)

type groupRepository struct {
	store store[group.ProjectGroup]
}

var _ group.Repository = (*groupRepository)(nil)

func NewGroupRepository(d *DB) *groupRepository {
	return &groupRepository{store: newStore[group.ProjectGroup](d, groupsCollection, group.ErrNotFound)}
}

func (repo *groupRepository) CreateGroup(ctx context.Context, g group.ProjectGroup) (group.ProjectGroup, error) {
	if g.MemberIDs == nil {
		g.MemberIDs = []string{}
	}
	if err := repo.store.insert(ctx, g); err != nil {
		return group.ProjectGroup{}, err
	}
	return g, nil
}

func (repo *groupRepository) QueryGroups(ctx context.Context, filter *group.QueryFilter, ordering []core.DBOrdering) ([]group.ProjectGroup, error) {
	q := bson.M{}
	if filter.AdvisorID != "" {
		q["advisor_id"] = filter.AdvisorID
	}
	if filter.MemberID != "" {
		q["member_ids"] = filter.MemberID // matches any array element
	}
	return repo.store.find(ctx, q, orDefault(ordering, core.DBOrdering{Field: "name", Ascending: true}))
}

func (repo *groupRepository) GetGroupByID(ctx context.Context, id string) (group.ProjectGroup, error) {
	return repo.store.get(ctx, id)
}

func (repo *groupRepository) UpdateGroup(ctx context.Context, g group.ProjectGroup) (group.ProjectGroup, error) {
	if g.MemberIDs == nil {
		g.MemberIDs = []string{}
	}
	if err := repo.store.replace(ctx, g.ID, g); err != nil {
		return group.ProjectGroup{}, err
	}
	return g, nil
}

func (repo *groupRepository) DeleteGroup(ctx context.Context, id string) error {
	return repo.store.delete(ctx, id)
}
