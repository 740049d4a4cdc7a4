package group

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"chat-hub-backend/internal/model"
)

type memoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	groups  map[int64]model.GroupItem
	members map[string]model.GroupMemberItem
	failAll error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		groups:  make(map[int64]model.GroupItem),
		members: make(map[string]model.GroupMemberItem),
	}
}

func (m *memoryRepository) NextGroupID(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return 0, m.failAll
	}
	m.nextID++
	return m.nextID, nil
}

func (m *memoryRepository) CreateGroup(ctx context.Context, group model.GroupItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	m.groups[group.GroupID] = group
	return nil
}

func (m *memoryRepository) PutMembers(ctx context.Context, members []model.GroupMemberItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	for _, member := range members {
		m.members[member.PK] = member
	}
	return nil
}

func (m *memoryRepository) GetGroup(ctx context.Context, groupID int64) (model.GroupItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return model.GroupItem{}, m.failAll
	}
	group, ok := m.groups[groupID]
	if !ok {
		return model.GroupItem{}, ErrNotFound
	}
	return group, nil
}

func (m *memoryRepository) ListMembers(ctx context.Context, groupID int64) ([]model.GroupMemberItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	var rows []model.GroupMemberItem
	for _, member := range m.members {
		if member.GroupID == groupID {
			rows = append(rows, member)
		}
	}
	return rows, nil
}

func (m *memoryRepository) ListMembershipsForUser(ctx context.Context, email string) ([]model.GroupMemberItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	var rows []model.GroupMemberItem
	for _, member := range m.members {
		if member.UserEmail == email {
			rows = append(rows, member)
		}
	}
	return rows, nil
}

func TestCreateGroupIncludesCreator(t *testing.T) {
	repo := newMemoryRepository()
	service := New(repo)
	ctx := context.Background()

	result, err := service.CreateGroup(ctx, "creator@example.com", CreateGroupParams{
		Name:    "weekend plans",
		Members: []string{"b@example.com", "c@example.com"},
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	if result.Group.GroupID != 1 {
		t.Fatalf("group id = %d, want 1", result.Group.GroupID)
	}
	want := []string{"b@example.com", "c@example.com", "creator@example.com"}
	if !reflect.DeepEqual(result.Members, want) {
		t.Fatalf("members = %v, want %v", result.Members, want)
	}

	members, err := service.MembersOf(ctx, result.Group.GroupID)
	if err != nil {
		t.Fatalf("members of: %v", err)
	}
	if !reflect.DeepEqual(members, want) {
		t.Fatalf("resolved members = %v, want %v", members, want)
	}
}

func TestCreateGroupRequiresTwoMembers(t *testing.T) {
	service := New(newMemoryRepository())
	ctx := context.Background()

	_, err := service.CreateGroup(ctx, "creator@example.com", CreateGroupParams{
		Name:    "just us",
		Members: []string{"b@example.com"},
	})
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Code != ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Duplicate entries do not count twice.
	_, err = service.CreateGroup(ctx, "creator@example.com", CreateGroupParams{
		Name:    "echo chamber",
		Members: []string{"b@example.com", "B@Example.com"},
	})
	if !errors.As(err, &svcErr) || svcErr.Code != ErrorCodeValidation {
		t.Fatalf("expected validation error for duplicates, got %v", err)
	}
}

func TestSequentialGroupIDs(t *testing.T) {
	repo := newMemoryRepository()
	service := New(repo)
	ctx := context.Background()

	params := CreateGroupParams{Name: "g", Members: []string{"b@example.com", "c@example.com"}}
	first, err := service.CreateGroup(ctx, "a@example.com", params)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := service.CreateGroup(ctx, "a@example.com", params)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.Group.GroupID != first.Group.GroupID+1 {
		t.Fatalf("ids not sequential: %d then %d", first.Group.GroupID, second.Group.GroupID)
	}
}

func TestListUserGroups(t *testing.T) {
	repo := newMemoryRepository()
	service := New(repo)
	ctx := context.Background()

	if _, err := service.CreateGroup(ctx, "a@example.com", CreateGroupParams{
		Name:    "first",
		Members: []string{"b@example.com", "c@example.com"},
	}); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := service.CreateGroup(ctx, "b@example.com", CreateGroupParams{
		Name:    "second",
		Members: []string{"c@example.com", "d@example.com"},
	}); err != nil {
		t.Fatalf("create second: %v", err)
	}

	groups, err := service.ListUserGroups(ctx, "c@example.com")
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(groups) != 2 || groups[0].Name != "first" || groups[1].Name != "second" {
		t.Fatalf("groups for c = %+v", groups)
	}

	groups, err = service.ListUserGroups(ctx, "d@example.com")
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(groups) != 1 || groups[0].Name != "second" {
		t.Fatalf("groups for d = %+v", groups)
	}
}

func TestMembersOfUnknownGroup(t *testing.T) {
	service := New(newMemoryRepository())

	_, err := service.MembersOf(context.Background(), 99)
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Code != ErrorCodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestMembersOfStoreFailure(t *testing.T) {
	repo := newMemoryRepository()
	repo.failAll = errors.New("store unreachable")
	service := New(repo)

	_, err := service.MembersOf(context.Background(), 7)
	if !errors.Is(err, repo.failAll) {
		t.Fatalf("expected store error to surface, got %v", err)
	}
}
