package endpoints

import (
	"chat-hub-backend/internal/api"
	"chat-hub-backend/internal/api/middleware"
	"chat-hub-backend/internal/dto"
	internaljwt "chat-hub-backend/internal/jwt"
	"chat-hub-backend/internal/model"
	authsvc "chat-hub-backend/internal/service/auth"
	groupsvc "chat-hub-backend/internal/service/group"
	messagesvc "chat-hub-backend/internal/service/message"
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
)

type testGroupRepository struct {
	mu      sync.Mutex
	counter int64
	groups  map[int64]model.GroupItem
	members []model.GroupMemberItem
}

func newTestGroupRepository() *testGroupRepository {
	return &testGroupRepository{groups: make(map[int64]model.GroupItem)}
}

func (m *testGroupRepository) NextGroupID(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return m.counter, nil
}

func (m *testGroupRepository) CreateGroup(ctx context.Context, group model.GroupItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[group.GroupID] = group
	return nil
}

func (m *testGroupRepository) PutMembers(ctx context.Context, members []model.GroupMemberItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members = append(m.members, members...)
	return nil
}

func (m *testGroupRepository) GetGroup(ctx context.Context, groupID int64) (model.GroupItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	group, ok := m.groups[groupID]
	if !ok {
		return model.GroupItem{}, groupsvc.ErrNotFound
	}
	return group, nil
}

func (m *testGroupRepository) ListMembers(ctx context.Context, groupID int64) ([]model.GroupMemberItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.GroupMemberItem
	for _, member := range m.members {
		if member.GroupID == groupID {
			out = append(out, member)
		}
	}
	return out, nil
}

func (m *testGroupRepository) ListMembershipsForUser(ctx context.Context, email string) ([]model.GroupMemberItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.GroupMemberItem
	for _, member := range m.members {
		if member.UserEmail == email {
			out = append(out, member)
		}
	}
	return out, nil
}

type testMessageRepository struct {
	mu       sync.Mutex
	messages []model.MessageItem
}

func (m *testMessageRepository) SaveMessage(ctx context.Context, message model.MessageItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return nil
}

func (m *testMessageRepository) ListMessages(ctx context.Context) ([]model.MessageItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.MessageItem(nil), m.messages...), nil
}

func setupChatHandler(t *testing.T, authority *internaljwt.Authority) http.Handler {
	t.Helper()

	server := testServer()
	groups := groupsvc.New(newTestGroupRepository())
	chatEndpoints := &chatEndpoints{
		auth:     authsvc.New(newTestUserRepository(), authority),
		groups:   groups,
		messages: messagesvc.New(&testMessageRepository{}, groups),
	}
	auth := middleware.ValidateJWT(authority)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/groups", server.MakeHTTPHandleFunc(chatEndpoints.Groups, auth))
	mux.HandleFunc("/api/v1/groups/", server.MakeHTTPHandleFunc(chatEndpoints.GroupMembers, auth))
	mux.HandleFunc("/api/v1/messages", server.MakeHTTPHandleFunc(chatEndpoints.Messages, auth))

	return mux
}

func mintToken(t *testing.T, authority *internaljwt.Authority, email string) string {
	t.Helper()
	token, err := authority.IssueToken(internaljwt.User{Id: email, Email: email}, 0)
	if err != nil {
		t.Fatalf("issue token for %s: %v", email, err)
	}
	return token
}

func TestCreateGroupAssignsSequentialIDs(t *testing.T) {
	authority := testAuthority()
	handler := setupChatHandler(t, authority)
	token := mintToken(t, authority, "a@example.com")

	first := doJSONRequest[dto.CreateGroupResponse](t, handler, http.MethodPost, "/api/v1/groups", map[string]interface{}{
		"name":    "alpha",
		"members": []string{"b@example.com", "c@example.com"},
	}, bearerHeaders(token), http.StatusCreated)

	second := doJSONRequest[dto.CreateGroupResponse](t, handler, http.MethodPost, "/api/v1/groups", map[string]interface{}{
		"name":    "beta",
		"members": []string{"b@example.com", "d@example.com"},
	}, bearerHeaders(token), http.StatusCreated)

	if first.GroupID != 1 || second.GroupID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first.GroupID, second.GroupID)
	}

	// The creator is a member even though the request never listed them.
	groups := doJSONRequest[[]dto.GroupResponse](t, handler, http.MethodGet, "/api/v1/groups", nil, bearerHeaders(token), http.StatusOK)
	if len(groups) != 2 {
		t.Fatalf("expected creator to be in 2 groups, got %d", len(groups))
	}

	tokenD := mintToken(t, authority, "d@example.com")
	groupsD := doJSONRequest[[]dto.GroupResponse](t, handler, http.MethodGet, "/api/v1/groups", nil, bearerHeaders(tokenD), http.StatusOK)
	if len(groupsD) != 1 || groupsD[0].Name != "beta" {
		t.Fatalf("expected d@example.com in group beta only, got %+v", groupsD)
	}
}

func TestCreateGroupRequiresTwoMembers(t *testing.T) {
	authority := testAuthority()
	handler := setupChatHandler(t, authority)
	token := mintToken(t, authority, "a@example.com")

	doJSONRequest[api.ApiError](t, handler, http.MethodPost, "/api/v1/groups", map[string]interface{}{
		"name":    "solo",
		"members": []string{"b@example.com"},
	}, bearerHeaders(token), http.StatusBadRequest)

	// Duplicates of the creator do not count towards the minimum.
	doJSONRequest[api.ApiError](t, handler, http.MethodPost, "/api/v1/groups", map[string]interface{}{
		"name":    "mirror",
		"members": []string{"a@example.com", "a@example.com"},
	}, bearerHeaders(token), http.StatusBadRequest)
}

func TestMessageVisibility(t *testing.T) {
	authority := testAuthority()
	handler := setupChatHandler(t, authority)

	tokenA := mintToken(t, authority, "a@example.com")
	tokenB := mintToken(t, authority, "b@example.com")
	tokenC := mintToken(t, authority, "c@example.com")

	group := doJSONRequest[dto.CreateGroupResponse](t, handler, http.MethodPost, "/api/v1/groups", map[string]interface{}{
		"name":    "pair",
		"members": []string{"b@example.com", "c@example.com"},
	}, bearerHeaders(tokenA), http.StatusCreated)

	doJSONRequest[dto.MessageResponse](t, handler, http.MethodPost, "/api/v1/messages", map[string]interface{}{
		"message": "hello everyone",
	}, bearerHeaders(tokenA), http.StatusCreated)

	private := doJSONRequest[dto.MessageResponse](t, handler, http.MethodPost, "/api/v1/messages", map[string]interface{}{
		"message":     "just for b",
		"targetEmail": "b@example.com",
	}, bearerHeaders(tokenA), http.StatusCreated)

	doJSONRequest[dto.MessageResponse](t, handler, http.MethodPost, "/api/v1/messages", map[string]interface{}{
		"message": "group chatter",
		"groupId": group.GroupID,
	}, bearerHeaders(tokenB), http.StatusCreated)

	if private.ReceiverEmail == nil || *private.ReceiverEmail != "b@example.com" {
		t.Fatalf("expected receiver b@example.com, got %+v", private.ReceiverEmail)
	}

	seen := func(token string) map[string]bool {
		messages := doJSONRequest[[]dto.MessageResponse](t, handler, http.MethodGet, "/api/v1/messages", nil, bearerHeaders(token), http.StatusOK)
		out := make(map[string]bool, len(messages))
		for _, message := range messages {
			out[message.Message] = true
		}
		return out
	}

	forB := seen(tokenB)
	if !forB["hello everyone"] || !forB["just for b"] || !forB["group chatter"] {
		t.Fatalf("b@example.com is missing messages: %v", forB)
	}

	forC := seen(tokenC)
	if forC["just for b"] {
		t.Fatal("c@example.com can read a private message addressed to b")
	}
	if !forC["hello everyone"] || !forC["group chatter"] {
		t.Fatalf("c@example.com is missing messages: %v", forC)
	}
}

func TestGroupMembersEndpoint(t *testing.T) {
	authority := testAuthority()
	handler := setupChatHandler(t, authority)
	token := mintToken(t, authority, "a@example.com")

	group := doJSONRequest[dto.CreateGroupResponse](t, handler, http.MethodPost, "/api/v1/groups", map[string]interface{}{
		"name":    "trio",
		"members": []string{"c@example.com", "b@example.com"},
	}, bearerHeaders(token), http.StatusCreated)

	resp := doJSONRequest[dto.GroupMembersResponse](t, handler, http.MethodGet,
		fmt.Sprintf("/api/v1/groups/%d/members", group.GroupID), nil, bearerHeaders(token), http.StatusOK)

	want := []string{"a@example.com", "b@example.com", "c@example.com"}
	if len(resp.Members) != len(want) {
		t.Fatalf("expected %d members, got %v", len(want), resp.Members)
	}
	for i, member := range resp.Members {
		if member != want[i] {
			t.Fatalf("members[%d] = %q, want %q", i, member, want[i])
		}
	}

	doJSONRequest[api.ApiError](t, handler, http.MethodGet, "/api/v1/groups/999/members", nil, bearerHeaders(token), http.StatusNotFound)
	doJSONRequest[api.ApiError](t, handler, http.MethodGet, "/api/v1/groups/not-a-number/members", nil, bearerHeaders(token), http.StatusBadRequest)
}

func TestCreateMessageRejectsConflictingTargets(t *testing.T) {
	authority := testAuthority()
	handler := setupChatHandler(t, authority)
	token := mintToken(t, authority, "a@example.com")

	doJSONRequest[api.ApiError](t, handler, http.MethodPost, "/api/v1/messages", map[string]interface{}{
		"message":     "both",
		"targetEmail": "b@example.com",
		"groupId":     1,
	}, bearerHeaders(token), http.StatusBadRequest)
}
