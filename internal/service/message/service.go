package message

import (
	"chat-hub-backend/internal/model"
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GroupLister answers which groups a user belongs to. Satisfied by the
// group service; injected so message visibility is testable without it.
type GroupLister interface {
	ListUserGroups(ctx context.Context, email string) ([]model.GroupItem, error)
}

// Service is the message persistence collaborator. The hub never calls it:
// persistence happens on the REST path, before or after routing, keeping
// storage latency out of the hub's hot path.
type Service struct {
	repo   Repository
	groups GroupLister
	now    func() time.Time
}

func New(repo Repository, groups GroupLister) *Service {
	return &Service{
		repo:   repo,
		groups: groups,
		now:    time.Now,
	}
}

func (s *Service) SaveMessage(ctx context.Context, sender string, params SaveMessageParams) (model.MessageItem, error) {
	senderEmail := normalizeEmail(sender)
	body := strings.TrimSpace(params.Message)

	if senderEmail == "" || body == "" {
		return model.MessageItem{}, newError(ErrorCodeValidation, "missing required fields", nil)
	}
	if params.TargetEmail != "" && params.GroupID != 0 {
		return model.MessageItem{}, newError(ErrorCodeValidation, "a message targets either a user or a group, not both", nil)
	}

	item := model.MessageItem{
		MessageID:     uuid.NewString(),
		SenderEmail:   senderEmail,
		ReceiverEmail: normalizeEmail(params.TargetEmail),
		GroupID:       params.GroupID,
		Message:       body,
		CreatedAt:     s.now().UTC().Format(time.RFC3339Nano),
	}

	if err := s.repo.SaveMessage(ctx, item); err != nil {
		return model.MessageItem{}, newError(ErrorCodeInternal, "failed to save message", err)
	}

	return item, nil
}

// ListVisibleMessages returns the history the user is allowed to see:
// broadcasts, private traffic they sent or received, and messages of
// groups they are currently a member of.
func (s *Service) ListVisibleMessages(ctx context.Context, email string) ([]model.MessageItem, error) {
	viewer := normalizeEmail(email)
	if viewer == "" {
		return nil, newError(ErrorCodeValidation, "missing email", nil)
	}

	groups, err := s.groups.ListUserGroups(ctx, viewer)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to resolve group memberships", err)
	}
	memberOf := make(map[int64]struct{}, len(groups))
	for _, g := range groups {
		memberOf[g.GroupID] = struct{}{}
	}

	all, err := s.repo.ListMessages(ctx)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list messages", err)
	}

	visible := make([]model.MessageItem, 0, len(all))
	for _, msg := range all {
		if msg.GroupID != 0 {
			if _, ok := memberOf[msg.GroupID]; ok {
				visible = append(visible, msg)
			}
			continue
		}
		if msg.ReceiverEmail == "" || msg.ReceiverEmail == viewer || msg.SenderEmail == viewer {
			visible = append(visible, msg)
		}
	}

	sort.Slice(visible, func(i, j int) bool {
		if visible[i].CreatedAt == visible[j].CreatedAt {
			return visible[i].MessageID < visible[j].MessageID
		}
		return visible[i].CreatedAt < visible[j].CreatedAt
	})
	return visible, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
