package group

import (
	"chat-hub-backend/internal/model"
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

// Service owns group records and membership rows. Its MembersOf query is
// the backing store of the hub's group membership resolver: the hub asks at
// routing time, nothing is cached, so a membership change takes effect on
// the very next message.
type Service struct {
	repo Repository
	now  func() time.Time
}

func New(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// CreateGroup writes the group record and one membership row per member.
// The creator is always a member, on top of the two-member minimum.
func (s *Service) CreateGroup(ctx context.Context, creatorEmail string, params CreateGroupParams) (GroupResult, error) {
	creator := normalizeEmail(creatorEmail)
	name := strings.TrimSpace(params.Name)

	if creator == "" || name == "" {
		return GroupResult{}, newError(ErrorCodeValidation, "missing required fields", nil)
	}
	members := normalizeMembers(params.Members)
	if len(members) < 2 {
		return GroupResult{}, newError(ErrorCodeValidation, "a group needs at least two other members", nil)
	}

	all := appendUnique(members, creator)
	sort.Strings(all)

	groupID, err := s.repo.NextGroupID(ctx)
	if err != nil {
		return GroupResult{}, newError(ErrorCodeInternal, "failed to allocate group id", err)
	}

	now := s.now().UTC().Format(time.RFC3339)
	group := model.GroupItem{
		GroupID:   groupID,
		Name:      name,
		CreatedBy: creator,
		CreatedAt: now,
	}
	if err := s.repo.CreateGroup(ctx, group); err != nil {
		return GroupResult{}, newError(ErrorCodeInternal, "failed to create group", err)
	}

	rows := make([]model.GroupMemberItem, 0, len(all))
	for _, email := range all {
		rows = append(rows, model.GroupMemberItem{
			PK:        model.GroupMemberPK(groupID, email),
			GroupID:   groupID,
			UserEmail: email,
			AddedAt:   now,
		})
	}
	if err := s.repo.PutMembers(ctx, rows); err != nil {
		return GroupResult{}, newError(ErrorCodeInternal, "failed to save group members", err)
	}

	return GroupResult{
		Group:   group,
		Members: all,
	}, nil
}

// ListUserGroups returns every group the user is a member of.
func (s *Service) ListUserGroups(ctx context.Context, email string) ([]model.GroupItem, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return nil, newError(ErrorCodeValidation, "missing email", nil)
	}

	memberships, err := s.repo.ListMembershipsForUser(ctx, normalized)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list memberships", err)
	}

	groups := make([]model.GroupItem, 0, len(memberships))
	for _, membership := range memberships {
		group, err := s.repo.GetGroup(ctx, membership.GroupID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, newError(ErrorCodeInternal, "failed to fetch group", err)
		}
		groups = append(groups, group)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].GroupID < groups[j].GroupID
	})
	return groups, nil
}

// MembersOf satisfies the hub's GroupResolver contract. An unknown group is
// an error, not an empty set, so the router can tell "group with no reach"
// apart from "no such group".
func (s *Service) MembersOf(ctx context.Context, groupID int64) ([]string, error) {
	rows, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, newError(ErrorCodeNotFound, "group not found", ErrNotFound)
	}

	members := make([]string, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.UserEmail)
	}
	sort.Strings(members)
	return members, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeMembers(members []string) []string {
	out := make([]string, 0, len(members))
	for _, member := range members {
		normalized := normalizeEmail(member)
		if normalized == "" {
			continue
		}
		out = appendUnique(out, normalized)
	}
	return out
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
