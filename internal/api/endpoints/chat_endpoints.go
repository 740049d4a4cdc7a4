package endpoints

import (
	"chat-hub-backend/internal/database"
	"chat-hub-backend/internal/dto"
	"chat-hub-backend/internal/hub"
	internaljwt "chat-hub-backend/internal/jwt"
	"chat-hub-backend/internal/model"
	authsvc "chat-hub-backend/internal/service/auth"
	groupsvc "chat-hub-backend/internal/service/group"
	messagesvc "chat-hub-backend/internal/service/message"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
)

type ChatEndpoints interface {
	Groups(http.ResponseWriter, *http.Request) error
	GroupMembers(http.ResponseWriter, *http.Request) error
	Messages(http.ResponseWriter, *http.Request) error
}

type chatEndpoints struct {
	auth      *authsvc.Service
	groups    *groupsvc.Service
	messages  *messagesvc.Service
	publisher *redis.Client
}

func NewChatEndpoints(db *database.Database, authority *internaljwt.Authority, publisher *redis.Client) ChatEndpoints {
	groups := groupsvc.New(groupsvc.NewDynamoRepository(db))
	return &chatEndpoints{
		auth:      authsvc.New(authsvc.NewDynamoRepository(db), authority),
		groups:    groups,
		messages:  messagesvc.New(messagesvc.NewDynamoRepository(db), groups),
		publisher: publisher,
	}
}

func (h *chatEndpoints) Groups(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:  h.handleListGroups,
		http.MethodPost: h.handleCreateGroup,
	})
}

func (h *chatEndpoints) GroupMembers(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleGroupMembers,
	})
}

func (h *chatEndpoints) Messages(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:  h.handleListMessages,
		http.MethodPost: h.handleCreateMessage,
	})
}

func (h *chatEndpoints) handleListGroups(w http.ResponseWriter, r *http.Request) error {
	identity, err := h.auth.IdentityFromAuthorizationHeader(r.Header.Get("Authorization"))
	if err != nil {
		return authServiceError(err)
	}

	groups, err := h.groups.ListUserGroups(r.Context(), identity)
	if err != nil {
		return groupServiceError(err)
	}

	resp := make([]dto.GroupResponse, 0, len(groups))
	for _, group := range groups {
		resp = append(resp, dto.GroupResponse{
			GroupID: group.GroupID,
			Name:    group.Name,
		})
	}

	return WriteJSON(w, http.StatusOK, resp)
}

func (h *chatEndpoints) handleCreateGroup(w http.ResponseWriter, r *http.Request) error {
	identity, err := h.auth.IdentityFromAuthorizationHeader(r.Header.Get("Authorization"))
	if err != nil {
		return authServiceError(err)
	}

	var req dto.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode create group request: %w", err),
		}
	}

	result, err := h.groups.CreateGroup(r.Context(), identity, groupsvc.CreateGroupParams{
		Name:    req.Name,
		Members: req.Members,
	})
	if err != nil {
		return groupServiceError(err)
	}

	// Nudge every member's open sockets to refetch their group list.
	h.publish(r, hub.BridgeEvent{
		SenderEmail: identity,
		Envelope: hub.Envelope{
			Type:    hub.ControlTypeNewGroup,
			Members: result.Members,
		},
	})

	return WriteJSON(w, http.StatusCreated, dto.CreateGroupResponse{
		Message: "Group created",
		GroupID: result.Group.GroupID,
		Name:    result.Group.Name,
	})
}

// handleGroupMembers serves /groups/{id}/members. The id sits between the
// route prefix and the trailing segment.
func (h *chatEndpoints) handleGroupMembers(w http.ResponseWriter, r *http.Request) error {
	if _, err := h.auth.IdentityFromAuthorizationHeader(r.Header.Get("Authorization")); err != nil {
		return authServiceError(err)
	}

	groupID, err := groupIDFromPath(r.URL.Path)
	if err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid group id",
			ErrorLog:   err,
		}
	}

	members, err := h.groups.MembersOf(r.Context(), groupID)
	if err != nil {
		return groupServiceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.GroupMembersResponse{
		GroupID: groupID,
		Members: members,
	})
}

func groupIDFromPath(path string) (int64, error) {
	trimmed := strings.TrimSuffix(path, "/members")
	if trimmed == path {
		return 0, fmt.Errorf("path %s does not end in /members", path)
	}
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return 0, fmt.Errorf("path %s has no group id segment", path)
	}
	return strconv.ParseInt(trimmed[idx+1:], 10, 64)
}

func (h *chatEndpoints) handleListMessages(w http.ResponseWriter, r *http.Request) error {
	identity, err := h.auth.IdentityFromAuthorizationHeader(r.Header.Get("Authorization"))
	if err != nil {
		return authServiceError(err)
	}

	messages, err := h.messages.ListVisibleMessages(r.Context(), identity)
	if err != nil {
		return messageServiceError(err)
	}

	resp := make([]dto.MessageResponse, 0, len(messages))
	for _, message := range messages {
		resp = append(resp, toMessageResponse(message))
	}

	return WriteJSON(w, http.StatusOK, resp)
}

func (h *chatEndpoints) handleCreateMessage(w http.ResponseWriter, r *http.Request) error {
	identity, err := h.auth.IdentityFromAuthorizationHeader(r.Header.Get("Authorization"))
	if err != nil {
		return authServiceError(err)
	}

	var req dto.CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode create message request: %w", err),
		}
	}

	saved, err := h.messages.SaveMessage(r.Context(), identity, messagesvc.SaveMessageParams{
		Message:     req.Message,
		TargetEmail: req.TargetEmail,
		GroupID:     req.GroupID,
	})
	if err != nil {
		return messageServiceError(err)
	}

	h.publish(r, hub.BridgeEvent{
		SenderEmail: saved.SenderEmail,
		Envelope: hub.Envelope{
			Message:     saved.Message,
			TargetEmail: saved.ReceiverEmail,
			GroupID:     saved.GroupID,
		},
	})

	return WriteJSON(w, http.StatusCreated, toMessageResponse(saved))
}

// publish forwards the event to the hub server over Redis. Delivery is best
// effort: the record is already persisted, so a publish failure is logged
// and the request still succeeds.
func (h *chatEndpoints) publish(r *http.Request, event hub.BridgeEvent) {
	if h.publisher == nil {
		return
	}
	if err := hub.Publish(r.Context(), h.publisher, hub.DefaultBridgeChannel, event); err != nil {
		log.Printf("Failed to publish bridge event: %v", err)
	}
}

func toMessageResponse(message model.MessageItem) dto.MessageResponse {
	resp := dto.MessageResponse{
		MessageID:   message.MessageID,
		SenderEmail: message.SenderEmail,
		Message:     message.Message,
		CreatedAt:   message.CreatedAt,
	}
	if message.ReceiverEmail != "" {
		receiver := message.ReceiverEmail
		resp.ReceiverEmail = &receiver
	}
	if message.GroupID != 0 {
		groupID := message.GroupID
		resp.GroupID = &groupID
	}
	return resp
}

func authServiceError(err error) error {
	if err == nil {
		return nil
	}

	svcErr, ok := err.(*authsvc.Error)
	if !ok {
		return internalError(fmt.Errorf("auth service: %w", err))
	}

	switch svcErr.Code {
	case authsvc.ErrorCodeUnauthorized:
		return &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    svcErr.Message,
			ErrorLog:   svcErr,
		}
	default:
		return internalError(svcErr)
	}
}

func groupServiceError(err error) error {
	if err == nil {
		return nil
	}

	svcErr, ok := err.(*groupsvc.Error)
	if !ok {
		return internalError(fmt.Errorf("group service: %w", err))
	}

	switch svcErr.Code {
	case groupsvc.ErrorCodeValidation:
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    svcErr.Message,
			ErrorLog:   svcErr,
		}
	case groupsvc.ErrorCodeNotFound:
		return &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    svcErr.Message,
			ErrorLog:   svcErr,
		}
	default:
		return internalError(svcErr)
	}
}

func messageServiceError(err error) error {
	if err == nil {
		return nil
	}

	svcErr, ok := err.(*messagesvc.Error)
	if !ok {
		return internalError(fmt.Errorf("message service: %w", err))
	}

	switch svcErr.Code {
	case messagesvc.ErrorCodeValidation:
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    svcErr.Message,
			ErrorLog:   svcErr,
		}
	default:
		return internalError(svcErr)
	}
}

func internalError(err error) error {
	return &HTTPError{
		StatusCode: http.StatusInternalServerError,
		Message:    "Internal server error",
		ErrorLog:   err,
	}
}
