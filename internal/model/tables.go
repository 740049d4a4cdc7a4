package model

import (
	"fmt"
	"strconv"
)

const (
	UsersTable        = "Users"
	GroupsTable       = "Groups"
	GroupMembersTable = "GroupMembers"
	MessagesTable     = "Messages"
	CountersTable     = "Counters"
)

type UserItem struct {
	UserID       string `dynamodbav:"userId"`
	Email        string `dynamodbav:"email"`
	Name         string `dynamodbav:"name"`
	PasswordHash string `dynamodbav:"passwordHash"`
	AvatarURL    string `dynamodbav:"avatarUrl,omitempty"`
	CreatedAt    string `dynamodbav:"createdAt"`
}

type GroupItem struct {
	GroupID   int64  `dynamodbav:"groupId"`
	Name      string `dynamodbav:"name"`
	CreatedBy string `dynamodbav:"createdBy"`
	CreatedAt string `dynamodbav:"createdAt"`
}

// GroupMemberItem is one membership row. PK is groupId#email so a member
// can be written idempotently; the byEmail GSI serves "groups of a user".
type GroupMemberItem struct {
	PK        string `dynamodbav:"pk"`
	GroupID   int64  `dynamodbav:"groupId"`
	UserEmail string `dynamodbav:"userEmail"`
	AddedAt   string `dynamodbav:"addedAt"`
}

type MessageItem struct {
	MessageID     string `dynamodbav:"messageId"`
	SenderEmail   string `dynamodbav:"senderEmail"`
	ReceiverEmail string `dynamodbav:"receiverEmail,omitempty"`
	GroupID       int64  `dynamodbav:"groupId,omitempty"`
	Message       string `dynamodbav:"message"`
	CreatedAt     string `dynamodbav:"createdAt"`
}

// CounterItem backs sequential id allocation (group ids) via an atomic ADD
// update, standing in for the relational auto-increment the wire format
// assumes.
type CounterItem struct {
	CounterID string `dynamodbav:"counterId"`
	Value     int64  `dynamodbav:"value"`
}

const GroupIDCounter = "groupId"

func GroupMemberPK(groupID int64, email string) string {
	return fmt.Sprintf("%s#%s", strconv.FormatInt(groupID, 10), email)
}
