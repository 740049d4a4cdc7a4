package group

import (
	"chat-hub-backend/internal/database"
	"chat-hub-backend/internal/model"
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("group repository: not found")

type Repository interface {
	NextGroupID(ctx context.Context) (int64, error)
	CreateGroup(ctx context.Context, group model.GroupItem) error
	PutMembers(ctx context.Context, members []model.GroupMemberItem) error
	GetGroup(ctx context.Context, groupID int64) (model.GroupItem, error)
	ListMembers(ctx context.Context, groupID int64) ([]model.GroupMemberItem, error)
	ListMembershipsForUser(ctx context.Context, email string) ([]model.GroupMemberItem, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

// NextGroupID allocates the next sequential group id with an atomic ADD on
// the counter item.
func (r *DynamoRepository) NextGroupID(ctx context.Context) (int64, error) {
	var counter model.CounterItem
	err := r.db.Client.UpdateItem(
		ctx,
		model.CountersTable,
		map[string]types.AttributeValue{
			"counterId": &types.AttributeValueMemberS{Value: model.GroupIDCounter},
		},
		"ADD #value :one",
		map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		map[string]string{
			"#value": "value",
		},
		&counter,
	)
	if err != nil {
		return 0, err
	}
	return counter.Value, nil
}

func (r *DynamoRepository) CreateGroup(ctx context.Context, group model.GroupItem) error {
	return r.db.Client.PutItem(ctx, model.GroupsTable, group)
}

func (r *DynamoRepository) PutMembers(ctx context.Context, members []model.GroupMemberItem) error {
	if len(members) == 0 {
		return nil
	}

	requests := make([]types.WriteRequest, 0, len(members))
	for _, member := range members {
		av, err := attributevalue.MarshalMap(member)
		if err != nil {
			return err
		}
		requests = append(requests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: av},
		})
	}

	return r.db.Client.BatchWriteItems(ctx, map[string][]types.WriteRequest{
		model.GroupMembersTable: requests,
	})
}

func (r *DynamoRepository) GetGroup(ctx context.Context, groupID int64) (model.GroupItem, error) {
	var group model.GroupItem
	err := r.db.Client.GetItem(
		ctx,
		model.GroupsTable,
		map[string]types.AttributeValue{
			"groupId": &types.AttributeValueMemberN{Value: strconv.FormatInt(groupID, 10)},
		},
		&group,
	)
	if err != nil {
		if isNotFoundError(err) {
			return model.GroupItem{}, ErrNotFound
		}
		return model.GroupItem{}, err
	}

	return group, nil
}

func (r *DynamoRepository) ListMembers(ctx context.Context, groupID int64) ([]model.GroupMemberItem, error) {
	items, err := r.db.Client.QueryAll(
		ctx,
		model.GroupMembersTable,
		aws.String("byGroup"),
		"groupId = :groupId",
		map[string]types.AttributeValue{
			":groupId": &types.AttributeValueMemberN{Value: strconv.FormatInt(groupID, 10)},
		},
	)
	if err != nil {
		return nil, err
	}

	return unmarshalMembers(items)
}

func (r *DynamoRepository) ListMembershipsForUser(ctx context.Context, email string) ([]model.GroupMemberItem, error) {
	items, err := r.db.Client.QueryAll(
		ctx,
		model.GroupMembersTable,
		aws.String("byEmail"),
		"userEmail = :email",
		map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		},
	)
	if err != nil {
		return nil, err
	}

	return unmarshalMembers(items)
}

func unmarshalMembers(items []map[string]types.AttributeValue) ([]model.GroupMemberItem, error) {
	members := make([]model.GroupMemberItem, 0, len(items))
	for _, item := range items {
		var member model.GroupMemberItem
		if err := attributevalue.UnmarshalMap(item, &member); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, nil
}

func isNotFoundError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found")
}
