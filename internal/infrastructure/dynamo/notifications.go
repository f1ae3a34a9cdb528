package dynamo

import (
	"context"
	"fmt"

	"github.com/apula/responder-api/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// NotificationRepo provides typed DynamoDB operations for the notifications table.
type NotificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNotificationRepo(client *dynamodb.Client, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

func (r *NotificationRepo) Put(ctx context.Context, n *domain.Notification) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByEmail returns the most recent notifications for one responder,
// newest first, via the email-created_at-index GSI.
func (r *NotificationRepo) ListByEmail(ctx context.Context, email string, limit int32) ([]domain.Notification, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("email-created_at-index"),
		KeyConditionExpression: aws.String("email = :e"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e": &types.AttributeValueMemberS{Value: email},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	var notifications []domain.Notification
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}
