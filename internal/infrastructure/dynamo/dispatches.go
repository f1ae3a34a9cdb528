package dynamo

import (
	"context"
	"fmt"

	"github.com/apula/responder-api/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DispatchRepo provides typed DynamoDB operations for the dispatches table.
// Records are write-once; there is no update path.
type DispatchRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewDispatchRepo(client *dynamodb.Client, tableName string) *DispatchRepo {
	return &DispatchRepo{client: client, tableName: tableName}
}

func (r *DispatchRepo) Put(ctx context.Context, ev *domain.DispatchEvent) error {
	item, err := attributevalue.MarshalMap(ev)
	if err != nil {
		return fmt.Errorf("marshal dispatch: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *DispatchRepo) Get(ctx context.Context, dispatchID string) (*domain.DispatchEvent, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("dispatch_id", dispatchID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("dispatch not found: %w", domain.ErrNotFound)
	}
	var ev domain.DispatchEvent
	if err := attributevalue.UnmarshalMap(out.Item, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
