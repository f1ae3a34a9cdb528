package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/apula/responder-api/internal/domain"
	"github.com/apula/responder-api/internal/pkg/id"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TokenRepo provides typed DynamoDB operations for the fcm_tokens table.
type TokenRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTokenRepo(client *dynamodb.Client, tableName string) *TokenRepo {
	return &TokenRepo{client: client, tableName: tableName}
}

// ListByEmails returns every token registered to any of the given emails,
// one email-index query per email. Emails with no registered token simply
// contribute nothing.
func (r *TokenRepo) ListByEmails(ctx context.Context, emails []string) ([]domain.DeviceToken, error) {
	var tokens []domain.DeviceToken
	for _, email := range emails {
		batch, err := r.ListByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("query tokens for %s: %w", email, err)
		}
		tokens = append(tokens, batch...)
	}
	return tokens, nil
}

// ListByEmail returns every token registered to one email via the email-index GSI.
func (r *TokenRepo) ListByEmail(ctx context.Context, email string) ([]domain.DeviceToken, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("email-index"),
		KeyConditionExpression: aws.String("email = :e"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e": &types.AttributeValueMemberS{Value: email},
		},
	})
	if err != nil {
		return nil, err
	}
	var tokens []domain.DeviceToken
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// Upsert registers a token for an email. Re-registering an existing
// (email, token) pair refreshes its record instead of duplicating it.
func (r *TokenRepo) Upsert(ctx context.Context, email, token, platform string) (*domain.DeviceToken, error) {
	existing, err := r.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	for i := range existing {
		if existing[i].Token != token {
			continue
		}
		ue, err := buildUpdateExpr(map[string]interface{}{
			fieldPlatform:  platform,
			fieldUpdatedAt: now.Format(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}
		_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(r.tableName),
			Key:                       strKey("token_id", existing[i].TokenID),
			UpdateExpression:          aws.String(ue.Expr),
			ExpressionAttributeNames:  ue.Names,
			ExpressionAttributeValues: ue.Values,
		})
		if err != nil {
			return nil, err
		}
		existing[i].Platform = platform
		existing[i].UpdatedAt = now
		return &existing[i], nil
	}

	t := &domain.DeviceToken{
		TokenID:   id.New(),
		Email:     email,
		Token:     token,
		Platform:  platform,
		UpdatedAt: now,
	}
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return nil, fmt.Errorf("marshal token: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
