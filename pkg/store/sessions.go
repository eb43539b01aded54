package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/skyops/irops/pkg/models"
)

const sessionTTL = 30 * 24 * time.Hour

// AppendInteraction records one interaction at the current timestamp.
func (s *Store) AppendInteraction(ctx context.Context, ia *models.SessionInteraction) error {
	now := time.Now().UTC()
	if ia.Timestamp == 0 {
		ia.Timestamp = now.UnixMilli()
	}
	ia.TTL = now.Add(sessionTTL).Unix()

	item, err := attributevalue.MarshalMap(ia)
	if err != nil {
		return fmt.Errorf("marshaling interaction for session %s: %w", ia.SessionID, err)
	}
	_, err = s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tables.Sessions),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("appending to session %s: %w", ia.SessionID, err)
	}
	return nil
}

// RecentInteractions returns a session's interactions, newest first.
func (s *Store) RecentInteractions(ctx context.Context, sessionID string, limit int) ([]models.SessionInteraction, error) {
	keyCond := expression.Key("session_id").Equal(expression.Value(sessionID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, err
	}
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tables.Sessions),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}
	resp, err := s.db.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("querying session %s: %w", sessionID, err)
	}
	var interactions []models.SessionInteraction
	if err := attributevalue.UnmarshalListOfMaps(resp.Items, &interactions); err != nil {
		return nil, err
	}
	return interactions, nil
}
