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

const requestTTL = time.Hour

// CreateRequest persists a new request row in processing state.
func (s *Store) CreateRequest(ctx context.Context, rec *models.RequestRecord) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	rec.TTL = now.Add(requestTTL).Unix()

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshaling request %s: %w", rec.RequestID, err)
	}
	_, err = s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tables.Requests),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("storing request %s: %w", rec.RequestID, err)
	}
	return nil
}

// GetRequest loads a request row. Returns (nil, nil) when the row does not
// exist or has expired.
func (s *Store) GetRequest(ctx context.Context, requestID string) (*models.RequestRecord, error) {
	var rec models.RequestRecord
	found, err := s.getOne(ctx, s.tables.Requests, map[string]any{"request_id": requestID}, &rec)
	if err != nil {
		return nil, fmt.Errorf("loading request %s: %w", requestID, err)
	}
	if !found {
		return nil, nil
	}
	return &rec, nil
}

// CompleteRequest transitions a request to complete with its serialized
// assessment payload.
func (s *Store) CompleteRequest(ctx context.Context, requestID, assessmentJSON string, executionTime time.Duration) error {
	update := expression.
		Set(expression.Name("status"), expression.Value(string(models.RequestComplete))).
		Set(expression.Name("assessment"), expression.Value(assessmentJSON)).
		Set(expression.Name("execution_time_ms"), expression.Value(executionTime.Milliseconds())).
		Set(expression.Name("updated_at"), expression.Value(time.Now().UTC().Format(time.RFC3339Nano)))
	return s.updateRequest(ctx, requestID, update)
}

// FailRequest transitions a request to error with a code and message.
func (s *Store) FailRequest(ctx context.Context, requestID, errorCode, message string) error {
	update := expression.
		Set(expression.Name("status"), expression.Value(string(models.RequestError))).
		Set(expression.Name("error_code"), expression.Value(errorCode)).
		Set(expression.Name("error"), expression.Value(message)).
		Set(expression.Name("updated_at"), expression.Value(time.Now().UTC().Format(time.RFC3339Nano)))
	return s.updateRequest(ctx, requestID, update)
}

func (s *Store) updateRequest(ctx context.Context, requestID string, update expression.UpdateBuilder) error {
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return fmt.Errorf("building update for request %s: %w", requestID, err)
	}
	key, err := attributevalue.MarshalMap(map[string]any{"request_id": requestID})
	if err != nil {
		return err
	}
	_, err = s.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tables.Requests),
		Key:                       key,
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return fmt.Errorf("updating request %s: %w", requestID, err)
	}
	return nil
}
