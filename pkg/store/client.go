// Package store is the read-only data access layer over the operational
// DynamoDB tables, plus the writable request and session stores. Operational
// accessors are pinned to a primary key or a named secondary index; nothing
// in the hot path scans.
package store

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/skyops/irops/pkg/config"
)

// Index names assumed present on the operational tables. The orchestrator
// never creates or alters them.
const (
	indexFlightNumberDate = "flight-number-date-index"
	indexFlightID         = "flight-id-index"
	indexAircraftReg      = "aircraft-registration-index"
	indexWorkOrderShift   = "workorder-shift-index"
	indexLocationStatus   = "location-status-index"
	indexBookingID        = "booking-id-index"
	indexEliteTier        = "elite-tier-index"
)

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Store wraps the shared DynamoDB client. One instance per process, shared
// across concurrent orchestrations; it holds no mutable state.
type Store struct {
	db     DynamoAPI
	tables config.Tables
	logger *slog.Logger
}

func New(db DynamoAPI, tables config.Tables, logger *slog.Logger) *Store {
	return &Store{db: db, tables: tables, logger: logger.With("component", "store")}
}

// getOne fetches a single item by primary key. A missing item reports
// found=false with a nil error so callers can shape their own not_found.
func (s *Store) getOne(ctx context.Context, table string, key map[string]any, out any) (bool, error) {
	av, err := attributevalue.MarshalMap(key)
	if err != nil {
		return false, err
	}
	resp, err := s.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       av,
	})
	if err != nil {
		return false, err
	}
	if len(resp.Item) == 0 {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(resp.Item, out); err != nil {
		return false, err
	}
	return true, nil
}

// queryIndex runs a key-condition query against a named index (or the table
// primary key when index is empty) and unmarshals all pages' worth of the
// first page into out, which must be a pointer to a slice.
func (s *Store) queryIndex(ctx context.Context, table, index string, keyCond expression.KeyConditionBuilder, descending bool, limit int32, out any) error {
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return err
	}
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if index != "" {
		input.IndexName = aws.String(index)
	}
	if descending {
		input.ScanIndexForward = aws.Bool(false)
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}
	resp, err := s.db.Query(ctx, input)
	if err != nil {
		return err
	}
	return attributevalue.UnmarshalListOfMaps(resp.Items, out)
}
