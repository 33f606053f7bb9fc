package kv

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// maxTransactItems is DynamoDB's limit on items per TransactWriteItems call
const maxTransactItems = 100

// DynamoAPI is the subset of the DynamoDB client used by Dynamo
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// dynamoItem is the table row layout: partition key "pk", string attribute "value"
type dynamoItem struct {
	Key   string `dynamodbav:"pk"`
	Value string `dynamodbav:"value"`
}

// Dynamo is a Store backed by a DynamoDB table keyed on "pk"
type Dynamo struct {
	client    DynamoAPI
	tableName string
}

// NewDynamo creates a DynamoDB-backed store
func NewDynamo(client DynamoAPI, tableName string) *Dynamo {
	return &Dynamo{client: client, tableName: tableName}
}

// Verify interface compliance
var _ Store = (*Dynamo)(nil)

// Get returns the value stored under key
func (d *Dynamo) Get(ctx context.Context, key string) (string, bool, error) {
	if d.client == nil {
		return "", false, fmt.Errorf("DynamoDB client not initialized")
	}

	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]dynamodbtypes.AttributeValue{
			"pk": &dynamodbtypes.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	if result.Item == nil {
		return "", false, nil
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return "", false, fmt.Errorf("failed to unmarshal key %s: %w", key, err)
	}
	return item.Value, true, nil
}

// Set stores value under key
func (d *Dynamo) Set(ctx context.Context, key, value string) error {
	if d.client == nil {
		return fmt.Errorf("DynamoDB client not initialized")
	}

	item, err := attributevalue.MarshalMap(dynamoItem{Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("failed to marshal key %s: %w", key, err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put key %s: %w", key, err)
	}
	return nil
}

// SetMany writes all entries in one TransactWriteItems call
func (d *Dynamo) SetMany(ctx context.Context, entries map[string]string) error {
	if d.client == nil {
		return fmt.Errorf("DynamoDB client not initialized")
	}
	if len(entries) == 0 {
		return nil
	}
	if len(entries) > maxTransactItems {
		return fmt.Errorf("cannot write %d keys atomically, limit is %d", len(entries), maxTransactItems)
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	items := make([]dynamodbtypes.TransactWriteItem, 0, len(keys))
	for _, key := range keys {
		item, err := attributevalue.MarshalMap(dynamoItem{Key: key, Value: entries[key]})
		if err != nil {
			return fmt.Errorf("failed to marshal key %s: %w", key, err)
		}
		items = append(items, dynamodbtypes.TransactWriteItem{
			Put: &dynamodbtypes.Put{
				TableName: aws.String(d.tableName),
				Item:      item,
			},
		})
	}

	_, err := d.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		return fmt.Errorf("failed to write %d keys: %w", len(items), err)
	}
	return nil
}

// Close is a no-op; the AWS client has no resources to release
func (d *Dynamo) Close() error {
	return nil
}
