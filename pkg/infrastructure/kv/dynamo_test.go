package kv

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo keeps items in memory and records transaction sizes
type fakeDynamo struct {
	mu           sync.Mutex
	items        map[string]string
	transactions []int
	failWrites   bool
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]string)}
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := in.Key["pk"].(*dynamodbtypes.AttributeValueMemberS).Value
	value, ok := f.items[key]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	item, err := attributevalue.MarshalMap(dynamoItem{Key: key, Value: value})
	if err != nil {
		return nil, err
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWrites {
		return nil, errors.New("throttled")
	}
	var item dynamoItem
	if err := attributevalue.UnmarshalMap(in.Item, &item); err != nil {
		return nil, err
	}
	f.items[item.Key] = item.Value
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWrites {
		return nil, errors.New("transaction cancelled")
	}
	staged := make(map[string]string)
	for _, write := range in.TransactItems {
		var item dynamoItem
		if err := attributevalue.UnmarshalMap(write.Put.Item, &item); err != nil {
			return nil, err
		}
		staged[item.Key] = item.Value
	}
	for k, v := range staged {
		f.items[k] = v
	}
	f.transactions = append(f.transactions, len(in.TransactItems))
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func TestDynamo(t *testing.T) {
	fake := newFakeDynamo()
	store := NewDynamo(fake, "timber")
	exerciseStore(t, store)

	assert.Equal(t, []int{2}, fake.transactions)
}

func TestDynamo_FailedTransactionWritesNothing(t *testing.T) {
	fake := newFakeDynamo()
	fake.failWrites = true
	store := NewDynamo(fake, "timber")

	err := store.SetMany(context.Background(), map[string]string{"a": "1", "b": "2"})
	require.Error(t, err)
	assert.Empty(t, fake.items)
}

func TestDynamo_RequiresClient(t *testing.T) {
	store := NewDynamo(nil, "timber")
	_, _, err := store.Get(context.Background(), "a")
	assert.ErrorContains(t, err, "client not initialized")
}

func TestDynamo_TransactionLimit(t *testing.T) {
	entries := make(map[string]string)
	for i := 0; i <= maxTransactItems; i++ {
		entries[string(rune('a'+i%26))+string(rune('A'+i/26))] = "v"
	}
	store := NewDynamo(newFakeDynamo(), "timber")
	err := store.SetMany(context.Background(), entries)
	assert.ErrorContains(t, err, "limit is 100")
}
