package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/storefront-checkout/internal/aws"
)

// maxTransactItems is the DynamoDB limit on actions per TransactWriteItems
// call, and so the most lines one order can hold.
const maxTransactItems = 100

// MaxItems is the most distinct lines an order can hold.
const MaxItems = maxTransactItems

var (
	// ErrStatusMismatch is returned by UpdateStatus when the current status
	// is not the expected one.
	ErrStatusMismatch = errors.New("status mismatch/conditional failed")
	// ErrOrderExists is returned by Create when the order id is taken.
	ErrOrderExists = errors.New("order already exists")
	// ErrTooManyItems is returned by CreateItems when the lines do not fit
	// in one transaction.
	ErrTooManyItems = errors.New("too many order items")
)

// Store encapsulates operations on the orders and order_items tables.
type Store struct {
	client         aws.DynamoDBAPI
	tableName      string
	itemsTableName string
	nowFunc        func() time.Time
}

// NewStore creates a new orders Store.
func NewStore(client aws.DynamoDBAPI, tableName, itemsTableName string) *Store {
	return &Store{
		client:         client,
		tableName:      tableName,
		itemsTableName: itemsTableName,
		nowFunc:        time.Now,
	}
}

// Create inserts the order row. CreatedAt/UpdatedAt are stamped when empty.
// Returns ErrOrderExists if an order with the same id is already stored.
func (s *Store) Create(ctx context.Context, order Order) (*Order, error) {
	now := s.nowFunc()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	item, err := attributevalue.MarshalMap(order)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	})
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return nil, ErrOrderExists
		}
		return nil, fmt.Errorf("put item: %w", err)
	}
	return &order, nil
}

// CreateItems writes all order lines in one TransactWriteItems call, so
// either every line is stored or none is. More than maxTransactItems lines
// is rejected with ErrTooManyItems before anything is written.
func (s *Store) CreateItems(ctx context.Context, items []OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	if len(items) > maxTransactItems {
		return fmt.Errorf("%d lines: %w", len(items), ErrTooManyItems)
	}

	transactItems := make([]types.TransactWriteItem, 0, len(items))
	for _, it := range items {
		m, err := attributevalue.MarshalMap(it)
		if err != nil {
			return fmt.Errorf("marshal order item %s: %w", it.ProductID, err)
		}
		transactItems = append(transactItems, types.TransactWriteItem{
			Put: &types.Put{
				TableName: &s.itemsTableName,
				Item:      m,
			},
		})
	}
	_, err := s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return fmt.Errorf("transaction canceled writing order items: %w", err)
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

// Get fetches an order by order_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// UpdateStatus conditionally updates the order status from expected -> newStatus.
// Returns nil on success, ErrStatusMismatch if condition failed.
func (s *Store) UpdateStatus(ctx context.Context, orderID, expectedStatus, newStatus string) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:         awsString("SET #s = :new, updated_at = :ua"),
		ConditionExpression:      awsString("#s = :expected"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":      &types.AttributeValueMemberS{Value: newStatus},
			":expected": &types.AttributeValueMemberS{Value: expectedStatus},
			":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrStatusMismatch
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
