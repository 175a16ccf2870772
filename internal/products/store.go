package products

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/storefront-checkout/internal/aws"
)

// ErrInsufficientStock is returned by DecrementStock when the conditional
// update finds fewer units than requested (or no product at all).
var ErrInsufficientStock = errors.New("insufficient stock")

// Store encapsulates operations on the products table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
}

// NewStore creates a new products Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
	}
}

// Get fetches a product by id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, productID string) (*Product, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            productKey(productID),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var p Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	return &p, nil
}

// Put writes a product, replacing any existing record.
func (s *Store) Put(ctx context.Context, p Product) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// DecrementStock subtracts quantity from the product stock only if at least
// quantity units remain, and returns the stock after the write.
// Returns ErrInsufficientStock if the condition failed.
func (s *Store) DecrementStock(ctx context.Context, productID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("decrement stock: quantity must be positive, got %d", quantity)
	}
	input := &dyn.UpdateItemInput{
		TableName:           &s.tableName,
		Key:                 productKey(productID),
		UpdateExpression:    awsString("SET stock = stock - :qty"),
		ConditionExpression: awsString("attribute_exists(id) AND stock >= :qty"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":qty": &types.AttributeValueMemberN{Value: strconv.Itoa(quantity)},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	}

	out, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return 0, ErrInsufficientStock
		}
		return 0, fmt.Errorf("update item (decrement stock): %w", err)
	}
	return stockFromAttributes(out.Attributes)
}

// RestoreStock adds quantity back to the product stock. Used to compensate a
// decrement when a checkout aborts.
func (s *Store) RestoreStock(ctx context.Context, productID string, quantity int) error {
	input := &dyn.UpdateItemInput{
		TableName:           &s.tableName,
		Key:                 productKey(productID),
		UpdateExpression:    awsString("SET stock = stock + :qty"),
		ConditionExpression: awsString("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":qty": &types.AttributeValueMemberN{Value: strconv.Itoa(quantity)},
		},
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("update item (restore stock): %w", err)
	}
	return nil
}

func stockFromAttributes(attrs map[string]types.AttributeValue) (int, error) {
	var out struct {
		Stock int `dynamodbav:"stock"`
	}
	if err := attributevalue.UnmarshalMap(attrs, &out); err != nil {
		return 0, fmt.Errorf("unmarshal stock: %w", err)
	}
	return out.Stock, nil
}

func productKey(productID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: productID},
	}
}

func awsString(s string) *string { return &s }

func awsBool(b bool) *bool { return &b }
