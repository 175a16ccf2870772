package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIfNotExists_Get_MarkDone(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "checkout_idempotency", 48*time.Hour)
	ctx := context.Background()

	created, err := s.CreateIfNotExists(ctx, "key-1", "user-1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.CreateIfNotExists(ctx, "key-1", "user-1")
	require.NoError(t, err)
	assert.False(t, created, "duplicate create must report existing record")

	rec, err := s.Get(ctx, "key-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, StatusInProgress, rec.Status)
	assert.Equal(t, "user-1", rec.UserID)
	assert.Empty(t, rec.OrderID)

	require.NoError(t, s.MarkDone(ctx, "key-1", "order-123"))
	rec, err = s.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, rec.Status)
	assert.Equal(t, "order-123", rec.OrderID)
}

func TestGet_Missing(t *testing.T) {
	s := NewStore(newSimpleMock(), "checkout_idempotency", time.Hour)
	rec, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestExpiresAtUsesTTLWindow(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "checkout_idempotency", 2*time.Hour)
	fixed := time.Unix(1_700_000_000, 0)
	s.nowFunc = func() time.Time { return fixed }

	_, err := s.CreateIfNotExists(context.Background(), "k", "u")
	require.NoError(t, err)
	rec, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(2*time.Hour).Unix(), rec.ExpiresAt)
}

func TestMarkFailed_ThenReclaim(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "checkout_idempotency", 48*time.Hour)
	ctx := context.Background()

	_, err := s.CreateIfNotExists(ctx, "key-2", "user-1")
	require.NoError(t, err)

	ok, err := s.Reclaim(ctx, "key-2")
	require.NoError(t, err)
	assert.False(t, ok, "in-progress attempt cannot be reclaimed")

	require.NoError(t, s.MarkFailed(ctx, "key-2", "insufficient stock"))
	item := mock.table["key-2"]
	assert.Equal(t, StatusFailed, item["status"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "insufficient stock", item["note"].(*types.AttributeValueMemberS).Value)

	ok, err = s.Reclaim(ctx, "key-2")
	require.NoError(t, err)
	assert.True(t, ok)

	rec, err := s.Get(ctx, "key-2")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, rec.Status)
	assert.Empty(t, rec.Note)
}

func TestReclaim_DoneIsFinal(t *testing.T) {
	s := NewStore(newSimpleMock(), "checkout_idempotency", time.Hour)
	ctx := context.Background()
	_, err := s.CreateIfNotExists(ctx, "k", "u")
	require.NoError(t, err)
	require.NoError(t, s.MarkDone(ctx, "k", "order-1"))

	ok, err := s.Reclaim(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
