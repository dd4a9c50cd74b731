package service

import (
	"context"
	"errors"
	"testing"

	"storefront/storefront-service/internal/app/storefront/entity"
	"storefront/storefront-service/internal/app/storefront/repository"
	"storefront/storefront-service/internal/app/storefront/repository/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleState() entity.CartState {
	return entity.CartState{
		Lines: []entity.CartLine{
			{ProductID: 1, Title: "Headphones", Image: "h.png", Price: decimal.RequireFromString("19.99"), Quantity: 2},
			{ProductID: 5, Title: "Cable", Image: "c.png", Price: decimal.RequireFromString("0.10"), Quantity: 3},
		},
		TotalQuantity: 5,
		TotalPrice:    decimal.RequireFromString("40.28"),
	}
}

func TestCartStore_RoundTrip(t *testing.T) {
	repo := new(mocks.MockSlotRepository)
	store := NewCartStore(repo)
	ctx := context.Background()

	var saved []byte
	repo.On("Set", ctx, "cart:s1", mock.AnythingOfType("[]uint8")).
		Run(func(args mock.Arguments) { saved = args.Get(2).([]byte) }).
		Return(nil)

	require.NoError(t, store.Save(ctx, "s1", sampleState()))
	assert.Contains(t, string(saved), `"version":1`)

	repo.On("Get", ctx, "cart:s1").Return(saved, nil)
	loaded, err := store.Load(ctx, "s1")

	require.NoError(t, err)
	require.Len(t, loaded.Lines, 2)
	assert.Equal(t, 1, loaded.Lines[0].ProductID)
	assert.Equal(t, 5, loaded.Lines[1].ProductID)
	assert.Equal(t, 5, loaded.TotalQuantity)
	assert.True(t, loaded.TotalPrice.Equal(decimal.RequireFromString("40.28")))
	assert.True(t, loaded.Lines[0].Price.Equal(decimal.RequireFromString("19.99")))
	repo.AssertExpectations(t)
}

func TestCartStore_RoundTripEmpty(t *testing.T) {
	repo := new(mocks.MockSlotRepository)
	store := NewCartStore(repo)
	ctx := context.Background()

	var saved []byte
	repo.On("Set", ctx, "cart:s1", mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(2).([]byte) }).
		Return(nil)
	require.NoError(t, store.Save(ctx, "s1", entity.EmptyCart()))

	repo.On("Get", ctx, "cart:s1").Return(saved, nil)
	loaded, err := store.Load(ctx, "s1")

	require.NoError(t, err)
	assert.NotNil(t, loaded.Lines)
	assert.True(t, loaded.IsEmpty())
	assert.True(t, loaded.TotalPrice.IsZero())
}

func TestCartStore_LoadFallsBackToEmpty(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{name: "missing slot", err: repository.ErrSlotNotFound},
		{name: "not json", data: []byte("{not json")},
		{name: "wrong version", data: []byte(`{"version":2,"items":[],"total_quantity":0,"total_price":"0"}`)},
		{name: "no version", data: []byte(`{"items":[],"total_quantity":0,"total_price":"0"}`)},
		{name: "totals drift", data: []byte(`{"version":1,"items":[{"product_id":1,"title":"x","image":"","price":"10","quantity":2}],"total_quantity":2,"total_price":"25"}`)},
		{name: "zero quantity line", data: []byte(`{"version":1,"items":[{"product_id":1,"title":"x","image":"","price":"10","quantity":0}],"total_quantity":0,"total_price":"0"}`)},
		{name: "non-positive price", data: []byte(`{"version":1,"items":[{"product_id":3,"title":"x","image":"","price":"-5","quantity":1}],"total_quantity":1,"total_price":"-5"}`)},
		{name: "wrong shape", data: []byte(`[1,2,3]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockSlotRepository)
			store := NewCartStore(repo)
			ctx := context.Background()

			if tt.err != nil {
				repo.On("Get", ctx, "cart:s1").Return(nil, tt.err)
			} else {
				repo.On("Get", ctx, "cart:s1").Return(tt.data, nil)
			}

			loaded, err := store.Load(ctx, "s1")

			require.NoError(t, err)
			assert.Equal(t, entity.EmptyCart(), loaded)
		})
	}
}

func TestCartStore_LoadStorageError(t *testing.T) {
	repo := new(mocks.MockSlotRepository)
	store := NewCartStore(repo)
	ctx := context.Background()
	repo.On("Get", ctx, "cart:s1").Return(nil, errors.New("connection refused"))

	_, err := store.Load(ctx, "s1")

	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCartStore_SaveError(t *testing.T) {
	repo := new(mocks.MockSlotRepository)
	store := NewCartStore(repo)
	ctx := context.Background()
	repo.On("Set", ctx, "cart:s1", mock.Anything).Return(errors.New("disk full"))

	err := store.Save(ctx, "s1", sampleState())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save cart")
}
