package cart

import (
	"math/rand"
	"testing"

	"storefront/storefront-service/internal/app/storefront/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int, price string) entity.Product {
	return entity.Product{
		ID:    id,
		Title: "Product",
		Image: "https://example.com/p.png",
		Price: decimal.RequireFromString(price),
	}
}

func cartWith(id int, price string, quantity int) entity.CartState {
	state := entity.EmptyCart()
	for i := 0; i < quantity; i++ {
		state = AddToCart(state, product(id, price))
	}
	return state
}

func assertMoney(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.Equal(t, expected, actual.StringFixed(2))
}

// ===================== AddToCart =====================

func TestAddToCart_SameProductTwice(t *testing.T) {
	state := entity.EmptyCart()

	state = AddToCart(state, product(1, "10"))
	state = AddToCart(state, product(1, "10"))

	require.Len(t, state.Lines, 1)
	assert.Equal(t, 2, state.Lines[0].Quantity)
	assert.Equal(t, 2, state.TotalQuantity)
	assertMoney(t, "20.00", state.TotalPrice)
}

func TestAddToCart_KeepsInsertionOrder(t *testing.T) {
	state := entity.EmptyCart()

	state = AddToCart(state, product(3, "1.50"))
	state = AddToCart(state, product(1, "2.25"))
	state = AddToCart(state, product(3, "1.50"))

	require.Len(t, state.Lines, 2)
	assert.Equal(t, 3, state.Lines[0].ProductID)
	assert.Equal(t, 1, state.Lines[1].ProductID)
	assert.Equal(t, 3, state.TotalQuantity)
	assertMoney(t, "5.25", state.TotalPrice)
}

func TestAddToCart_DoesNotMutateInput(t *testing.T) {
	original := cartWith(1, "10", 1)

	_ = AddToCart(original, product(1, "10"))
	_ = AddToCart(original, product(2, "5"))

	require.Len(t, original.Lines, 1)
	assert.Equal(t, 1, original.Lines[0].Quantity)
	assert.Equal(t, 1, original.TotalQuantity)
}

// ===================== AdjustQuantity =====================

func TestAdjustQuantity_Decrease(t *testing.T) {
	state := cartWith(1, "10", 2)

	state, err := AdjustQuantity(state, 1, 1)

	require.NoError(t, err)
	assert.Equal(t, 1, state.TotalQuantity)
	assertMoney(t, "10.00", state.TotalPrice)
	assert.Equal(t, 1, state.Lines[0].Quantity)
}

func TestAdjustQuantity_Increase(t *testing.T) {
	state := cartWith(1, "19.99", 1)

	state, err := AdjustQuantity(state, 1, 4)

	require.NoError(t, err)
	assert.Equal(t, 4, state.TotalQuantity)
	assertMoney(t, "79.96", state.TotalPrice)
}

func TestAdjustQuantity_RejectsBelowOne(t *testing.T) {
	state := cartWith(1, "10", 2)

	for _, quantity := range []int{0, -1, -100} {
		next, err := AdjustQuantity(state, 1, quantity)

		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.Equal(t, 2, next.TotalQuantity)
		assert.Equal(t, 2, next.Lines[0].Quantity)
		assertMoney(t, "20.00", next.TotalPrice)
	}
}

func TestAdjustQuantity_UnknownProductIsNoop(t *testing.T) {
	state := cartWith(1, "10", 2)

	next, err := AdjustQuantity(state, 42, 5)

	assert.NoError(t, err)
	assert.Equal(t, state, next)
}

func TestAdjustQuantity_UnknownProductWithInvalidQuantityIsNoop(t *testing.T) {
	state := cartWith(1, "10", 2)

	next, err := AdjustQuantity(state, 42, 0)

	assert.NoError(t, err)
	assert.Equal(t, state, next)
}

// ===================== RemoveFromCart =====================

func TestRemoveFromCart_RemovesWholeLine(t *testing.T) {
	state := cartWith(1, "10", 2)

	state = RemoveFromCart(state, 1)

	assert.Empty(t, state.Lines)
	assert.Equal(t, 0, state.TotalQuantity)
	assertMoney(t, "0.00", state.TotalPrice)
}

func TestRemoveFromCart_KeepsOtherLines(t *testing.T) {
	state := cartWith(1, "10", 2)
	state = AddToCart(state, product(2, "3.33"))
	state = AddToCart(state, product(3, "7"))

	state = RemoveFromCart(state, 2)

	require.Len(t, state.Lines, 2)
	assert.Equal(t, 1, state.Lines[0].ProductID)
	assert.Equal(t, 3, state.Lines[1].ProductID)
	assert.Equal(t, 3, state.TotalQuantity)
	assertMoney(t, "27.00", state.TotalPrice)
}

func TestRemoveFromCart_UnknownProductIsNoop(t *testing.T) {
	state := cartWith(1, "10", 2)

	next := RemoveFromCart(state, 99)

	assert.Equal(t, state, next)
}

// ===================== ClearCart =====================

func TestClearCart_Idempotent(t *testing.T) {
	once := ClearCart()
	twice := ClearCart()

	assert.Equal(t, once, twice)
	assert.Empty(t, once.Lines)
	assert.Equal(t, 0, once.TotalQuantity)
	assert.True(t, once.TotalPrice.IsZero())
}

// ===================== Verify =====================

func TestVerify_DetectsDrift(t *testing.T) {
	state := cartWith(1, "10", 2)
	state.TotalPrice = decimal.RequireFromString("19.99")

	assert.ErrorIs(t, Verify(state), ErrTotalsDrift)
}

func TestVerify_DetectsDuplicateLines(t *testing.T) {
	state := cartWith(1, "10", 1)
	state.Lines = append(state.Lines, state.Lines[0])
	state.TotalQuantity = 2
	state.TotalPrice = decimal.RequireFromString("20")

	assert.ErrorIs(t, Verify(state), ErrTotalsDrift)
}

func TestVerify_RejectsInvalidLines(t *testing.T) {
	tests := []struct {
		name  string
		price string
		qty   int
	}{
		{"negative price", "-5.00", 1},
		{"zero price", "0", 2},
		{"zero quantity", "10", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := decimal.RequireFromString(tt.price)
			state := entity.CartState{
				Lines:         []entity.CartLine{{ProductID: 3, Title: "Stand", Price: price, Quantity: tt.qty}},
				TotalQuantity: tt.qty,
				TotalPrice:    price.Mul(decimal.NewFromInt(int64(tt.qty))),
			}

			assert.ErrorIs(t, Verify(state), ErrInvalidLine)
		})
	}
}

// ===================== Totals =====================

// Случайные последовательности операций не должны нарушать инвариант итогов
func TestReducer_RandomSequencesKeepTotalsConsistent(t *testing.T) {
	prices := []string{"0.10", "0.20", "9.99", "10", "149.95", "0.01", "33.33"}
	rng := rand.New(rand.NewSource(20241019))

	for run := 0; run < 200; run++ {
		state := entity.EmptyCart()

		for step := 0; step < 60; step++ {
			id := rng.Intn(len(prices)) + 1
			switch op := rng.Intn(10); {
			case op < 5:
				state = AddToCart(state, product(id, prices[id-1]))
			case op < 7:
				state = RemoveFromCart(state, id)
			case op < 9:
				next, err := AdjustQuantity(state, id, rng.Intn(8)-2)
				if err != nil {
					assert.ErrorIs(t, err, ErrInvalidQuantity)
				}
				state = next
			default:
				state = ClearCart()
			}

			require.NoError(t, Verify(state), "run %d step %d", run, step)
		}
	}
}
