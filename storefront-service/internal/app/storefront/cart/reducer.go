// Package cart содержит редьюсер корзины - единственный способ изменить CartState.
// Все функции чистые: принимают текущее состояние и возвращают новое,
// входное состояние не модифицируется.
package cart

import (
	"errors"
	"fmt"

	"storefront/storefront-service/internal/app/storefront/entity"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidQuantity количество меньше 1
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrTotalsDrift итоги корзины не совпадают с суммой по позициям
	ErrTotalsDrift = errors.New("cart totals do not match lines")
	// ErrInvalidLine позиция с количеством меньше 1 или ценой не больше нуля
	ErrInvalidLine = errors.New("invalid cart line")
)

// AddToCart добавляет товар: существующая позиция +1, иначе новая позиция с количеством 1
func AddToCart(state entity.CartState, product entity.Product) entity.CartState {
	next := state.Clone()

	if i := indexOf(next.Lines, product.ID); i >= 0 {
		next.Lines[i].Quantity++
	} else {
		next.Lines = append(next.Lines, entity.CartLine{
			ProductID: product.ID,
			Title:     product.Title,
			Image:     product.Image,
			Price:     product.Price,
			Quantity:  1,
		})
	}

	next.TotalQuantity++
	next.TotalPrice = next.TotalPrice.Add(product.Price)
	return next
}

// RemoveFromCart удаляет позицию целиком; неизвестный id - no-op
func RemoveFromCart(state entity.CartState, productID int) entity.CartState {
	i := indexOf(state.Lines, productID)
	if i < 0 {
		return state
	}

	next := state.Clone()
	line := next.Lines[i]
	next.TotalPrice = next.TotalPrice.Sub(line.LineTotal())
	next.TotalQuantity -= line.Quantity
	next.Lines = append(next.Lines[:i], next.Lines[i+1:]...)
	return next
}

// AdjustQuantity устанавливает количество позиции; неизвестный id - no-op.
// Количество меньше 1 отклоняется с ErrInvalidQuantity, состояние не меняется.
func AdjustQuantity(state entity.CartState, productID int, quantity int) (entity.CartState, error) {
	i := indexOf(state.Lines, productID)
	if i < 0 {
		return state, nil
	}
	if quantity < 1 {
		return state, fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}

	next := state.Clone()
	line := &next.Lines[i]
	delta := quantity - line.Quantity

	next.TotalQuantity += delta
	next.TotalPrice = next.TotalPrice.Add(line.Price.Mul(decimal.NewFromInt(int64(delta))))
	line.Quantity = quantity
	return next, nil
}

// ClearCart возвращает пустую корзину
func ClearCart() entity.CartState {
	return entity.EmptyCart()
}

// Verify проверяет позиции, пересчитывает итоги и сравнивает с сохранёнными
func Verify(state entity.CartState) error {
	quantity := 0
	price := decimal.Zero
	seen := make(map[int]struct{}, len(state.Lines))

	for _, line := range state.Lines {
		if _, dup := seen[line.ProductID]; dup {
			return fmt.Errorf("%w: duplicate line for product %d", ErrTotalsDrift, line.ProductID)
		}
		seen[line.ProductID] = struct{}{}

		if line.Quantity < 1 {
			return fmt.Errorf("%w: product %d has quantity %d", ErrInvalidLine, line.ProductID, line.Quantity)
		}
		if !line.Price.IsPositive() {
			return fmt.Errorf("%w: product %d has price %s", ErrInvalidLine, line.ProductID, line.Price)
		}
		quantity += line.Quantity
		price = price.Add(line.LineTotal())
	}

	if quantity != state.TotalQuantity {
		return fmt.Errorf("%w: total quantity %d, lines sum %d", ErrTotalsDrift, state.TotalQuantity, quantity)
	}
	if !price.Equal(state.TotalPrice) {
		return fmt.Errorf("%w: total price %s, lines sum %s", ErrTotalsDrift, state.TotalPrice, price)
	}
	return nil
}

func indexOf(lines []entity.CartLine, productID int) int {
	for i, line := range lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}
