package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product представляет товар из удалённого Catalog API
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Brand       string          `json:"brand,omitempty"`
	Category    string          `json:"category,omitempty"`
	Color       string          `json:"color,omitempty"`
	Description string          `json:"description,omitempty"`
	Model       string          `json:"model,omitempty"`
	Discount    int             `json:"discount,omitempty"`
}

// CartLine позиция корзины, уникальна по ProductID
type CartLine struct {
	ProductID int             `json:"product_id"`
	Title     string          `json:"title"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal стоимость позиции (price * quantity)
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartState состояние корзины одной сессии
// TotalQuantity и TotalPrice поддерживаются инкрементально редьюсером
type CartState struct {
	Lines         []CartLine      `json:"items"`
	TotalQuantity int             `json:"total_quantity"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// EmptyCart возвращает начальное состояние корзины
func EmptyCart() CartState {
	return CartState{
		Lines:         []CartLine{},
		TotalQuantity: 0,
		TotalPrice:    decimal.Zero,
	}
}

// Clone возвращает копию состояния, не разделяющую слайс позиций
func (s CartState) Clone() CartState {
	lines := make([]CartLine, len(s.Lines))
	copy(lines, s.Lines)
	return CartState{
		Lines:         lines,
		TotalQuantity: s.TotalQuantity,
		TotalPrice:    s.TotalPrice,
	}
}

// IsEmpty true если в корзине нет позиций
func (s CartState) IsEmpty() bool {
	return len(s.Lines) == 0
}

// CartRecordVersion текущая версия формата сохранённой корзины
const CartRecordVersion = 1

// CartRecord формат корзины в слоте хранилища
type CartRecord struct {
	Version int `json:"version"`
	CartState
}

// PaymentMethod способ оплаты
type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"  // Наложенный платёж
	PaymentCard PaymentMethod = "card" // Банковская карта
	PaymentUPI  PaymentMethod = "upi"  // Мгновенный перевод
)

// ShippingForm форма доставки и оплаты
// Поля карты и UPI обязательны только для соответствующего способа оплаты
type ShippingForm struct {
	Name          string        `json:"name" validate:"required"`
	Email         string        `json:"email" validate:"required,loose_email"`
	Address       string        `json:"address" validate:"required"`
	City          string        `json:"city" validate:"required"`
	State         string        `json:"state" validate:"required"`
	PostalCode    string        `json:"postal_code" validate:"required,digits,len=6"`
	Phone         string        `json:"phone" validate:"required,digits,len=10"`
	PaymentMethod PaymentMethod `json:"payment_method" validate:"required,oneof=cod card upi"`
	CardNumber    string        `json:"card_number,omitempty" validate:"required_if=PaymentMethod card,omitempty,digits,len=16"`
	CardExpiry    string        `json:"card_expiry,omitempty" validate:"required_if=PaymentMethod card,omitempty,card_expiry"`
	CardCVV       string        `json:"card_cvv,omitempty" validate:"required_if=PaymentMethod card,omitempty,digits,len=3"`
	UPIID         string        `json:"upi_id,omitempty" validate:"required_if=PaymentMethod upi"`
}

// BlankShippingForm пустая форма (оплата по умолчанию - наложенный платёж)
func BlankShippingForm() ShippingForm {
	return ShippingForm{PaymentMethod: PaymentCOD}
}

// WithPaymentMethod меняет способ оплаты и сбрасывает реквизиты карты и UPI
func (f ShippingForm) WithPaymentMethod(method PaymentMethod) ShippingForm {
	f.PaymentMethod = method
	f.CardNumber = ""
	f.CardExpiry = ""
	f.CardCVV = ""
	f.UPIID = ""
	return f
}

// Normalized оставляет только реквизиты выбранного способа оплаты
func (f ShippingForm) Normalized() ShippingForm {
	if f.PaymentMethod == "" {
		f.PaymentMethod = PaymentCOD
	}
	if f.PaymentMethod != PaymentCard {
		f.CardNumber = ""
		f.CardExpiry = ""
		f.CardCVV = ""
	}
	if f.PaymentMethod != PaymentUPI {
		f.UPIID = ""
	}
	return f
}

// Masked форма для ответа клиенту: от номера карты остаются последние 4 цифры, CVV не отдаётся
func (f ShippingForm) Masked() ShippingForm {
	if n := len(f.CardNumber); n > 4 {
		f.CardNumber = strings.Repeat("*", n-4) + f.CardNumber[n-4:]
	} else {
		f.CardNumber = strings.Repeat("*", n)
	}
	f.CardCVV = ""
	return f
}

// ValidationErrors ошибки формы: имя поля -> сообщение
type ValidationErrors map[string]string

// CheckoutState состояние оформления заказа
type CheckoutState string

const (
	CheckoutEditing   CheckoutState = "editing"   // Заполнение формы
	CheckoutReviewing CheckoutState = "reviewing" // Просмотр сводки заказа
	CheckoutCleared   CheckoutState = "cleared"   // Заказ подтверждён, корзина очищена
)

// OrderSummary неизменяемый снимок заказа на момент успешной валидации
type OrderSummary struct {
	OrderID       uuid.UUID       `json:"order_id"`
	Form          ShippingForm    `json:"form"`
	Lines         []CartLine      `json:"items"`
	TotalQuantity int             `json:"total_quantity"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	CreatedAt     time.Time       `json:"created_at"`
}

// User пользователь из заглушки аутентификации (без проверки пароля)
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderEvent событие подтверждения заказа для Kafka
// Реквизиты карты и UPI в событие не попадают
type OrderEvent struct {
	EventType     string          `json:"event_type"` // ORDER_CONFIRMED
	OrderID       uuid.UUID       `json:"order_id"`
	SessionID     string          `json:"session_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	City          string          `json:"city"`
	State         string          `json:"state"`
	PostalCode    string          `json:"postal_code"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	TotalQuantity int             `json:"total_quantity"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	ItemsCount    int             `json:"items_count"`
	Timestamp     time.Time       `json:"timestamp"`
}

const EventOrderConfirmed = "ORDER_CONFIRMED"
