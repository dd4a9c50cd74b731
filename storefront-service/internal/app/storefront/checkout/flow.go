package checkout

import (
	"errors"
	"time"

	"storefront/storefront-service/internal/app/storefront/entity"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrNotEditing   = errors.New("checkout is not in editing state")
	ErrNotReviewing = errors.New("checkout is not in reviewing state")
)

// Assemble создает снимок заказа из формы и корзины.
// Позиции копируются, дальнейшие изменения корзины снимок не затрагивают.
func Assemble(orderID uuid.UUID, form entity.ShippingForm, cart entity.CartState, createdAt time.Time) entity.OrderSummary {
	snapshot := cart.Clone()
	return entity.OrderSummary{
		OrderID:       orderID,
		Form:          form,
		Lines:         snapshot.Lines,
		TotalQuantity: snapshot.TotalQuantity,
		TotalPrice:    snapshot.TotalPrice,
		CreatedAt:     createdAt,
	}
}

// Flow машина состояний оформления заказа одной сессии:
//
//	Editing --submit(valid)--> Reviewing --confirm--> Cleared -> Editing
//	Reviewing --edit--> Editing
//	Editing --submit(invalid)--> Editing
type Flow struct {
	state   entity.CheckoutState
	form    entity.ShippingForm
	summary *entity.OrderSummary
	touched time.Time
}

// NewFlow начальное состояние - Editing с пустой формой
func NewFlow(now time.Time) *Flow {
	return &Flow{
		state:   entity.CheckoutEditing,
		form:    entity.BlankShippingForm(),
		touched: now,
	}
}

func (f *Flow) State() entity.CheckoutState {
	return f.state
}

func (f *Flow) Form() entity.ShippingForm {
	return f.form
}

// Summary текущая сводка (только в состоянии Reviewing)
func (f *Flow) Summary() *entity.OrderSummary {
	if f.summary == nil {
		return nil
	}
	s := *f.summary
	s.Lines = append([]entity.CartLine(nil), f.summary.Lines...)
	return &s
}

// LastTouched время последнего перехода
func (f *Flow) LastTouched() time.Time {
	return f.touched
}

// Prefill подставляет имя и email пользователя в незаполненные поля формы
func (f *Flow) Prefill(user *entity.User) {
	if user == nil || f.state != entity.CheckoutEditing {
		return
	}
	if f.form.Name == "" {
		f.form.Name = user.Name
	}
	if f.form.Email == "" {
		f.form.Email = user.Email
	}
}

// SetPaymentMethod меняет способ оплаты, сбрасывая реквизиты
func (f *Flow) SetPaymentMethod(method entity.PaymentMethod, now time.Time) error {
	if f.state != entity.CheckoutEditing {
		return ErrNotEditing
	}
	f.form = f.form.WithPaymentMethod(method)
	f.touched = now
	return nil
}

// Submit проверяет форму; при успехе переходит в Reviewing со снимком заказа.
// Ошибки валидации возвращаются как данные, состояние остаётся Editing.
// CVV после успешной проверки не хранится ни в форме, ни в снимке.
func (f *Flow) Submit(form entity.ShippingForm, cart entity.CartState, v *Validator, orderID uuid.UUID, now time.Time) (entity.ValidationErrors, error) {
	if f.state != entity.CheckoutEditing {
		return nil, ErrNotEditing
	}

	f.form = form.Normalized()
	f.touched = now

	if errs := v.Validate(form); len(errs) > 0 {
		return errs, nil
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	f.form.CardCVV = ""
	summary := Assemble(orderID, f.form, cart, now)
	f.summary = &summary
	f.state = entity.CheckoutReviewing
	return nil, nil
}

// Confirm потребляет сводку и сбрасывает форму; Cleared сразу сменяется новым Editing
func (f *Flow) Confirm(now time.Time) (entity.OrderSummary, error) {
	if f.state != entity.CheckoutReviewing || f.summary == nil {
		return entity.OrderSummary{}, ErrNotReviewing
	}

	summary := *f.summary
	f.reset(now)
	return summary, nil
}

// Edit отбрасывает сводку без очистки корзины
func (f *Flow) Edit(now time.Time) error {
	if f.state != entity.CheckoutReviewing {
		return ErrNotReviewing
	}
	f.summary = nil
	f.state = entity.CheckoutEditing
	f.touched = now
	return nil
}

func (f *Flow) reset(now time.Time) {
	f.state = entity.CheckoutEditing
	f.form = entity.BlankShippingForm()
	f.summary = nil
	f.touched = now
}
