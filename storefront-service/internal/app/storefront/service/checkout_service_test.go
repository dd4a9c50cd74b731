package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storefront/storefront-service/internal/app/storefront/checkout"
	"storefront/storefront-service/internal/app/storefront/entity"
	"storefront/storefront-service/internal/app/storefront/repository"
	"storefront/storefront-service/internal/app/storefront/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	svc       *CheckoutService
	carts     *CartService
	repo      *mocks.MockSlotRepository
	catalog   *MockCatalogService
	auth      *MockAuthService
	publisher *mocks.MockMessagePublisher
	orderID   uuid.UUID
}

func newCheckoutFixture() *checkoutFixture {
	repo := new(mocks.MockSlotRepository)
	catalog := new(MockCatalogService)
	auth := new(MockAuthService)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}

	repo.On("Get", mock.Anything, mock.Anything).Return(nil, repository.ErrSlotNotFound)
	repo.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	catalog.On("GetProduct", mock.Anything, 1).Return(testProduct(1, "10"), nil)

	carts := NewCartService(NewCartStore(repo), catalog, time.Second)
	svc := NewCheckoutService(carts, auth, checkout.NewValidator(), publisher, time.Second)

	orderID := uuid.MustParse("6f1c2b8e-3a4d-4e5f-9a7b-1c2d3e4f5a6b")
	svc.newOrderID = func() uuid.UUID { return orderID }

	return &checkoutFixture{
		svc:       svc,
		carts:     carts,
		repo:      repo,
		catalog:   catalog,
		auth:      auth,
		publisher: publisher,
		orderID:   orderID,
	}
}

func validShipping() entity.ShippingForm {
	return entity.ShippingForm{
		Name:          "Asha Rao",
		Email:         "asha@example.com",
		Address:       "12 MG Road",
		City:          "Bengaluru",
		State:         "Karnataka",
		PostalCode:    "560001",
		Phone:         "9876543210",
		PaymentMethod: entity.PaymentCard,
		CardNumber:    "4111111111111111",
		CardExpiry:    "12/27",
		CardCVV:       "123",
	}
}

// ===================== View Tests =====================

func TestCheckoutView_PrefillsLoggedInUser(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	f.auth.On("CurrentUser", ctx, "s1").Return(&entity.User{Name: "Asha", Email: "asha@example.com"}, nil)

	view, err := f.svc.View(ctx, "s1")

	require.NoError(t, err)
	assert.Equal(t, entity.CheckoutEditing, view.State)
	assert.Equal(t, "Asha", view.Form.Name)
	assert.Equal(t, "asha@example.com", view.Form.Email)
	assert.Equal(t, entity.PaymentCOD, view.Form.PaymentMethod)
	assert.Nil(t, view.Summary)
}

func TestCheckoutView_AnonymousAndAuthFailure(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	f.auth.On("CurrentUser", ctx, "anon").Return(nil, nil)
	f.auth.On("CurrentUser", ctx, "broken").Return(nil, errors.New("redis down"))

	anon, err := f.svc.View(ctx, "anon")
	require.NoError(t, err)
	assert.Empty(t, anon.Form.Name)

	broken, err := f.svc.View(ctx, "broken")
	require.NoError(t, err)
	assert.Equal(t, entity.CheckoutEditing, broken.State)
}

// ===================== Submit / Confirm Tests =====================

func TestCheckout_SubmitConfirmClearsCartAndPublishes(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	f.publisher.On("PublishMessage", mock.Anything, f.orderID.String(), mock.Anything).Return(nil)

	_, err := f.carts.Add(ctx, "s1", 1)
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, "s1", 1)
	require.NoError(t, err)

	view, errs, err := f.svc.Submit(ctx, "s1", validShipping())
	require.NoError(t, err)
	require.Empty(t, errs)
	assert.Equal(t, entity.CheckoutReviewing, view.State)
	require.NotNil(t, view.Summary)
	assert.Equal(t, 2, view.Summary.TotalQuantity)
	assert.Equal(t, "20.00", view.Summary.TotalPrice.StringFixed(2))

	result, err := f.svc.Confirm(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, f.orderID, result.Order.OrderID)
	assert.Equal(t, 2, result.Order.TotalQuantity)
	assert.True(t, result.Cart.State.IsEmpty())
	assert.True(t, result.Cart.State.TotalPrice.IsZero())

	cartNow, err := f.carts.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, cartNow.State.IsEmpty())

	f.auth.On("CurrentUser", ctx, "s1").Return(nil, nil)
	after, err := f.svc.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, entity.CheckoutEditing, after.State)
	assert.Equal(t, entity.BlankShippingForm(), after.Form)

	// Событие без платёжных реквизитов
	published := f.publisher.Published()
	require.Len(t, published, 1)
	assert.NotContains(t, string(published[0]), "4111111111111111")
	var event entity.OrderEvent
	require.NoError(t, json.Unmarshal(published[0], &event))
	assert.Equal(t, entity.EventOrderConfirmed, event.EventType)
	assert.Equal(t, f.orderID, event.OrderID)
	assert.Equal(t, entity.PaymentCard, event.PaymentMethod)
	assert.Equal(t, 1, event.ItemsCount)
	assert.Equal(t, "s1", event.SessionID)
}

func TestCheckoutSubmit_InvalidStaysEditing(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	f.carts.Add(ctx, "s1", 1)

	form := validShipping()
	form.CardNumber = "1234"

	view, errs, err := f.svc.Submit(ctx, "s1", form)

	require.NoError(t, err)
	assert.Equal(t, entity.ValidationErrors{"card_number": "Valid card number is required."}, errs)
	assert.Equal(t, entity.CheckoutEditing, view.State)
	assert.Nil(t, view.Summary)
	assert.Equal(t, "1234", view.Form.CardNumber)
}

func TestCheckoutSubmit_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()

	view, _, err := f.svc.Submit(context.Background(), "s1", validShipping())

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, entity.CheckoutEditing, view.State)
}

func TestCheckoutSubmit_WhileReviewing(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	f.carts.Add(ctx, "s1", 1)
	_, _, err := f.svc.Submit(ctx, "s1", validShipping())
	require.NoError(t, err)

	_, _, err = f.svc.Submit(ctx, "s1", validShipping())

	assert.ErrorIs(t, err, ErrNotEditing)
}

func TestCheckoutConfirm_OutsideReviewing(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.svc.Confirm(context.Background(), "s1")

	assert.ErrorIs(t, err, ErrNotReviewing)
	f.publisher.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
}

// Подтверждается снимок на момент проверки, даже если корзина менялась после
func TestCheckoutConfirm_UsesSnapshot(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	f.publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.carts.Add(ctx, "s1", 1)

	_, _, err := f.svc.Submit(ctx, "s1", validShipping())
	require.NoError(t, err)
	f.carts.Add(ctx, "s1", 1)

	result, err := f.svc.Confirm(ctx, "s1")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Order.TotalQuantity)
	assert.True(t, result.Cart.State.IsEmpty())
}

func TestCheckoutConfirm_PublishFailureDoesNotFail(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	f.publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))
	f.carts.Add(ctx, "s1", 1)
	_, _, err := f.svc.Submit(ctx, "s1", validShipping())
	require.NoError(t, err)

	result, err := f.svc.Confirm(ctx, "s1")

	require.NoError(t, err)
	assert.Equal(t, f.orderID, result.Order.OrderID)
}

// ===================== Edit / Payment Method Tests =====================

func TestCheckoutEdit_KeepsCartAndForm(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	f.carts.Add(ctx, "s1", 1)
	_, _, err := f.svc.Submit(ctx, "s1", validShipping())
	require.NoError(t, err)

	view, err := f.svc.Edit(ctx, "s1")

	require.NoError(t, err)
	assert.Equal(t, entity.CheckoutEditing, view.State)
	assert.Nil(t, view.Summary)
	assert.Equal(t, "Asha Rao", view.Form.Name)
	cartNow, _ := f.carts.Get(ctx, "s1")
	assert.Equal(t, 1, cartNow.State.TotalQuantity)
}

func TestCheckoutEdit_OutsideReviewing(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.svc.Edit(context.Background(), "s1")

	assert.ErrorIs(t, err, ErrNotReviewing)
}

func TestCheckoutChangePaymentMethod(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	view, err := f.svc.ChangePaymentMethod(ctx, "s1", entity.PaymentUPI)

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentUPI, view.Form.PaymentMethod)
	assert.Empty(t, view.Form.CardNumber)
}

func TestCheckoutChangePaymentMethod_WhileReviewing(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	f.carts.Add(ctx, "s1", 1)
	_, _, err := f.svc.Submit(ctx, "s1", validShipping())
	require.NoError(t, err)

	_, err = f.svc.ChangePaymentMethod(ctx, "s1", entity.PaymentCOD)

	assert.ErrorIs(t, err, ErrNotEditing)
}

// ===================== PruneIdle =====================

func TestCheckoutPruneIdle(t *testing.T) {
	f := newCheckoutFixture()
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return start }
	f.svc.ChangePaymentMethod(context.Background(), "old", entity.PaymentCOD)
	f.svc.now = func() time.Time { return start.Add(time.Hour) }
	f.svc.ChangePaymentMethod(context.Background(), "fresh", entity.PaymentCOD)

	pruned := f.svc.PruneIdle(start.Add(30 * time.Minute))

	assert.Equal(t, 1, pruned)
	assert.Len(t, f.svc.flows, 1)
}
