package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/storefront-service/internal/app/storefront/checkout"
	"storefront/storefront-service/internal/app/storefront/entity"
	"storefront/storefront-service/internal/app/storefront/infrastructure"

	"github.com/google/uuid"
)

const (
	RedirectSuccess = "/success"
	RedirectCart    = "/cart"
)

// CheckoutView состояние оформления заказа для клиента
type CheckoutView struct {
	State   entity.CheckoutState
	Form    entity.ShippingForm
	Summary *entity.OrderSummary
}

// ConfirmResult подтверждённый заказ и корзина после очистки
type ConfirmResult struct {
	Order entity.OrderSummary
	Cart  CartResult
}

// CheckoutService ведёт машину состояний оформления заказа для каждой сессии.
// Блокировки сессий отдельные от корзины: порядок захвата всегда checkout -> cart.
type CheckoutService struct {
	cart           CartServiceInterface
	auth           AuthServiceInterface
	validator      *checkout.Validator
	publisher      infrastructure.MessagePublisher
	publishTimeout time.Duration
	locks          *sessionLocks

	mu    sync.RWMutex
	flows map[string]*checkout.Flow

	now        func() time.Time
	newOrderID func() uuid.UUID
}

// NewCheckoutService создает сервис оформления заказа с внедрением зависимостей
func NewCheckoutService(
	cartService CartServiceInterface,
	authService AuthServiceInterface,
	validator *checkout.Validator,
	publisher infrastructure.MessagePublisher,
	publishTimeout time.Duration,
) *CheckoutService {
	if publishTimeout <= 0 {
		publishTimeout = 5 * time.Second
	}
	return &CheckoutService{
		cart:           cartService,
		auth:           authService,
		validator:      validator,
		publisher:      publisher,
		publishTimeout: publishTimeout,
		locks:          newSessionLocks(),
		flows:          make(map[string]*checkout.Flow),
		now:            time.Now,
		newOrderID:     uuid.New,
	}
}

// View возвращает текущее состояние; в Editing пустые имя и email
// подставляются из данных вошедшего пользователя
func (s *CheckoutService) View(ctx context.Context, session string) (CheckoutView, error) {
	unlock := s.locks.Lock(session)
	defer unlock()

	flow := s.flow(session)
	s.prefill(ctx, session, flow)
	return viewOf(flow), nil
}

// ChangePaymentMethod меняет способ оплаты и сбрасывает реквизиты карты и UPI
func (s *CheckoutService) ChangePaymentMethod(ctx context.Context, session string, method entity.PaymentMethod) (CheckoutView, error) {
	unlock := s.locks.Lock(session)
	defer unlock()

	flow := s.flow(session)
	if err := flow.SetPaymentMethod(method, s.now()); err != nil {
		return viewOf(flow), err
	}
	return viewOf(flow), nil
}

// Submit проверяет форму. Ошибки полей возвращаются как данные,
// при успехе оформление переходит к просмотру сводки.
func (s *CheckoutService) Submit(ctx context.Context, session string, form entity.ShippingForm) (CheckoutView, entity.ValidationErrors, error) {
	unlock := s.locks.Lock(session)
	defer unlock()

	flow := s.flow(session)
	if flow.State() != entity.CheckoutEditing {
		return viewOf(flow), nil, ErrNotEditing
	}

	current, err := s.cart.Get(ctx, session)
	if err != nil {
		return viewOf(flow), nil, fmt.Errorf("failed to read cart: %w", err)
	}

	errs, err := flow.Submit(form, current.State, s.validator, s.newOrderID(), s.now())
	switch {
	case err != nil:
		metrics.CheckoutSubmissions.WithLabelValues("empty_cart").Inc()
		return viewOf(flow), nil, err
	case len(errs) > 0:
		metrics.CheckoutSubmissions.WithLabelValues("invalid").Inc()
		return viewOf(flow), errs, nil
	}

	metrics.CheckoutSubmissions.WithLabelValues("valid").Inc()
	return viewOf(flow), nil, nil
}

// Confirm подтверждает заказ по снимку сводки: очищает корзину,
// сбрасывает форму и публикует событие ORDER_CONFIRMED
func (s *CheckoutService) Confirm(ctx context.Context, session string) (ConfirmResult, error) {
	unlock := s.locks.Lock(session)
	defer unlock()

	flow := s.flow(session)
	summary, err := flow.Confirm(s.now())
	if err != nil {
		return ConfirmResult{}, err
	}

	cleared, err := s.cart.Clear(ctx, session)
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("failed to clear cart: %w", err)
	}

	method := string(summary.Form.PaymentMethod)
	metrics.OrdersConfirmed.WithLabelValues(method).Inc()
	metrics.OrdersConfirmedAmount.Add(summary.TotalPrice.InexactFloat64())

	logger.Info().
		Str("session_id", session).
		Str("order_id", summary.OrderID.String()).
		Str("payment_method", method).
		Int("total_quantity", summary.TotalQuantity).
		Str("total_price", summary.TotalPrice.StringFixed(2)).
		Msg("Order confirmed")

	s.publishConfirmed(ctx, session, summary)

	return ConfirmResult{Order: summary, Cart: cleared}, nil
}

// Edit возвращает к редактированию формы; корзина не меняется
func (s *CheckoutService) Edit(ctx context.Context, session string) (CheckoutView, error) {
	unlock := s.locks.Lock(session)
	defer unlock()

	flow := s.flow(session)
	if err := flow.Edit(s.now()); err != nil {
		return viewOf(flow), err
	}
	return viewOf(flow), nil
}

// PruneIdle забывает оформления, не менявшиеся с момента before
func (s *CheckoutService) PruneIdle(before time.Time) int {
	s.mu.RLock()
	ids := make([]string, 0, len(s.flows))
	for id := range s.flows {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	pruned := 0
	for _, id := range ids {
		unlock := s.locks.Lock(id)
		s.mu.Lock()
		if flow, ok := s.flows[id]; ok && flow.LastTouched().Before(before) {
			delete(s.flows, id)
			pruned++
		}
		s.mu.Unlock()
		unlock()
	}
	return pruned
}

// flow возвращает машину состояний сессии; вызывается под мьютексом сессии
func (s *CheckoutService) flow(session string) *checkout.Flow {
	s.mu.RLock()
	flow, ok := s.flows[session]
	s.mu.RUnlock()
	if ok {
		return flow
	}

	flow = checkout.NewFlow(s.now())
	s.mu.Lock()
	s.flows[session] = flow
	s.mu.Unlock()
	return flow
}

func (s *CheckoutService) prefill(ctx context.Context, session string, flow *checkout.Flow) {
	if s.auth == nil || flow.State() != entity.CheckoutEditing {
		return
	}
	user, err := s.auth.CurrentUser(ctx, session)
	if err != nil {
		logger.Warn().Err(err).Str("session_id", session).Msg("Failed to load user for checkout prefill")
		return
	}
	flow.Prefill(user)
}

// publishConfirmed отправляет событие в Kafka; ошибка только логируется,
// заказ к этому моменту уже подтверждён
func (s *CheckoutService) publishConfirmed(ctx context.Context, session string, summary entity.OrderSummary) {
	if s.publisher == nil {
		return
	}

	event := entity.OrderEvent{
		EventType:     entity.EventOrderConfirmed,
		OrderID:       summary.OrderID,
		SessionID:     session,
		CustomerName:  summary.Form.Name,
		CustomerEmail: summary.Form.Email,
		City:          summary.Form.City,
		State:         summary.Form.State,
		PostalCode:    summary.Form.PostalCode,
		PaymentMethod: summary.Form.PaymentMethod,
		TotalQuantity: summary.TotalQuantity,
		TotalPrice:    summary.TotalPrice,
		ItemsCount:    len(summary.Lines),
		Timestamp:     s.now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal order event")
		return
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.publisher.PublishMessage(publishCtx, summary.OrderID.String(), data); err != nil {
		logger.Error().
			Err(err).
			Str("order_id", summary.OrderID.String()).
			Msg("Failed to publish order confirmed event")
	}
}

func viewOf(flow *checkout.Flow) CheckoutView {
	return CheckoutView{
		State:   flow.State(),
		Form:    flow.Form(),
		Summary: flow.Summary(),
	}
}
