package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/storefront-service/internal/app/storefront/cart"
	"storefront/storefront-service/internal/app/storefront/entity"
)

// CartResult состояние корзины после операции.
// Persisted=false означает, что изменение применено, но не записано в хранилище.
type CartResult struct {
	State     entity.CartState
	Persisted bool
}

type cartSession struct {
	state   entity.CartState
	touched time.Time
	dirty   bool // последнее изменение не записано в хранилище
}

// CartService владеет актуальным состоянием корзин в памяти.
// Корзина восстанавливается из хранилища при первом обращении сессии,
// каждое изменение сначала фиксируется в памяти, затем записывается в хранилище.
type CartService struct {
	store       *CartStore
	catalog     CatalogServiceInterface
	locks       *sessionLocks
	saveTimeout time.Duration

	mu       sync.RWMutex
	sessions map[string]*cartSession

	now func() time.Time
}

// NewCartService создает сервис корзины с внедрением зависимостей
func NewCartService(store *CartStore, catalog CatalogServiceInterface, saveTimeout time.Duration) *CartService {
	if saveTimeout <= 0 {
		saveTimeout = 2 * time.Second
	}
	return &CartService{
		store:       store,
		catalog:     catalog,
		locks:       newSessionLocks(),
		saveTimeout: saveTimeout,
		sessions:    make(map[string]*cartSession),
		now:         time.Now,
	}
}

// Get возвращает корзину сессии
func (s *CartService) Get(ctx context.Context, session string) (CartResult, error) {
	unlock := s.locks.Lock(session)
	defer unlock()

	cs, err := s.session(ctx, session)
	if err != nil {
		return CartResult{}, err
	}
	cs.touched = s.now()
	return CartResult{State: cs.state.Clone(), Persisted: !cs.dirty}, nil
}

// Add добавляет товар; цена и описание берутся из каталога, а не от клиента
func (s *CartService) Add(ctx context.Context, session string, productID int) (CartResult, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return CartResult{}, err
	}
	if err := checkProduct(product, productID); err != nil {
		return CartResult{}, err
	}

	return s.mutate(ctx, session, "add", func(state entity.CartState) (entity.CartState, error) {
		return cart.AddToCart(state, *product), nil
	})
}

// Remove удаляет позицию целиком
func (s *CartService) Remove(ctx context.Context, session string, productID int) (CartResult, error) {
	return s.mutate(ctx, session, "remove", func(state entity.CartState) (entity.CartState, error) {
		return cart.RemoveFromCart(state, productID), nil
	})
}

// Adjust устанавливает количество позиции (не меньше 1)
func (s *CartService) Adjust(ctx context.Context, session string, productID int, quantity int) (CartResult, error) {
	return s.mutate(ctx, session, "adjust", func(state entity.CartState) (entity.CartState, error) {
		return cart.AdjustQuantity(state, productID, quantity)
	})
}

// Clear очищает корзину
func (s *CartService) Clear(ctx context.Context, session string) (CartResult, error) {
	return s.mutate(ctx, session, "clear", func(entity.CartState) (entity.CartState, error) {
		return cart.ClearCart(), nil
	})
}

// PruneIdle выгружает из памяти корзины, не использовавшиеся с момента before.
// Данные остаются в хранилище и будут восстановлены при следующем обращении.
// Незаписанная корзина сначала сохраняется повторно; при неудаче остаётся в памяти.
func (s *CartService) PruneIdle(before time.Time) int {
	pruned := 0
	for _, id := range s.sessionIDs() {
		if s.pruneSession(id, before) {
			pruned++
		}
	}

	s.updateActiveSessions()
	return pruned
}

func (s *CartService) pruneSession(id string, before time.Time) bool {
	unlock := s.locks.Lock(id)
	defer unlock()

	s.mu.RLock()
	cs, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || !cs.touched.Before(before) {
		return false
	}

	if cs.dirty {
		if !s.persist(context.Background(), id, cs.state) {
			logger.Warn().Str("session_id", id).Msg("Keeping idle cart in memory until it is persisted")
			return false
		}
		cs.dirty = false
	}

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return true
}

func (s *CartService) sessionIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (s *CartService) mutate(
	ctx context.Context,
	session string,
	operation string,
	reduce func(entity.CartState) (entity.CartState, error),
) (CartResult, error) {
	unlock := s.locks.Lock(session)
	defer unlock()

	cs, err := s.session(ctx, session)
	if err != nil {
		return CartResult{}, err
	}

	next, err := reduce(cs.state)
	if err != nil {
		return CartResult{State: cs.state.Clone(), Persisted: !cs.dirty}, fmt.Errorf("%s: %w", operation, err)
	}

	// Фиксация в памяти происходит до записи в хранилище
	cs.state = next
	cs.touched = s.now()
	metrics.CartMutations.WithLabelValues(operation).Inc()

	persisted := s.persist(ctx, session, next)
	cs.dirty = !persisted
	return CartResult{State: next.Clone(), Persisted: persisted}, nil
}

// persist записывает корзину с ограничением по времени; ошибка только логируется
func (s *CartService) persist(ctx context.Context, session string, state entity.CartState) bool {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.saveTimeout)
	defer cancel()

	if err := s.store.Save(saveCtx, session, state); err != nil {
		metrics.CartPersistFailures.WithLabelValues(s.store.Driver()).Inc()
		logger.Error().
			Err(err).
			Str("session_id", session).
			Str("driver", s.store.Driver()).
			Msg("Cart change applied but not persisted")
		return false
	}
	return true
}

// session возвращает состояние сессии, загружая его из хранилища при первом обращении.
// Если слот не прочитан, сессия не кешируется: следующее обращение повторит загрузку.
// Вызывается под мьютексом сессии.
func (s *CartService) session(ctx context.Context, session string) (*cartSession, error) {
	s.mu.RLock()
	cs, ok := s.sessions[session]
	s.mu.RUnlock()
	if ok {
		return cs, nil
	}

	state, err := s.store.Load(ctx, session)
	if err != nil {
		logger.Warn().Err(err).Str("session_id", session).Msg("Failed to load cart")
		return nil, err
	}

	cs = &cartSession{
		state:   state,
		touched: s.now(),
	}

	s.mu.Lock()
	s.sessions[session] = cs
	s.mu.Unlock()

	s.updateActiveSessions()
	return cs, nil
}

func (s *CartService) updateActiveSessions() {
	s.mu.RLock()
	n := len(s.sessions)
	s.mu.RUnlock()
	metrics.ActiveSessions.Set(float64(n))
}
