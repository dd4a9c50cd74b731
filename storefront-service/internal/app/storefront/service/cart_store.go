package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/storefront-service/internal/app/storefront/cart"
	"storefront/storefront-service/internal/app/storefront/entity"
	"storefront/storefront-service/internal/app/storefront/repository"
)

// CartKey ключ слота корзины сессии
func CartKey(session string) string {
	return "cart:" + session
}

// CartStore сохраняет корзину в слот хранилища как версионированную JSON запись
type CartStore struct {
	repo repository.SlotRepository
}

func NewCartStore(repo repository.SlotRepository) *CartStore {
	return &CartStore{repo: repo}
}

// Load восстанавливает корзину. Отсутствующая, повреждённая, чужой версии или
// несогласованная запись даёт пустую корзину. Ошибка чтения из хранилища
// возвращается как ErrStorageUnavailable: содержимое слота неизвестно.
func (s *CartStore) Load(ctx context.Context, session string) (entity.CartState, error) {
	data, err := s.repo.Get(ctx, CartKey(session))
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return entity.EmptyCart(), nil
		}
		return entity.CartState{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	state, err := decodeCartRecord(data)
	if err != nil {
		metrics.CartCorruptRecords.Inc()
		logger.Warn().Err(err).Str("session_id", session).Msg("Discarding unreadable cart record")
		return entity.EmptyCart(), nil
	}

	return state, nil
}

// Save полностью заменяет запись корзины
func (s *CartStore) Save(ctx context.Context, session string, state entity.CartState) error {
	data, err := encodeCartRecord(state)
	if err != nil {
		return err
	}

	if err := s.repo.Set(ctx, CartKey(session), data); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Driver имя драйвера хранилища (метка метрик)
func (s *CartStore) Driver() string {
	return s.repo.Driver()
}

func encodeCartRecord(state entity.CartState) ([]byte, error) {
	record := entity.CartRecord{
		Version:   entity.CartRecordVersion,
		CartState: state.Clone(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cart: %w", err)
	}
	return data, nil
}

func decodeCartRecord(data []byte) (entity.CartState, error) {
	var record entity.CartRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return entity.CartState{}, fmt.Errorf("failed to unmarshal cart: %w", err)
	}

	if record.Version != entity.CartRecordVersion {
		return entity.CartState{}, fmt.Errorf("unsupported cart record version %d", record.Version)
	}

	state := record.CartState
	if state.Lines == nil {
		state.Lines = []entity.CartLine{}
	}

	if err := cart.Verify(state); err != nil {
		return entity.CartState{}, err
	}

	return state, nil
}
