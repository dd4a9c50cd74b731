package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storefront/pkg/logger"
	"storefront/storefront-service/internal/app/storefront/entity"
	"storefront/storefront-service/internal/app/storefront/repository"
)

// UserKey ключ слота пользователя сессии
func UserKey(session string) string {
	return "user:" + session
}

// AuthService заглушка аутентификации: пользователь сессии хранится в слоте,
// пароль не проверяется
type AuthService struct {
	repo repository.SlotRepository
}

func NewAuthService(repo repository.SlotRepository) *AuthService {
	return &AuthService{repo: repo}
}

// CurrentUser возвращает пользователя сессии или nil.
// Повреждённая запись считается отсутствующей.
func (s *AuthService) CurrentUser(ctx context.Context, session string) (*entity.User, error) {
	data, err := s.repo.Get(ctx, UserKey(session))
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	var user entity.User
	if err := json.Unmarshal(data, &user); err != nil || user.Name == "" || user.Email == "" {
		logger.Warn().Str("session_id", session).Msg("Ignoring unreadable user record")
		return nil, nil
	}

	return &user, nil
}

// Login запоминает пользователя сессии
func (s *AuthService) Login(ctx context.Context, session string, req *entity.LoginRequest) (*entity.User, error) {
	user := &entity.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
	}
	if user.Name == "" || user.Email == "" {
		return nil, ErrInvalidUser
	}

	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user: %w", err)
	}

	if err := s.repo.Set(ctx, UserKey(session), data); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	logger.Info().Str("session_id", session).Str("email", user.Email).Msg("User logged in")
	return user, nil
}

// Logout забывает пользователя сессии; повторный вызов не ошибка
func (s *AuthService) Logout(ctx context.Context, session string) error {
	if err := s.repo.Delete(ctx, UserKey(session)); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
