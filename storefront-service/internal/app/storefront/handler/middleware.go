package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionHeader     = "X-Session-Token"
	sessionContextKey = "session_id"
	sessionIssuer     = "storefront-service"
)

// SessionManager выпускает и проверяет токены сессий (HS256, subject = ID сессии)
type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionManager создает менеджер сессий
func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue выпускает токен для сессии
func (m *SessionManager) Issue(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		Issuer:    sessionIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Parse проверяет подпись и срок действия, возвращает ID сессии
func (m *SessionManager) Parse(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(sessionIssuer))
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired session token")
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", errors.New("invalid session id in token")
	}
	return claims.Subject, nil
}

// SessionMiddleware определяет сессию запроса. Токен берётся из
// Authorization: Bearer или X-Session-Token; при отсутствии или ошибке
// создаётся новая сессия, её токен возвращается в заголовке X-Session-Token.
func (m *SessionManager) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := extractToken(c); tokenString != "" {
			if sessionID, err := m.Parse(tokenString); err == nil {
				c.Set(sessionContextKey, sessionID)
				c.Next()
				return
			}
			logger.Debug().Str("path", c.Request.URL.Path).Msg("Rejected session token, issuing a new one")
		}

		sessionID := uuid.New().String()
		token, err := m.Issue(sessionID)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to issue session token")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
			return
		}

		c.Header(SessionHeader, token)
		c.Set(sessionContextKey, sessionID)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(c.GetHeader(SessionHeader))
}

// sessionID ID сессии, установленный SessionMiddleware
func sessionID(c *gin.Context) (string, bool) {
	id := c.GetString(sessionContextKey)
	return id, id != ""
}
