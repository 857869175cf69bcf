package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const usernameContextKey = "_stubserver_username"

type tokenClaims struct {
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// tokenMinter issues and validates the stateless HS256 token pairs the stub
// server hands out. There is no server-side session record, a token is valid
// until it expires.
type tokenMinter struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func newTokenMinter(config tokenConfig) *tokenMinter {
	return &tokenMinter{
		secret:     []byte(config.Secret),
		accessTTL:  time.Duration(config.AccessTTLSeconds) * time.Second,
		refreshTTL: time.Duration(config.RefreshTTLSeconds) * time.Second,
	}
}

func (m *tokenMinter) mint(username string, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *tokenMinter) mintPair(username string) (access string, refresh string, err error) {
	access, err = m.mint(username, "access", m.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = m.mint(username, "refresh", m.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (m *tokenMinter) verify(tokenString string, tokenType string) (string, error) {
	claims := tokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	if claims.TokenType != tokenType {
		return "", fmt.Errorf("expected a %s token, got a %s token", tokenType, claims.TokenType)
	}
	return claims.Username, nil
}

// authMiddleware requires a valid bearer access token and stores the
// username on the request context.
func (m *tokenMinter) authMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			}
			username, err := m.verify(tokenString, "access")
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
			}
			c.Set(usernameContextKey, username)
			return next(c)
		}
	}
}

func usernameFromContext(c echo.Context) string {
	username, _ := c.Get(usernameContextKey).(string)
	return username
}
