package dispatch

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// A broadcast draft is held pending as a signed token instead of server-side
// state. The token carries the full message text, so confirm dispatches
// exactly what the admin typed even when the status preview was truncated.

type ConfirmToken struct {
	AdminID int64
	Text    string
}

func IssueConfirmToken(secret string, adminID int64, text string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"admin": adminID,
		"text":  text,
		"exp":   time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

func ParseConfirmToken(secret, tokenStr string) (*ConfirmToken, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid confirm token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid confirm token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid confirm token claims")
	}

	ct := &ConfirmToken{}
	if v, ok := claims["admin"].(float64); ok {
		ct.AdminID = int64(v)
	}
	if v, ok := claims["text"].(string); ok {
		ct.Text = v
	}
	if ct.Text == "" {
		return nil, fmt.Errorf("confirm token carries no message")
	}

	return ct, nil
}
