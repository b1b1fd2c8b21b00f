// Package session holds the process-wide capabilities the UI needs about the signed-in user and their preferences.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PizzaHomicide/shuchu/internal/domain"
	"github.com/PizzaHomicide/shuchu/internal/log"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken is returned when there is no stored credential to read a user from
var ErrNoToken = errors.New("no auth token configured")

// Claims are the fields the backend puts in its session tokens
type Claims struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// UserProvider exposes the current user.  It is hydrated once from the stored token.
type UserProvider struct {
	mu       sync.RWMutex
	user     *domain.User
	onLogout func() error
}

// NewUserProvider reads the user from token.  The signature is not verified here, the backend does that on every request.
// onLogout is called to forget the stored credential.
func NewUserProvider(token string, onLogout func() error) (*UserProvider, error) {
	p := &UserProvider{onLogout: onLogout}
	if token == "" {
		return p, ErrNoToken
	}

	user, err := UserFromToken(token)
	if err != nil {
		return p, err
	}

	if user.Expired(time.Now()) {
		log.Warn("Stored auth token has expired", "user_id", user.ID, "expired_at", user.ExpiresAt)
	}

	p.user = user
	return p, nil
}

// UserFromToken decodes the claims of a session token
func UserFromToken(token string) (*domain.User, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse auth token: %w", err)
	}

	id := claims.UserID
	if id == "" {
		id = claims.Subject
	}
	if id == "" {
		return nil, fmt.Errorf("auth token has no user id")
	}

	user := &domain.User{
		ID:    id,
		Name:  claims.Name,
		Email: claims.Email,
	}
	if claims.ExpiresAt != nil {
		user.ExpiresAt = claims.ExpiresAt.Time
	}
	return user, nil
}

// CurrentUser returns the signed-in user, if any
func (p *UserProvider) CurrentUser() (domain.User, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.user == nil {
		return domain.User{}, false
	}
	return *p.user, true
}

// Logout forgets the user and the stored credential
func (p *UserProvider) Logout() error {
	p.mu.Lock()
	p.user = nil
	p.mu.Unlock()

	if p.onLogout == nil {
		return nil
	}
	if err := p.onLogout(); err != nil {
		return fmt.Errorf("failed to clear stored token: %w", err)
	}
	log.Info("Logged out")
	return nil
}
