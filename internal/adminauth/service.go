package adminauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/angelmondragon/aquaflow-backend/pkg/auth"
	"github.com/angelmondragon/aquaflow-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
	"github.com/angelmondragon/aquaflow-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

type limiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type sessionStore interface {
	Create(ctx context.Context, tokenID, username string) error
	Lookup(ctx context.Context, tokenID string) (string, bool, error)
	Revoke(ctx context.Context, tokenID string) error
}

// LoginInput is the back-office login form.
type LoginInput struct {
	Username string `json:"username" validate:"required,max=120"`
	Password string `json:"password" validate:"required,max=256"`
	ClientIP string `json:"-"`
}

// Session is handed to the admin after a successful login.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Principal is the authenticated admin behind a request.
type Principal struct {
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

// Service is the static-credential admin gate.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*Session, error)
	CheckSession(ctx context.Context, token string) (*Principal, error)
	Logout(ctx context.Context, token string) error
}

type service struct {
	cfg      config.AdminConfig
	sessions sessionStore
	limiter  limiter
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the admin gate. A nil limiter disables login throttling.
func NewService(cfg config.AdminConfig, sessions sessionStore, lim limiter, logg *logger.Logger) (Service, error) {
	if strings.TrimSpace(cfg.Username) == "" || strings.TrimSpace(cfg.PasswordHash) == "" {
		return nil, fmt.Errorf("admin username and password hash are required")
	}
	if err := security.ValidateHash(cfg.PasswordHash); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{cfg: cfg, sessions: sessions, limiter: lim, logg: logg, now: time.Now}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	if s.limiter != nil && s.cfg.LoginIPLimit > 0 {
		allowed, _, err := s.limiter.FixedWindowAllow(ctx, "admin_login:"+input.ClientIP, int64(s.cfg.LoginIPLimit), s.cfg.LoginWindow)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check login rate limit")
		}
		if !allowed {
			return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts, try again later")
		}
	}

	userOK := security.EqualStrings(strings.TrimSpace(input.Username), s.cfg.Username)
	passOK, err := security.VerifyPassword(input.Password, s.cfg.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify admin password")
	}
	if !userOK || !passOK {
		s.logg.Warn(s.logg.WithField(ctx, "client_ip", input.ClientIP), "admin login rejected")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	token, claims, err := pkgAuth.MintAdminToken(s.cfg, s.now(), s.cfg.Username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint admin token")
	}
	if err := s.sessions.Create(ctx, claims.ID, s.cfg.Username); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store admin session")
	}
	s.logg.Info(s.logg.WithAdmin(ctx, s.cfg.Username), "admin logged in")
	return &Session{Token: token, Username: s.cfg.Username, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// CheckSession validates signature, fixed expiry and server-side presence.
// An expired token yields SESSION_EXPIRED so the client can force a logout.
func (s *service) CheckSession(ctx context.Context, token string) (*Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin session required")
	}
	claims, err := pkgAuth.ParseAdminToken(s.cfg, token, s.now())
	if err != nil {
		if errors.Is(err, pkgAuth.ErrTokenExpired) {
			if claims != nil && claims.ID != "" {
				if rerr := s.sessions.Revoke(ctx, claims.ID); rerr != nil {
					s.logg.Warn(ctx, fmt.Sprintf("revoke expired admin session: %v", rerr))
				}
			}
			return nil, pkgerrors.New(pkgerrors.CodeExpired, "admin session expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid admin token")
	}
	username, ok, err := s.sessions.Lookup(ctx, claims.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin session")
	}
	if !ok || username != claims.Username {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin session not found")
	}
	return &Principal{Username: username, TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Logout revokes the session even when the token has already expired.
func (s *service) Logout(ctx context.Context, token string) error {
	claims, err := pkgAuth.ParseAdminTokenAllowExpired(s.cfg, strings.TrimSpace(token))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid admin token")
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke admin session")
	}
	s.logg.Info(s.logg.WithAdmin(ctx, claims.Username), "admin logged out")
	return nil
}
