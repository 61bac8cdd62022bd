package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/angelmondragon/packfinderz-backend/pkg/auth"
	"github.com/angelmondragon/packfinderz-backend/pkg/auth/session"
	"github.com/angelmondragon/packfinderz-backend/pkg/config"
	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
	"github.com/angelmondragon/packfinderz-backend/pkg/logger"
	"github.com/angelmondragon/packfinderz-backend/pkg/security"
)

type userFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// TokenPair is the credential set handed to back-office clients.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Service handles back-office login, token refresh and logout.
type Service interface {
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessID string) error
}

type service struct {
	users    userFinder
	sessions sessionManager
	jwt      config.JWTConfig
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(users userFinder, sessions sessionManager, jwt config.JWTConfig, logg *logger.Logger) (Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		users:    users,
		sessions: sessions,
		jwt:      jwt,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Login verifies credentials and issues an access/refresh pair. Unknown
// emails, bad passwords and deactivated accounts all return the same
// unauthorized message.
func (s *service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, invalidCredentials()
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// burn a comparable amount of time so a missing email is not
			// distinguishable from a wrong password
			_, _ = security.VerifyPassword(password, dummyHash)
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok || !user.Active {
		return nil, invalidCredentials()
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("stamping last login for %s: %v", user.ID, err))
	}

	ctx = s.logg.WithUserID(ctx, user.ID.String())
	s.logg.Info(ctx, "user logged in")
	return pair, nil
}

// Refresh rotates the session behind an expired (or still valid) access
// token. The refresh token is single use.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwt, accessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotating session")
	}

	signed, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	return &TokenPair{
		AccessToken:  signed,
		RefreshToken: newRefresh,
		ExpiresIn:    s.expiresIn(),
	}, nil
}

// Logout revokes the refresh session tied to the token's jti. The access
// token itself dies with its TTL.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	return nil
}

func (s *service) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessID := session.NewAccessID()
	signed, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating session")
	}

	return &TokenPair{
		AccessToken:  signed,
		RefreshToken: refresh,
		ExpiresIn:    s.expiresIn(),
	}, nil
}

func (s *service) expiresIn() int64 {
	return int64(time.Duration(s.jwt.ExpirationMinutes) * time.Minute / time.Second)
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
}

// dummyHash keeps the failed-email path doing real argon2 work.
var dummyHash = func() string {
	hash, err := security.HashPassword(uuid.NewString(), config.PasswordConfig{
		ArgonMemoryKB:    16 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 2,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		return ""
	}
	return hash
}()
