package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/skillswap/internal/model"
	"github.com/iliyamo/skillswap/internal/repository"
	"github.com/iliyamo/skillswap/internal/utils"
)

const (
	msgTokenRequired = "Access token required"
	msgTokenInvalid  = "Invalid or expired token"
	msgRefreshField  = "Refresh token is required."
)

// AuthService issues and revokes sessions. A session is a short-lived
// HS256 access token plus a refresh token whose hash is persisted.
type AuthService struct {
	users      *UserService
	sessions   repository.SessionRepository
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// AuthOptions configures token lifetimes. Zero values pick 15 minutes and
// 7 days.
type AuthOptions struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewAuthService(users *UserService, sessions repository.SessionRepository, opts AuthOptions) *AuthService {
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 15 * time.Minute
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		secret:     opts.Secret,
		accessTTL:  opts.AccessTTL,
		refreshTTL: opts.RefreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SignUp registers the user and opens a session for it.
func (a *AuthService) SignUp(ctx context.Context, in RegisterInput) (*model.User, *model.Session, error) {
	u, err := a.users.Register(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	sess, err := a.issue(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

// SignIn verifies credentials and opens a session.
func (a *AuthService) SignIn(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	u, err := a.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	sess, err := a.issue(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

// SignOut revokes the given refresh token, or every session of userID when
// no token is given. With neither it does nothing.
func (a *AuthService) SignOut(ctx context.Context, refreshRaw, userID string) error {
	var err error
	switch {
	case refreshRaw != "":
		err = a.sessions.RevokeByHash(ctx, utils.HashRefreshRaw(refreshRaw))
	case userID != "":
		err = a.sessions.RevokeAllForUser(ctx, userID)
	}
	if err != nil {
		return Internal("Logout failed", err)
	}
	return nil
}

// GetSession resolves an access token to its user. The returned session
// carries no refresh token.
func (a *AuthService) GetSession(ctx context.Context, accessToken string) (*model.User, *model.Session, error) {
	userID, err := a.Verify(accessToken)
	if err != nil {
		return nil, nil, err
	}
	_, exp, _ := utils.ParseAccessToken(a.secret, accessToken)
	u, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil, nil, Unauthorized(msgTokenInvalid)
		}
		return nil, nil, err
	}
	return u, &model.Session{UserID: u.ID, AccessToken: accessToken, AccessExpiresAt: exp}, nil
}

// Verify returns the subject of a valid access token.
func (a *AuthService) Verify(accessToken string) (string, error) {
	if strings.TrimSpace(accessToken) == "" {
		return "", Unauthorized(msgTokenRequired)
	}
	sub, _, err := utils.ParseAccessToken(a.secret, accessToken)
	if err != nil {
		return "", Unauthorized(msgTokenInvalid)
	}
	return sub, nil
}

// Refresh exchanges an active refresh token for a new session. The old
// token is revoked, so each refresh token works once.
func (a *AuthService) Refresh(ctx context.Context, refreshRaw string) (*model.User, *model.Session, error) {
	if refreshRaw == "" {
		return nil, nil, Validation(msgRefreshField)
	}
	hash := utils.HashRefreshRaw(refreshRaw)
	userID, err := a.sessions.ConsumeRefresh(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrSessionInvalid) {
			return nil, nil, Unauthorized(msgTokenInvalid)
		}
		return nil, nil, Internal("Refresh failed", err)
	}
	u, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil, nil, Unauthorized(msgTokenInvalid)
		}
		return nil, nil, err
	}
	sess, err := a.issue(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

func (a *AuthService) issue(ctx context.Context, userID string) (*model.Session, error) {
	at, err := utils.NewAccessToken(a.secret, userID, a.accessTTL)
	if err != nil {
		return nil, Internal("Could not create session", err)
	}
	rt, err := utils.NewRefreshToken(a.refreshTTL)
	if err != nil {
		return nil, Internal("Could not create session", err)
	}
	err = a.sessions.StoreRefresh(ctx, model.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: utils.HashRefreshRaw(rt.Raw),
		ExpiresAt: rt.Exp,
		CreatedAt: a.now(),
	})
	if err != nil {
		return nil, Internal("Could not create session", err)
	}
	return &model.Session{
		UserID:           userID,
		AccessToken:      at.Token,
		AccessExpiresAt:  at.Exp,
		RefreshToken:     rt.Raw,
		RefreshExpiresAt: &rt.Exp,
	}, nil
}
