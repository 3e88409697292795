// Package repository contains data access logic separated from HTTP handlers.
// The interfaces in this file are implemented three times: by the MySQL
// repositories in this package, by the gorm/sqlite store in gormstore and by
// the process-local store in memory. The service layer only sees the
// interfaces, so the backend is a configuration choice.
package repository

import (
	"context"

	"github.com/iliyamo/skillswap/internal/model"
)

// UserRepository persists user profiles.
type UserRepository interface {
	// Create inserts u. It returns ErrEmailExists when the email is taken.
	Create(ctx context.Context, u *model.User) error
	// GetByID returns ErrUserNotFound when no row matches.
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail returns ErrUserNotFound when no row matches.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// Update applies upd and returns the stored row, or ErrUserNotFound.
	Update(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error)
	// ListPublic returns every user whose privacy is public.
	ListPublic(ctx context.Context) ([]model.User, error)
}

// SkillRepository persists offered and wanted skills. Every method takes
// the kind so both tables share one implementation.
type SkillRepository interface {
	Create(ctx context.Context, kind model.SkillKind, s *model.Skill) error
	ListByUser(ctx context.Context, kind model.SkillKind, userID string) ([]model.Skill, error)
	// ListAll joins public owners and orders newest first.
	ListAll(ctx context.Context, kind model.SkillKind) ([]model.SkillWithOwner, error)
	// Search matches term case-insensitively against name, description and category.
	Search(ctx context.Context, kind model.SkillKind, term string) ([]model.SkillWithOwner, error)
	ListByCategory(ctx context.Context, kind model.SkillKind, category string) ([]model.SkillWithOwner, error)
	// Delete removes the skill only when it belongs to userID. The boolean
	// reports whether a row was removed.
	Delete(ctx context.Context, kind model.SkillKind, id, userID string) (bool, error)
}

// SwapRepository persists swap requests.
type SwapRepository interface {
	Create(ctx context.Context, s *model.SwapRequest) error
	GetByID(ctx context.Context, id string) (*model.SwapRequest, error)
	// ListByUser returns swaps where userID is requester or receiver,
	// enriched with summaries and ordered newest first.
	ListByUser(ctx context.Context, userID string) ([]model.SwapDetail, error)
	// UpdateStatus changes the status only when receiverID is the receiver.
	// It returns ErrSwapNotFound otherwise.
	UpdateStatus(ctx context.Context, id string, status model.SwapStatus, receiverID string) (*model.SwapRequest, error)
}

// SessionRepository persists hashed refresh tokens.
type SessionRepository interface {
	StoreRefresh(ctx context.Context, t model.RefreshToken) error
	// ValidateRefresh returns the owning user id of an active token or ErrSessionInvalid.
	ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
	// ConsumeRefresh revokes an active token and returns its user id. Of
	// concurrent callers presenting the same token only one succeeds; the
	// rest get ErrSessionInvalid.
	ConsumeRefresh(ctx context.Context, tokenHash string) (string, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// Store bundles one implementation of every repository.
type Store struct {
	Users    UserRepository
	Skills   SkillRepository
	Swaps    SwapRepository
	Sessions SessionRepository
}
