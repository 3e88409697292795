package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/skillswap/internal/model"
	"github.com/iliyamo/skillswap/internal/repository"
)

const (
	msgSkillFields  = "User ID and skill name are required."
	msgSearchQuery  = "Search query is required."
	msgUnknownKind  = "Unknown skill type."
	msgCategoryName = "Category is required."
)

// SkillService manages offered and wanted skills.
type SkillService struct {
	skills repository.SkillRepository
	users  repository.UserRepository
	now    func() time.Time
}

func NewSkillService(skills repository.SkillRepository, users repository.UserRepository) *SkillService {
	return &SkillService{
		skills: skills,
		users:  users,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// AddSkillInput describes a new skill. Description and Category are optional.
type AddSkillInput struct {
	UserID      string
	SkillName   string
	Description string
	Category    string
}

// Add stores a skill of the given kind. The category falls back to Other.
// The owner must exist.
func (s *SkillService) Add(ctx context.Context, kind model.SkillKind, in AddSkillInput) (*model.Skill, error) {
	if !kind.Valid() {
		return nil, Validation(msgUnknownKind)
	}
	userID := strings.TrimSpace(in.UserID)
	name := strings.TrimSpace(in.SkillName)
	if userID == "" || name == "" {
		return nil, Validation(msgSkillFields)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, NotFound(msgUserNotFound)
		}
		return nil, Internal("Error adding skill.", err)
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = model.DefaultCategory
	}
	sk := &model.Skill{
		ID:          uuid.NewString(),
		UserID:      userID,
		SkillName:   name,
		Description: strings.TrimSpace(in.Description),
		Category:    category,
		CreatedAt:   s.now(),
	}
	if err := s.skills.Create(ctx, kind, sk); err != nil {
		return nil, Internal("Error adding skill.", err)
	}
	return sk, nil
}

func (s *SkillService) ListByUser(ctx context.Context, kind model.SkillKind, userID string) ([]model.Skill, error) {
	if !kind.Valid() {
		return nil, Validation(msgUnknownKind)
	}
	out, err := s.skills.ListByUser(ctx, kind, userID)
	if err != nil {
		return nil, Internal("Error fetching skills.", err)
	}
	return out, nil
}

// ListAll returns skills of public users joined with their owner, newest first.
func (s *SkillService) ListAll(ctx context.Context, kind model.SkillKind) ([]model.SkillWithOwner, error) {
	if !kind.Valid() {
		return nil, Validation(msgUnknownKind)
	}
	out, err := s.skills.ListAll(ctx, kind)
	if err != nil {
		return nil, Internal("Error fetching skills.", err)
	}
	return out, nil
}

// Search does a case-insensitive substring match on name, description
// and category.
func (s *SkillService) Search(ctx context.Context, kind model.SkillKind, term string) ([]model.SkillWithOwner, error) {
	if !kind.Valid() {
		return nil, Validation(msgUnknownKind)
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, Validation(msgSearchQuery)
	}
	out, err := s.skills.Search(ctx, kind, term)
	if err != nil {
		return nil, Internal("Error searching skills.", err)
	}
	return out, nil
}

func (s *SkillService) ListByCategory(ctx context.Context, kind model.SkillKind, category string) ([]model.SkillWithOwner, error) {
	if !kind.Valid() {
		return nil, Validation(msgUnknownKind)
	}
	if strings.TrimSpace(category) == "" {
		return nil, Validation(msgCategoryName)
	}
	out, err := s.skills.ListByCategory(ctx, kind, category)
	if err != nil {
		return nil, Internal("Error fetching skills.", err)
	}
	return out, nil
}

// Delete removes the skill when userID owns it and is a silent no-op
// otherwise. The boolean reports whether anything was removed.
func (s *SkillService) Delete(ctx context.Context, kind model.SkillKind, skillID, userID string) (bool, error) {
	if !kind.Valid() {
		return false, Validation(msgUnknownKind)
	}
	if strings.TrimSpace(userID) == "" {
		return false, Validation("User ID is required.")
	}
	deleted, err := s.skills.Delete(ctx, kind, skillID, userID)
	if err != nil {
		return false, Internal("Error deleting skill.", err)
	}
	return deleted, nil
}

// Categories returns a copy of the fixed category list.
func (s *SkillService) Categories() []string {
	return append([]string(nil), model.Categories...)
}
