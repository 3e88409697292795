// Package gormstore implements the repository interfaces on top of gorm.
// It is used with the sqlite driver for single-node deployments and for
// tests that want a real SQL engine without a MySQL server.
package gormstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iliyamo/skillswap/internal/model"
	"github.com/iliyamo/skillswap/internal/repository"
)

type userRow struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	Username     string `gorm:"size:100;not null"`
	PasswordHash string `gorm:"not null"`
	Location     string `gorm:"not null;default:''"`
	Avatar       string `gorm:"not null;default:''"`
	Privacy      string `gorm:"size:16;not null;index"`
	Availability string `gorm:"not null;default:''"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

func (r userRow) model() model.User {
	return model.User{
		ID:           r.ID,
		Email:        r.Email,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Location:     r.Location,
		Avatar:       r.Avatar,
		Privacy:      model.Privacy(r.Privacy),
		Availability: r.Availability,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// skillRow backs both skill tables; callers pick the table with db.Table.
type skillRow struct {
	ID          string `gorm:"primaryKey;size:36"`
	UserID      string `gorm:"size:36;not null;index"`
	SkillName   string `gorm:"not null"`
	Description string `gorm:"not null;default:''"`
	Category    string `gorm:"size:100;not null;index"`
	CreatedAt   time.Time

	// sqlite's LOWER only folds ASCII, so searches run against copies
	// lowered in Go.
	NameKey        string `gorm:"not null;default:''"`
	DescriptionKey string `gorm:"not null;default:''"`
	CategoryKey    string `gorm:"size:100;not null;default:'';index"`
}

func (r *skillRow) fold() {
	r.NameKey = strings.ToLower(r.SkillName)
	r.DescriptionKey = strings.ToLower(r.Description)
	r.CategoryKey = strings.ToLower(r.Category)
}

func (r skillRow) model() model.Skill {
	return model.Skill{
		ID:          r.ID,
		UserID:      r.UserID,
		SkillName:   r.SkillName,
		Description: r.Description,
		Category:    r.Category,
		CreatedAt:   r.CreatedAt,
	}
}

type swapRow struct {
	ID             string `gorm:"primaryKey;size:36"`
	RequesterID    string `gorm:"size:36;not null;index"`
	ReceiverID     string `gorm:"size:36;not null;index"`
	OfferedSkillID string `gorm:"size:36;not null"`
	WantedSkillID  string `gorm:"size:36;not null"`
	Message        string `gorm:"not null;default:''"`
	Status         string `gorm:"size:16;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (swapRow) TableName() string { return "swap_requests" }

func (r swapRow) model() model.SwapRequest {
	return model.SwapRequest{
		ID:             r.ID,
		RequesterID:    r.RequesterID,
		ReceiverID:     r.ReceiverID,
		OfferedSkillID: r.OfferedSkillID,
		WantedSkillID:  r.WantedSkillID,
		Message:        r.Message,
		Status:         model.SwapStatus(r.Status),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type sessionRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"size:36;not null;index"`
	TokenHash string `gorm:"size:64;not null;uniqueIndex"`
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

func (sessionRow) TableName() string { return "sessions" }

// Open opens (creating if needed) the sqlite database at path and migrates
// every table.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers anyway; one connection also keeps
	// ":memory:" databases from splitting across connections.
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&userRow{}, &swapRow{}, &sessionRow{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	for _, kind := range []model.SkillKind{model.SkillOffered, model.SkillWanted} {
		if err := db.Table(kind.Table()).AutoMigrate(&skillRow{}); err != nil {
			return fmt.Errorf("automigrate %s: %w", kind.Table(), err)
		}
		if err := backfillKeys(db, kind.Table()); err != nil {
			return fmt.Errorf("backfill %s: %w", kind.Table(), err)
		}
	}
	return nil
}

// backfillKeys fills the folded columns of rows written before they existed.
func backfillKeys(db *gorm.DB, table string) error {
	var rows []skillRow
	if err := db.Table(table).Where("name_key = ''").Find(&rows).Error; err != nil {
		return err
	}
	for i := range rows {
		rows[i].fold()
		err := db.Table(table).Where("id = ?", rows[i].ID).Updates(map[string]any{
			"name_key":        rows[i].NameKey,
			"description_key": rows[i].DescriptionKey,
			"category_key":    rows[i].CategoryKey,
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// New wires the gorm repositories into a Store.
func New(db *gorm.DB) repository.Store {
	return repository.Store{
		Users:    &UserRepo{db: db},
		Skills:   &SkillRepo{db: db},
		Swaps:    &SwapRepo{db: db},
		Sessions: &SessionRepo{db: db},
	}
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
