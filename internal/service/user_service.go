package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/skillswap/internal/model"
	"github.com/iliyamo/skillswap/internal/repository"
	"github.com/iliyamo/skillswap/internal/storage"
	"github.com/iliyamo/skillswap/internal/utils"
)

// DefaultAvatarMaxBytes caps avatar uploads at 5 MiB.
const DefaultAvatarMaxBytes = 5 << 20

const (
	msgUserNotFound   = "User not found."
	msgRegisterFields = "Username, email, and password are required."
	msgLoginFields    = "Email and password are required."
	msgBadCredentials = "Invalid email or password."
	msgEmailTaken     = "User already exists with this email."
	msgInvalidPrivacy = "Privacy must be public or private."
	msgOnlyImages     = "Only image files are allowed."
	msgNoFile         = "No file uploaded."
)

// UserService manages registration, credentials, profiles and avatars.
type UserService struct {
	users          repository.UserRepository
	objects        storage.ObjectStore
	bcryptCost     int
	avatarMaxBytes int64
	now            func() time.Time
}

// UserOptions tunes a UserService. Zero values pick the defaults.
type UserOptions struct {
	BcryptCost     int
	AvatarMaxBytes int64
}

func NewUserService(users repository.UserRepository, objects storage.ObjectStore, opts UserOptions) *UserService {
	if opts.AvatarMaxBytes <= 0 {
		opts.AvatarMaxBytes = DefaultAvatarMaxBytes
	}
	return &UserService{
		users:          users,
		objects:        objects,
		bcryptCost:     opts.BcryptCost,
		avatarMaxBytes: opts.AvatarMaxBytes,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// RegisterInput is what a new account needs. Location, Privacy and
// Availability are optional.
type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	Location     string
	Privacy      string
	Availability string
}

// Register creates a user with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, Validation(msgRegisterFields)
	}
	privacy := model.PrivacyPublic
	if in.Privacy != "" {
		privacy = model.Privacy(in.Privacy)
		if !privacy.Valid() {
			return nil, Validation(msgInvalidPrivacy)
		}
	}
	availability := strings.TrimSpace(in.Availability)
	if availability == "" {
		availability = model.DefaultAvailability
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, Internal("Registration failed", err)
	}
	now := s.now()
	u := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Location:     strings.TrimSpace(in.Location),
		Privacy:      privacy,
		Availability: availability,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, Conflict(msgEmailTaken)
		}
		return nil, Internal("Registration failed", err)
	}
	return u, nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords
// produce the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, Validation(msgLoginFields)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, Unauthorized(msgBadCredentials)
		}
		return nil, Internal("Login failed", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, Unauthorized(msgBadCredentials)
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupErr(err)
	}
	return u, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.lookupErr(err)
	}
	return u, nil
}

// ProfileUpdate is a partial profile change. Nil fields are kept.
type ProfileUpdate struct {
	Username     *string
	Location     *string
	Privacy      *string
	Availability *string
}

// Update applies a partial profile change. Avatars change through
// UploadAvatar only.
func (s *UserService) Update(ctx context.Context, id string, p ProfileUpdate) (*model.User, error) {
	var upd model.UserUpdate
	if p.Username != nil {
		name := strings.TrimSpace(*p.Username)
		if name == "" {
			return nil, Validation("Username cannot be empty.")
		}
		upd.Username = &name
	}
	if p.Location != nil {
		loc := strings.TrimSpace(*p.Location)
		upd.Location = &loc
	}
	if p.Privacy != nil {
		pv := model.Privacy(*p.Privacy)
		if !pv.Valid() {
			return nil, Validation(msgInvalidPrivacy)
		}
		upd.Privacy = &pv
	}
	if p.Availability != nil {
		av := strings.TrimSpace(*p.Availability)
		upd.Availability = &av
	}
	u, err := s.users.Update(ctx, id, upd)
	if err != nil {
		return nil, s.lookupErr(err)
	}
	return u, nil
}

// ListPublic returns every public profile, newest first.
func (s *UserService) ListPublic(ctx context.Context) ([]model.User, error) {
	users, err := s.users.ListPublic(ctx)
	if err != nil {
		return nil, Internal("Error fetching users.", err)
	}
	return users, nil
}

// AvatarUpload is a single uploaded file.
type AvatarUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadAvatar validates the file as an image, stores it and records its
// URL on the user. Storage and the user row are not updated atomically:
// when the row update fails the stored object is left behind.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, f *AvatarUpload) (*model.User, error) {
	if f == nil || f.Body == nil {
		return nil, Validation(msgNoFile)
	}
	if !strings.HasPrefix(strings.ToLower(f.ContentType), "image/") {
		return nil, Validation(msgOnlyImages)
	}
	if f.Size > s.avatarMaxBytes {
		return nil, Validation(fmt.Sprintf("File too large (max %dMB).", s.avatarMaxBytes>>20))
	}

	// Read one byte past the limit so a lying Size is still caught.
	data, err := io.ReadAll(io.LimitReader(f.Body, s.avatarMaxBytes+1))
	if err != nil {
		return nil, Internal("Error uploading avatar.", err)
	}
	if len(data) == 0 {
		return nil, Validation(msgNoFile)
	}
	if int64(len(data)) > s.avatarMaxBytes {
		return nil, Validation(fmt.Sprintf("File too large (max %dMB).", s.avatarMaxBytes>>20))
	}
	sniffed := http.DetectContentType(data)
	if _, ok := imageExt[sniffed]; !ok {
		return nil, Validation(msgOnlyImages)
	}

	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, s.lookupErr(err)
	}

	key := AvatarKey(userID, s.now(), f.Filename, sniffed)
	url, err := s.objects.Put(ctx, key, sniffed, bytes.NewReader(data))
	if err != nil {
		return nil, Internal("Error uploading avatar.", err)
	}

	u, err := s.users.Update(ctx, userID, model.UserUpdate{Avatar: &url})
	if err != nil {
		slog.ErrorContext(ctx, "avatar stored but profile update failed", "user_id", userID, "key", key, "err", err)
		return nil, s.lookupErr(err)
	}

	if old, ok := s.objects.KeyOf(current.Avatar); ok && current.Avatar != "" && old != key {
		if err := s.objects.Delete(ctx, old); err != nil {
			slog.WarnContext(ctx, "failed to delete previous avatar", "key", old, "err", err)
		}
	}
	return u, nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// imageExt maps the image types http.DetectContentType reports to the
// extension stored objects get. Static file servers pick Content-Type from
// the extension, so it must follow the sniffed bytes, never the client.
var imageExt = map[string]string{
	"image/png":    ".png",
	"image/jpeg":   ".jpg",
	"image/gif":    ".gif",
	"image/webp":   ".webp",
	"image/bmp":    ".bmp",
	"image/x-icon": ".ico",
}

// AvatarKey builds avatars/<userID>_<unixMillis>_<name><ext>. The client's
// file name is stripped of its extension and reduced to a safe character
// set; ext comes from contentType.
func AvatarKey(userID string, at time.Time, filename, contentType string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	name := strings.Trim(unsafeName.ReplaceAllString(base, "_"), "._")
	if name == "" {
		name = "avatar"
	}
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	return fmt.Sprintf("avatars/%s_%d_%s%s", userID, at.UnixMilli(), name, imageExt[contentType])
}

func (s *UserService) lookupErr(err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return NotFound(msgUserNotFound)
	}
	return Internal("Error fetching user profile.", err)
}
