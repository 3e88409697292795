package model

import "time"

// Privacy controls whether a profile appears in public listings.
type Privacy string

const (
    PrivacyPublic  Privacy = "public"
    PrivacyPrivate Privacy = "private"
)

// Valid reports whether p is one of the known privacy settings.
func (p Privacy) Valid() bool {
    return p == PrivacyPublic || p == PrivacyPrivate
}

// DefaultAvailability is assigned to users who register without one.
const DefaultAvailability = "available"

// User represents an application user record as stored in the
// `users` table. PasswordHash never leaves the service layer; handlers
// render users through View.
//
// Fields:
//  ID           – server generated UUID.
//  Email        – unique, lower-cased email address.
//  Username     – display name (the browser client calls it "name").
//  PasswordHash – bcrypt hash of the password.
//  Location     – optional free text.
//  Avatar       – public URL of the uploaded avatar, empty when unset.
//  Privacy      – public or private.
//  Availability – free text describing when the user can swap.
type User struct {
    ID           string
    Email        string
    Username     string
    PasswordHash string
    Location     string
    Avatar       string
    Privacy      Privacy
    Availability string
    CreatedAt    time.Time
    UpdatedAt    time.Time
}

// UserView is the JSON projection of a user. It deliberately has no
// password field. Name mirrors Username for clients that read either key.
type UserView struct {
    ID           string    `json:"id"`
    Email        string    `json:"email,omitempty"`
    Username     string    `json:"username"`
    Name         string    `json:"name"`
    Location     string    `json:"location"`
    Avatar       string    `json:"avatar"`
    Privacy      Privacy   `json:"privacy"`
    Availability string    `json:"availability"`
    CreatedAt    time.Time `json:"created_at"`
    UpdatedAt    time.Time `json:"updated_at"`
}

// View returns the safe JSON projection of u.
func (u User) View() UserView {
    return UserView{
        ID:           u.ID,
        Email:        u.Email,
        Username:     u.Username,
        Name:         u.Username,
        Location:     u.Location,
        Avatar:       u.Avatar,
        Privacy:      u.Privacy,
        Availability: u.Availability,
        CreatedAt:    u.CreatedAt,
        UpdatedAt:    u.UpdatedAt,
    }
}

// PublicView is View without the email address, for listings anyone can read.
func (u User) PublicView() UserView {
    v := u.View()
    v.Email = ""
    return v
}

// UserUpdate carries a partial profile update. Nil fields are left untouched.
type UserUpdate struct {
    Username     *string
    Location     *string
    Privacy      *Privacy
    Availability *string
    Avatar       *string
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
    return u.Username == nil && u.Location == nil && u.Privacy == nil && u.Availability == nil && u.Avatar == nil
}

// Apply copies the non-nil fields of upd onto u.
func (u *User) Apply(upd UserUpdate) {
    if upd.Username != nil {
        u.Username = *upd.Username
    }
    if upd.Location != nil {
        u.Location = *upd.Location
    }
    if upd.Privacy != nil {
        u.Privacy = *upd.Privacy
    }
    if upd.Availability != nil {
        u.Availability = *upd.Availability
    }
    if upd.Avatar != nil {
        u.Avatar = *upd.Avatar
    }
}
