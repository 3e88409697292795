package model

import "time"

// SwapStatus is the lifecycle state of a swap request.
type SwapStatus string

const (
    SwapPending   SwapStatus = "pending"
    SwapAccepted  SwapStatus = "accepted"
    SwapDeclined  SwapStatus = "declined"
    SwapCompleted SwapStatus = "completed"
)

// Settable reports whether a receiver may move a swap into s. Prior
// states are not checked.
func (s SwapStatus) Settable() bool {
    switch s {
    case SwapAccepted, SwapDeclined, SwapCompleted:
        return true
    }
    return false
}

// SwapRequest mirrors the swap_requests table.
type SwapRequest struct {
    ID             string     `json:"id"`
    RequesterID    string     `json:"requester_id"`
    ReceiverID     string     `json:"receiver_id"`
    OfferedSkillID string     `json:"offered_skill_id"`
    WantedSkillID  string     `json:"wanted_skill_id"`
    Message        string     `json:"message"`
    Status         SwapStatus `json:"status"`
    CreatedAt      time.Time  `json:"created_at"`
    UpdatedAt      time.Time  `json:"updated_at"`
}

// UserSummary is the slice of a user shown on a swap.
type UserSummary struct {
    ID       string `json:"id"`
    Name     string `json:"name"`
    Avatar   string `json:"avatar"`
    Location string `json:"location"`
}

// SkillSummary is the slice of a skill shown on a swap.
type SkillSummary struct {
    ID        string `json:"id"`
    SkillName string `json:"skill_name"`
    Category  string `json:"category"`
}

// SwapDetail is a swap enriched with the parties and skills it refers to.
// A summary is nil when the referenced row no longer exists.
type SwapDetail struct {
    SwapRequest
    Requester    *UserSummary  `json:"requester,omitempty"`
    Receiver     *UserSummary  `json:"receiver,omitempty"`
    OfferedSkill *SkillSummary `json:"offered_skill,omitempty"`
    WantedSkill  *SkillSummary `json:"wanted_skill,omitempty"`
}

// SummaryOf projects u onto a UserSummary.
func SummaryOf(u User) *UserSummary {
    return &UserSummary{ID: u.ID, Name: u.Username, Avatar: u.Avatar, Location: u.Location}
}

// SkillSummaryOf projects s onto a SkillSummary.
func SkillSummaryOf(s Skill) *SkillSummary {
    return &SkillSummary{ID: s.ID, SkillName: s.SkillName, Category: s.Category}
}
