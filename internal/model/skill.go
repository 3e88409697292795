package model

import (
    "strings"
    "time"
)

// SkillKind selects between the offered and wanted skill tables.
type SkillKind string

const (
    SkillOffered SkillKind = "offered"
    SkillWanted  SkillKind = "wanted"
)

// Valid reports whether k names one of the two skill tables.
func (k SkillKind) Valid() bool {
    return k == SkillOffered || k == SkillWanted
}

// Table returns the name of the table holding skills of this kind.
func (k SkillKind) Table() string {
    if k == SkillWanted {
        return "skills_wanted"
    }
    return "skills_offered"
}

// DefaultCategory is used when a skill is added without a category.
const DefaultCategory = "Other"

// Categories is the fixed category list offered to clients. Free-text
// categories are accepted as well.
var Categories = []string{
    "Web Development",
    "Mobile Development",
    "Design",
    "Data Science",
    "Marketing",
    "Business",
    "Languages",
    "Music",
    "Art",
    "Cooking",
    "Fitness",
    "Photography",
    DefaultCategory,
}

// Skill is a row of skills_offered or skills_wanted. Both tables share
// the same shape and ownership rules.
type Skill struct {
    ID          string    `json:"id"`
    UserID      string    `json:"user_id"`
    SkillName   string    `json:"skill_name"`
    Description string    `json:"description"`
    Category    string    `json:"category"`
    CreatedAt   time.Time `json:"created_at"`
}

// Matches reports whether term is a case-insensitive substring of the
// skill name, description or category.
func (s Skill) Matches(term string) bool {
    t := strings.ToLower(term)
    return strings.Contains(strings.ToLower(s.SkillName), t) ||
        strings.Contains(strings.ToLower(s.Description), t) ||
        strings.Contains(strings.ToLower(s.Category), t)
}

// SkillOwner holds the public fields of the user owning a skill.
type SkillOwner struct {
    ID           string `json:"id"`
    Name         string `json:"name"`
    Location     string `json:"location"`
    Avatar       string `json:"avatar"`
    Availability string `json:"availability"`
}

// OwnerOf projects u onto the fields exposed next to a skill.
func OwnerOf(u User) *SkillOwner {
    return &SkillOwner{
        ID:           u.ID,
        Name:         u.Username,
        Location:     u.Location,
        Avatar:       u.Avatar,
        Availability: u.Availability,
    }
}

// SkillWithOwner is a skill joined with its owner, used by browse and search.
type SkillWithOwner struct {
    Skill
    User *SkillOwner `json:"user,omitempty"`
}
