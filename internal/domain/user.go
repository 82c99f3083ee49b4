package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Bio            string    `json:"bio"`
	SkillsOffering string    `json:"skills_offering"`
	SkillsSeeking  string    `json:"skills_seeking"`
	ProfileImage   *string   `json:"profile_image,omitempty"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) SkillsOfferingList() []string {
	return ParseSkills(u.SkillsOffering)
}

func (u *User) SkillsSeekingList() []string {
	return ParseSkills(u.SkillsSeeking)
}
