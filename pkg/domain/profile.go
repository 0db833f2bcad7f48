package domain

import (
	"strings"
	"time"
)

// Profile is the public part of a user account.
type Profile struct {
	ID          string
	Email       string
	DisplayName string
	Phone       string
	Department  string
	AvatarURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Name returns the display name, falling back to the email's local part.
func (p Profile) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	local, _, _ := strings.Cut(p.Email, "@")
	return local
}

// ProjectTemplate is a preset a new project can start from.
type ProjectTemplate struct {
	ID          string
	Name        string
	Description string
	Color       string
	Icon        string
	Phases      []string
	CreatedAt   time.Time
}

// Activity actions recorded by the workspace.
const (
	ActionProjectCreated  = "project.created"
	ActionProjectUpdated  = "project.updated"
	ActionTaskCreated     = "task.created"
	ActionTaskUpdated     = "task.updated"
	ActionTaskCompleted   = "task.completed"
	ActionTaskReopened    = "task.reopened"
	ActionResourceCreated = "resource.created"
	ActionResourceUpdated = "resource.updated"
	ActionTeamCreated     = "team.created"
	ActionTeamUpdated     = "team.updated"
	ActionMemberAdded     = "team.member_added"
	ActionMemberUpdated   = "team.member_updated"
)

// ActivityEntry is one line of the activity log.
type ActivityEntry struct {
	ID        string
	Action    string
	UserID    string
	ProjectID string
	TaskID    string
	Details   map[string]any
	CreatedAt time.Time
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
