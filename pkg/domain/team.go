package domain

import (
	"strings"
	"time"

	"github.com/ngolasuite/ngola/pkg/validator"
)

// Team groups people, optionally around one project.
type Team struct {
	ID          string
	Name        string
	Description string
	ProjectID   string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t Team) Validate() error {
	return validator.Apply(
		validator.Required("name", t.Name),
		validator.MaxLen("name", t.Name, 120),
		validator.Required("owner_id", t.OwnerID),
	)
}

func NewTeam(t Team) Team {
	t.Name = strings.TrimSpace(t.Name)
	return t
}

// TeamPatch carries the fields a team update sets.
type TeamPatch struct {
	Name        *string
	Description *string
	ProjectID   *string
}

func (tp TeamPatch) Apply(t Team) Team {
	if tp.Name != nil {
		t.Name = strings.TrimSpace(*tp.Name)
	}
	set(&t.Description, tp.Description)
	set(&t.ProjectID, tp.ProjectID)
	return t
}

func (tp TeamPatch) IsZero() bool {
	return tp == TeamPatch{}
}

// TeamMember belongs to one team. A member with a UserID is a registered
// user; without one it is a contact and needs a name and an email.
type TeamMember struct {
	ID       string
	TeamID   string
	Role     Role
	Name     string
	Email    string
	Phone    string
	Position string
	UserID   string
	JoinedAt time.Time
}

// IsRegistered reports whether the member is linked to a user account.
func (m TeamMember) IsRegistered() bool { return m.UserID != "" }

func (m TeamMember) Validate() error {
	contact := !m.IsRegistered()
	return validator.Apply(
		validator.Required("team_id", m.TeamID),
		validator.OneOf("role", m.Role, Roles),
		validator.When(contact, validator.Required("name", m.Name)),
		validator.When(contact, validator.Required("email", m.Email)),
		validator.When(m.Email != "", validator.Email("email", m.Email)),
		validator.When(m.Phone != "", validator.Phone("phone", m.Phone)),
	)
}

// NewTeamMember fills creation defaults: member role and normalized email.
func NewTeamMember(m TeamMember) TeamMember {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = NormalizeEmail(m.Email)
	if m.Role == "" {
		m.Role = RoleMember
	}
	return m
}

// TeamMemberPatch carries the fields a member update sets.
type TeamMemberPatch struct {
	Role     *Role
	Name     *string
	Phone    *string
	Position *string
}

func (mp TeamMemberPatch) Apply(m TeamMember) TeamMember {
	set(&m.Role, mp.Role)
	set(&m.Name, mp.Name)
	set(&m.Phone, mp.Phone)
	set(&m.Position, mp.Position)
	return m
}
