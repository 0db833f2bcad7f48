package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ngolasuite/ngola/pkg/validator"
)

// Project is the top-level unit of work.
type Project struct {
	ID          string
	Name        string
	Description string
	Status      ProjectStatus
	TemplateID  string
	Location    string
	Latitude    *float64
	Longitude   *float64
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *decimal.Decimal
	Priority    Priority
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the structural rules for a project.
func (p Project) Validate() error {
	return validator.Apply(
		validator.Required("name", p.Name),
		validator.MaxLen("name", p.Name, 200),
		validator.OneOf("status", p.Status, ProjectStatuses),
		validator.Required("owner_id", p.OwnerID),
		validator.When(p.Budget != nil, nonNegative("budget", p.Budget)),
		validator.When(p.Priority != 0, validator.Between("priority", p.Priority, PriorityMin, PriorityMax)),
		validator.When(p.Latitude != nil, latitude("latitude", p.Latitude)),
		validator.When(p.Longitude != nil, longitude("longitude", p.Longitude)),
		validator.When(p.StartDate != nil && p.EndDate != nil, notBefore("end_date", p.EndDate, p.StartDate)),
	)
}

// NewProject fills creation defaults: trimmed name and planning status.
func NewProject(p Project) Project {
	p.Name = strings.TrimSpace(p.Name)
	if p.Status == "" {
		p.Status = ProjectPlanning
	}
	return p
}

// ProjectPatch carries the fields an update sets. Nil fields are left alone.
type ProjectPatch struct {
	Name        *string
	Description *string
	Status      *ProjectStatus
	TemplateID  *string
	Location    *string
	Latitude    *float64
	Longitude   *float64
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *decimal.Decimal
	Priority    *Priority
}

// Apply returns p with the patch applied.
func (pp ProjectPatch) Apply(p Project) Project {
	if pp.Name != nil {
		p.Name = strings.TrimSpace(*pp.Name)
	}
	set(&p.Description, pp.Description)
	set(&p.Status, pp.Status)
	set(&p.TemplateID, pp.TemplateID)
	set(&p.Location, pp.Location)
	set(&p.Priority, pp.Priority)
	setPtr(&p.Latitude, pp.Latitude)
	setPtr(&p.Longitude, pp.Longitude)
	setPtr(&p.StartDate, pp.StartDate)
	setPtr(&p.EndDate, pp.EndDate)
	setPtr(&p.Budget, pp.Budget)
	return p
}

// IsZero reports whether the patch sets nothing.
func (pp ProjectPatch) IsZero() bool {
	return pp == ProjectPatch{}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setPtr[T any](dst **T, v *T) {
	if v != nil {
		c := *v
		*dst = &c
	}
}

func nonNegative(field string, v *decimal.Decimal) validator.Rule {
	if v == nil {
		return validator.NonNegative(field, decimal.Zero)
	}
	return validator.NonNegative(field, *v)
}

func latitude(field string, v *float64) validator.Rule {
	if v == nil {
		return validator.Latitude(field, 0)
	}
	return validator.Latitude(field, *v)
}

func longitude(field string, v *float64) validator.Rule {
	if v == nil {
		return validator.Longitude(field, 0)
	}
	return validator.Longitude(field, *v)
}

func notBefore(field string, v, start *time.Time) validator.Rule {
	if v == nil || start == nil {
		return validator.When(false, validator.Rule{})
	}
	return validator.NotBefore(field, *v, *start)
}
