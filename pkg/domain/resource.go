package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ngolasuite/ngola/pkg/validator"
)

// Resource is a financial, material or human allocation on a project.
// Quantity and CostPerUnit stay nil when not set so "no cost" and
// "zero cost" remain distinguishable.
type Resource struct {
	ID          string
	Name        string
	Type        ResourceType
	ProjectID   string
	TaskID      string
	AssigneeID  string
	Quantity    *decimal.Decimal
	Unit        string
	CostPerUnit *decimal.Decimal
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r Resource) Validate() error {
	return validator.Apply(
		validator.Required("name", r.Name),
		validator.OneOf("type", r.Type, ResourceTypes),
		validator.Required("project_id", r.ProjectID),
		validator.When(r.Quantity != nil, nonNegative("quantity", r.Quantity)),
		validator.When(r.CostPerUnit != nil, nonNegative("cost_per_unit", r.CostPerUnit)),
	)
}

func NewResource(r Resource) Resource {
	r.Name = strings.TrimSpace(r.Name)
	return r
}

// ResourcePatch carries the fields a resource update may set. The type is
// not among them.
type ResourcePatch struct {
	Name        *string
	TaskID      *string
	AssigneeID  *string
	Quantity    *decimal.Decimal
	Unit        *string
	CostPerUnit *decimal.Decimal
	Notes       *string
}

func (rp ResourcePatch) Apply(r Resource) Resource {
	if rp.Name != nil {
		r.Name = strings.TrimSpace(*rp.Name)
	}
	set(&r.TaskID, rp.TaskID)
	set(&r.AssigneeID, rp.AssigneeID)
	set(&r.Unit, rp.Unit)
	set(&r.Notes, rp.Notes)
	setPtr(&r.Quantity, rp.Quantity)
	setPtr(&r.CostPerUnit, rp.CostPerUnit)
	return r
}

func (rp ResourcePatch) IsZero() bool {
	return rp == ResourcePatch{}
}
