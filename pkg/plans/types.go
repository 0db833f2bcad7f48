package plans

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// ID identifies a plan. The set is closed.
type ID string

const (
	Basic        ID = "basic"
	Professional ID = "professional"
	Enterprise   ID = "enterprise"
)

// Valid reports whether id is one of the known plans.
func (id ID) Valid() bool {
	switch id {
	case Basic, Professional, Enterprise:
		return true
	}
	return false
}

// Limit is a numeric cap. Unlimited is a distinct value and must never be
// compared as a large number.
type Limit int64

// Unlimited marks an uncapped limit.
const Unlimited Limit = -1

// IsUnlimited reports whether l is the Unlimited sentinel.
func (l Limit) IsUnlimited() bool { return l == Unlimited }

func (l Limit) String() string {
	if l.IsUnlimited() {
		return "unlimited"
	}
	return strconv.FormatInt(int64(l), 10)
}

// Field names a numeric limit on a plan.
type Field string

const (
	FieldMaxProjects    Field = "max_projects"
	FieldMaxTeamMembers Field = "max_team_members"
)

// Feature names a boolean capability on a plan.
type Feature string

const (
	FeatureAdvancedReports Feature = "advanced_reports"
	FeatureChat            Feature = "chat"
	FeatureVideoCalls      Feature = "video_calls"
	FeatureAPIAccess       Feature = "api_access"
)

// Limits holds a plan's caps and feature flags.
type Limits struct {
	MaxProjects     Limit
	MaxTeamMembers  Limit
	AdvancedReports bool
	Chat            bool
	VideoCalls      bool
	APIAccess       bool
}

// Get returns the limit for field. The second result is false for unknown fields.
func (l Limits) Get(field Field) (Limit, bool) {
	switch field {
	case FieldMaxProjects:
		return l.MaxProjects, true
	case FieldMaxTeamMembers:
		return l.MaxTeamMembers, true
	}
	return 0, false
}

// Has reports whether feature f is enabled. Unknown features are disabled.
func (l Limits) Has(f Feature) bool {
	switch f {
	case FeatureAdvancedReports:
		return l.AdvancedReports
	case FeatureChat:
		return l.Chat
	case FeatureVideoCalls:
		return l.VideoCalls
	case FeatureAPIAccess:
		return l.APIAccess
	}
	return false
}

// Price is the monthly amount charged per seat.
// A ContactUs price carries no amount.
type Price struct {
	Amount    decimal.Decimal
	Currency  string
	ContactUs bool
}

// Plan is a subscription tier. Plans are values and are never mutated after
// the catalog is built.
type Plan struct {
	ID          ID
	Name        string
	Description string
	Price       Price
	PriceRef    string // payment provider price identifier
	ProductRef  string // payment provider product identifier
	Features    []string
	Popular     bool
	Limits      Limits
}
