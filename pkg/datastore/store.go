package datastore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Record is one row keyed by column name.
type Record = map[string]any

// Store is the narrow data-store collaborator used by the repositories.
type Store interface {
	// Select returns the rows of table matching q, in q.Order.
	Select(ctx context.Context, table string, q Query) ([]Record, error)
	// First returns the first matching row or an error with CodeNotFound.
	First(ctx context.Context, table string, q Query) (Record, error)
	// Insert writes rec and returns the stored row, defaults included.
	Insert(ctx context.Context, table string, rec Record) (Record, error)
	// Update sets the columns of patch on every row matching where and
	// returns the number of rows changed. An empty filter is rejected.
	Update(ctx context.Context, table string, patch Record, where Filter) (int64, error)
	// Delete removes the rows matching where. An empty filter is rejected.
	Delete(ctx context.Context, table string, where Filter) (int64, error)
	Count(ctx context.Context, table string, where Filter) (int64, error)
	Ping(ctx context.Context) error
}

// Op is a comparison operator in a Cond.
type Op string

const (
	OpEq  Op = "="
	OpNeq Op = "<>"
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
	// OpIsNull matches NULL when Value is true and NOT NULL otherwise.
	OpIsNull Op = "is_null"
	// OpIn matches any element of Value, which must be a []any or []string.
	OpIn Op = "in"
	// OpContains is a case-insensitive substring match on text columns.
	OpContains Op = "contains"
)

// Cond is a single column condition.
type Cond struct {
	Column string
	Op     Op
	Value  any
}

// Filter is a conjunction of conditions.
type Filter []Cond

// Eq is shorthand for an equality condition.
func Eq(column string, v any) Cond { return Cond{Column: column, Op: OpEq, Value: v} }

// Where builds a filter of equality conditions from column/value pairs.
func Where(pairs ...any) Filter {
	f := make(Filter, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		col, _ := pairs[i].(string)
		f = append(f, Eq(col, pairs[i+1]))
	}
	return f
}

// Order sorts by one column.
type Order struct {
	Column string
	Desc   bool
}

// Query selects rows from a table. Zero Limit means no limit.
type Query struct {
	Columns []string
	Filter  Filter
	Order   []Order
	Limit   int
	Offset  int
}

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var (
	errBadIdentifier = errors.New("invalid identifier")
	errEmptyFilter   = errors.New("filter must not be empty")
	errEmptyRecord   = errors.New("record has no columns")
	errBadOperator   = errors.New("unsupported operator")
	errBadInValue    = errors.New("in operator needs a non-empty list")
	errBadPaging     = errors.New("limit and offset must not be negative")
)

func checkIdent(names ...string) error {
	for _, n := range names {
		if !identifier.MatchString(n) {
			return fmt.Errorf("%w: %q", errBadIdentifier, n)
		}
	}
	return nil
}
