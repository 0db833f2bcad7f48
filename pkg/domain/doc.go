// Package domain defines the project-management entities and the pure
// functions derived from them.
//
// Entities are plain values. Each has a Validate method returning
// validator.ValidationErrors, a New* constructor applying creation defaults,
// and a *Patch type for partial updates. Resources have no patchable type.
//
// Derived views (ProjectProgress, IsOverdue, ResourceTotalCost, GroupByStatus)
// work on already-fetched slices and never touch storage. Optional amounts are
// carried as *decimal.Decimal and only collapse to zero inside arithmetic.
//
// Priority has a single tier mapping, Priority.Tier: 1 low, 2 medium,
// 3 high, 4 and 5 urgent.
package domain
