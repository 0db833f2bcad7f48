// Package reporting computes dashboard and report aggregates from already
// fetched domain collections. Nothing here performs I/O; callers fetch, then
// recompute.
//
// Priority buckets come from domain.Priority.Tier, the single mapping used
// everywhere. Money is summed with shopspring/decimal and formatted for the
// pt-AO locale through golang.org/x/text.
package reporting
