// Package entitlement turns a subscription record into the limits and feature
// flags its owner may use.
//
// ResolveEffectivePlan picks the plan, IsWithinLimit and HasFeature answer
// point questions about it, and Enforcer combines limits with live usage
// counters to gate creation of projects and team members.
package entitlement
