// internal/app/system/plans/plans.go

// Package plans maps plan tier identifiers to their feature limits.
//
// The table is a pure function over a fixed set of tiers; there is no
// mutable state. Subscriptions embed a snapshot of the limits at the time
// the plan is chosen.
package plans

import "github.com/tessergate/chatforge/internal/domain/models"

// Plan tier identifiers.
const (
	Free       = "free"
	Starter    = "starter"
	Pro        = "pro"
	Enterprise = "enterprise"
)

// Limits returns the feature limits for tier. Unknown tiers resolve to the
// free limits, which is also the default for users with no active or
// trialing subscription.
func Limits(tier string) models.PlanLimits {
	switch tier {
	case Starter:
		return models.PlanLimits{
			MaxDocuments:   50,
			MaxModels:      3,
			MaxStorageByte: 100 << 20, // 100 MB
			MaxTeamMembers: 1,
			APIAccess:      false,
		}
	case Pro:
		return models.PlanLimits{
			MaxDocuments:   500,
			MaxModels:      10,
			MaxStorageByte: 1 << 30, // 1 GB
			MaxTeamMembers: 10,
			APIAccess:      true,
		}
	case Enterprise:
		return models.PlanLimits{
			MaxDocuments:   5000,
			MaxModels:      50,
			MaxStorageByte: 10 << 30, // 10 GB
			MaxTeamMembers: 100,
			APIAccess:      true,
		}
	default:
		return models.PlanLimits{
			MaxDocuments:   5,
			MaxModels:      1,
			MaxStorageByte: 10 << 20, // 10 MB
			MaxTeamMembers: 1,
			APIAccess:      false,
		}
	}
}

// Valid reports whether tier names a known plan.
func Valid(tier string) bool {
	switch tier {
	case Free, Starter, Pro, Enterprise:
		return true
	}
	return false
}
