package subscription

import (
	"context"

	"github.com/fatflowers/membership/internal/models"
)

const ReasonPlanUnavailable = "This subscription is not available."

// PlanAvailable rejects switching to a plan that is no longer sold.
func PlanAvailable() ChangeValidator {
	return func(_ context.Context, _ *models.UserSubscription, candidate *models.Subscription) string {
		if !candidate.Available {
			return ReasonPlanUnavailable
		}
		return ""
	}
}
