package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/fatflowers/membership/internal/app/api/middleware"
	subsvc "github.com/fatflowers/membership/internal/app/service/subscription"
	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/pkg/response"
)

type CurrentSubscriptionResponse struct {
	Subscription     *models.Subscription  `json:"subscription"`
	UserSubscription *UserSubscriptionItem `json:"user_subscription"`
}

// ChangeRequest names the candidate plan by id or sku.
type ChangeRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// ChangeResponse lists the reasons blocking a change; empty means allowed or done.
type ChangeResponse struct {
	Allowed          bool                  `json:"allowed"`
	Reasons          []string              `json:"reasons"`
	UserSubscription *UserSubscriptionItem `json:"user_subscription,omitempty"`
}

// @Summary      Current Subscription
// @Description  Returns the plan whose group the user belongs to and the matching binding. Both are null for a user without subscriptions.
// @Tags         Subscription
// @Produce      json
// @Param        X-User-ID header string true "User id"
// @Success      200  {object}  handlers.RespCurrentSubscription
// @Router       /api/v1/subscription/current [get]
func ApiCurrentSubscription(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := c.GetString(mw.GinUserIDKey)
		plan, err := sub.GetSubscriptionFor(ctx, userID)
		if err != nil {
			fail(c, sub.Logger(), err)
			return
		}
		us, err := sub.CurrentBinding(ctx, userID)
		if err != nil && !errors.Is(err, subsvc.ErrBindingNotFound) {
			fail(c, sub.Logger(), err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&CurrentSubscriptionResponse{Subscription: plan, UserSubscription: toUserSubscriptionItem(sub, us)}))
	}
}

// resolveChange loads the caller's current binding and the candidate plan.
func resolveChange(c *gin.Context, sub *subsvc.Service) (*models.UserSubscription, *models.Subscription, bool) {
	var req ChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return nil, nil, false
	}
	ctx := c.Request.Context()
	us, err := sub.CurrentBinding(ctx, c.GetString(mw.GinUserIDKey))
	if err != nil {
		fail(c, sub.Logger(), err)
		return nil, nil, false
	}
	plan, err := sub.GetPlanByRef(ctx, req.Plan)
	if err != nil {
		fail(c, sub.Logger(), err)
		return nil, nil, false
	}
	return us, plan, true
}

// @Summary      Try Plan Change
// @Description  Reports whether the caller may switch to the plan, and why not.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        X-User-ID header string true "User id"
// @Param        request body ChangeRequest true "Candidate plan"
// @Success      200  {object}  handlers.RespChange
// @Router       /api/v1/subscription/try_change [post]
func ApiTryChange(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		us, plan, ok := resolveChange(c, sub)
		if !ok {
			return
		}
		reasons := sub.TryChange(c.Request.Context(), us, plan)
		c.JSON(http.StatusOK, response.OKT(&ChangeResponse{Allowed: len(reasons) == 0, Reasons: reasons}))
	}
}

// @Summary      Change Plan
// @Description  Switches the caller's current binding to the plan. Choosing the current plan resubscribes.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        X-User-ID header string true "User id"
// @Param        request body ChangeRequest true "Target plan"
// @Success      200  {object}  handlers.RespChange
// @Router       /api/v1/subscription/change [post]
func ApiChangePlan(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		us, plan, ok := resolveChange(c, sub)
		if !ok {
			return
		}
		reasons, err := sub.ChangePlan(c.Request.Context(), us, plan)
		if err != nil {
			fail(c, sub.Logger(), err)
			return
		}
		res := &ChangeResponse{Allowed: len(reasons) == 0, Reasons: reasons}
		if res.Allowed {
			res.UserSubscription = toUserSubscriptionItem(sub, us)
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Cancel Subscription
// @Description  Stops renewal of the caller's current subscription. Access continues until it expires.
// @Tags         Subscription
// @Produce      json
// @Param        X-User-ID header string true "User id"
// @Success      200  {object}  handlers.RespUserSubscription
// @Router       /api/v1/subscription/cancel [post]
func ApiCancel(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		us, err := sub.CurrentBinding(ctx, c.GetString(mw.GinUserIDKey))
		if err != nil {
			fail(c, sub.Logger(), err)
			return
		}
		if err := sub.Cancel(ctx, us); err != nil {
			fail(c, sub.Logger(), err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(toUserSubscriptionItem(sub, us)))
	}
}

// @Summary      Resubscribe
// @Description  Undoes a pending cancellation of the caller's current subscription.
// @Tags         Subscription
// @Produce      json
// @Param        X-User-ID header string true "User id"
// @Success      200  {object}  handlers.RespChange
// @Router       /api/v1/subscription/resubscribe [post]
func ApiResubscribe(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		us, err := sub.CurrentBinding(ctx, c.GetString(mw.GinUserIDKey))
		if err != nil {
			fail(c, sub.Logger(), err)
			return
		}
		reasons, err := sub.Resubscribe(ctx, us)
		if err != nil {
			fail(c, sub.Logger(), err)
			return
		}
		res := &ChangeResponse{Allowed: len(reasons) == 0, Reasons: reasons}
		if res.Allowed {
			res.UserSubscription = toUserSubscriptionItem(sub, us)
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// RegisterUserRoutes expects r to run UserMiddleware.
func RegisterUserRoutes(r gin.IRouter, sub *subsvc.Service) {
	r.GET("/current", ApiCurrentSubscription(sub))
	r.POST("/try_change", ApiTryChange(sub))
	r.POST("/change", ApiChangePlan(sub))
	r.POST("/cancel", ApiCancel(sub))
	r.POST("/resubscribe", ApiResubscribe(sub))
}
