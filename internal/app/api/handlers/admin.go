package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	subsvc "github.com/fatflowers/membership/internal/app/service/subscription"
	"github.com/fatflowers/membership/internal/app/service/transaction"
	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/pkg/response"
	"github.com/fatflowers/membership/pkg/types"
)

// ListRequest is the filter, paging and sorting body of admin list endpoints.
type ListRequest struct {
	Filters []*types.CommonFilter `json:"filters"`
	types.Page
}

type ListPlansResponse struct {
	Items []*models.Subscription `json:"items"`
	Total int64                  `json:"total"`
}

// UserSubscriptionItem is a binding as shown to admins and users.
type UserSubscriptionItem struct {
	*models.UserSubscription
	Description string `json:"description"`
	Expired     bool   `json:"expired"`
}

func toUserSubscriptionItem(sub *subsvc.Service, us *models.UserSubscription) *UserSubscriptionItem {
	if us == nil {
		return nil
	}
	return &UserSubscriptionItem{UserSubscription: us, Description: sub.Describe(us), Expired: sub.Expired(us)}
}

type ListUserSubscriptionsResponse struct {
	Items []*UserSubscriptionItem `json:"items"`
	Total int64                   `json:"total"`
}

type IDRequest struct {
	ID string `json:"id" binding:"required"`
}

type FixUserSubscriptionResponse struct {
	Action           types.ReconcileAction `json:"action"`
	UserSubscription *UserSubscriptionItem `json:"user_subscription"`
}

// SweepRunner runs the expired subscription sweep on demand.
type SweepRunner interface {
	RunOnce(ctx context.Context) (*subsvc.SweepResult, error)
}

// @Summary      List Plans (Admin)
// @Description  Retrieves a paginated and filterable list of subscription plans.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ListRequest true "Filters, pagination and sorting"
// @Success      200  {object}  handlers.RespListPlans
// @Router       /api/v1/admin/list_plans [post]
func ApiListPlans(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		items, total, err := sub.ListPlans(c.Request.Context(), req.Filters, req.Page)
		if err != nil {
			fail(c, sub.Logger(), err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&ListPlansResponse{Items: items, Total: total}))
	}
}

// @Summary      Create Plan (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body subscription.PlanRequest true "Plan"
// @Success      200  {object}  handlers.RespPlan
// @Router       /api/v1/admin/create_plan [post]
func ApiCreatePlan(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subsvc.PlanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		req.ID = ""
		plan, err := sub.CreatePlan(c.Request.Context(), &req)
		if err != nil {
			fail(c, sub.Logger(), err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(plan))
	}
}

// @Summary      Update Plan (Admin)
// @Description  Overwrites an existing plan. Existing bindings are reconciled by the next fix or sweep.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body subscription.PlanRequest true "Plan with id"
// @Success      200  {object}  handlers.RespPlan
// @Router       /api/v1/admin/update_plan [post]
func ApiUpdatePlan(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subsvc.PlanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		plan, err := sub.UpdatePlan(c.Request.Context(), &req)
		if err != nil {
			fail(c, sub.Logger(), err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(plan))
	}
}

// @Summary      List User Subscriptions (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ListRequest true "Filters, pagination and sorting"
// @Success      200  {object}  handlers.RespListUserSubscriptions
// @Router       /api/v1/admin/list_user_subscriptions [post]
func ApiListUserSubscriptions(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		rows, total, err := sub.ListBindings(c.Request.Context(), req.Filters, req.Page)
		if err != nil {
			fail(c, sub.Logger(), err)
			return
		}
		items := lo.Map(rows, func(us *models.UserSubscription, _ int) *UserSubscriptionItem {
			return toUserSubscriptionItem(sub, us)
		})
		c.JSON(http.StatusOK, response.OKT(&ListUserSubscriptionsResponse{Items: items, Total: total}))
	}
}

// @Summary      Create User Subscription (Admin)
// @Description  Binds a user to a plan and reconciles group membership.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body subscription.CreateBindingRequest true "Binding"
// @Success      200  {object}  handlers.RespUserSubscription
// @Router       /api/v1/admin/create_user_subscription [post]
func ApiCreateUserSubscription(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subsvc.CreateBindingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if req.UserID == "" || req.Plan == "" {
			badRequest(c, "missing user_id or plan")
			return
		}
		ctx := c.Request.Context()
		us, err := sub.CreateBinding(ctx, &req)
		if err != nil {
			fail(c, sub.Logger(), err)
			return
		}
		if _, err := sub.Fix(ctx, us); err != nil {
			fail(c, sub.Logger(), err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(toUserSubscriptionItem(sub, us)))
	}
}

// @Summary      Update User Subscription (Admin)
// @Description  Edits active, expires or cancelled and reconciles group membership. Data is null when the edit removed the binding.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body subscription.UpdateBindingRequest true "Edit"
// @Success      200  {object}  handlers.RespUserSubscription
// @Router       /api/v1/admin/update_user_subscription [post]
func ApiUpdateUserSubscription(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subsvc.UpdateBindingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if req.ID == "" {
			badRequest(c, "missing id")
			return
		}
		us, err := sub.UpdateBinding(c.Request.Context(), &req)
		if err != nil {
			fail(c, sub.Logger(), err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(toUserSubscriptionItem(sub, us)))
	}
}

// @Summary      Fix User Subscription (Admin)
// @Description  Reconciles one binding's group membership with its validity.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body IDRequest true "Binding id"
// @Success      200  {object}  handlers.RespFixUserSubscription
// @Router       /api/v1/admin/fix_user_subscription [post]
func ApiFixUserSubscription(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IDRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		ctx := c.Request.Context()
		us, err := sub.GetBinding(ctx, req.ID)
		if err != nil {
			fail(c, sub.Logger(), err)
			return
		}
		action, err := sub.Fix(ctx, us)
		if err != nil {
			fail(c, sub.Logger(), err)
			return
		}
		res := &FixUserSubscriptionResponse{Action: action}
		if action != types.ReconcileActionDelete {
			res.UserSubscription = toUserSubscriptionItem(sub, us)
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Run Expired Subscription Sweep (Admin)
// @Description  Runs the sweep now. Fails with 40900 while a sweep is in progress.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespSweep
// @Router       /api/v1/admin/run_sweep [post]
func ApiRunSweep(runner SweepRunner, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := runner.RunOnce(c.Request.Context())
		if err != nil && res == nil {
			fail(c, log, err)
			return
		}
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT(response.APIResponseCodeError, res))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      List Transactions (Admin)
// @Description  Retrieves a paginated and filterable list of the subscription audit log.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body transaction.ScanTransactionsRequest true "Filters, pagination and sorting"
// @Success      200  {object}  handlers.RespListTransactions
// @Router       /api/v1/admin/list_transactions [post]
func ApiListTransactions(mgr transaction.TransactionManager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transaction.ScanTransactionsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := mgr.ScanTransactions(c.Request.Context(), &req)
		if err != nil {
			fail(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, sub *subsvc.Service, mgr transaction.TransactionManager, runner SweepRunner, log *zap.SugaredLogger) {
	r.POST("/list_plans", ApiListPlans(sub))
	r.POST("/create_plan", ApiCreatePlan(sub))
	r.POST("/update_plan", ApiUpdatePlan(sub))
	r.POST("/list_user_subscriptions", ApiListUserSubscriptions(sub))
	r.POST("/create_user_subscription", ApiCreateUserSubscription(sub))
	r.POST("/update_user_subscription", ApiUpdateUserSubscription(sub))
	r.POST("/fix_user_subscription", ApiFixUserSubscription(sub))
	r.POST("/run_sweep", ApiRunSweep(runner, log))
	r.POST("/list_transactions", ApiListTransactions(mgr, log))
}
