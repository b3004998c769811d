package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	nh "github.com/fatflowers/membership/internal/app/service/notification_handler"
	"github.com/fatflowers/membership/pkg/logctx"
	"github.com/fatflowers/membership/pkg/response"
	"github.com/fatflowers/membership/pkg/types"
)

// @Summary      PayPal Webhook
// @Description  Handles PayPal instant payment notifications for recurring subscriptions. The body is the IPN form post.
// @Tags         Webhook
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        txn_type formData string true "IPN transaction type"
// @Param        custom formData string false "User id"
// @Param        item_number formData string false "Plan sku or id"
// @Param        subscr_id formData string false "Recurring profile id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/payment/webhook/paypal [post]
func ApiPaypalWebhook(h *nh.NotificationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logctx.FromGin(c, h.Logger)
		log.Infow("webhook_paypal_received")

		if err := h.HandleNotification(c, types.PaymentProviderPaypal); err != nil {
			log.Errorw("webhook_paypal_handle_error", "error", err.Error())
			c.JSON(http.StatusOK, response.ErrorT[any](errorCode(err), err.Error()))
			return
		}
		log.Infow("webhook_paypal_handled")
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterPaymentWebhookRoutes(r gin.IRouter, h *nh.NotificationHandler) {
	r.POST("/paypal", ApiPaypalWebhook(h))
}
