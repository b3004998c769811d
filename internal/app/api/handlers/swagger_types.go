package handlers

import (
	subsvc "github.com/fatflowers/membership/internal/app/service/subscription"
	"github.com/fatflowers/membership/internal/app/service/transaction"
	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

type RespListPlans struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ListPlansResponse        `json:"data"`
}

type RespPlan struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Subscription      `json:"data"`
}

type RespListUserSubscriptions struct {
	Code    response.APIResponseCode      `json:"code"`
	Message string                        `json:"message"`
	Data    ListUserSubscriptionsResponse `json:"data"`
}

type RespUserSubscription struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    *UserSubscriptionItem    `json:"data"`
}

type RespFixUserSubscription struct {
	Code    response.APIResponseCode    `json:"code"`
	Message string                      `json:"message"`
	Data    FixUserSubscriptionResponse `json:"data"`
}

type RespSweep struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    subsvc.SweepResult       `json:"data"`
}

type RespListTransactions struct {
	Code    response.APIResponseCode             `json:"code"`
	Message string                               `json:"message"`
	Data    transaction.ScanTransactionsResponse `json:"data"`
}

type RespCurrentSubscription struct {
	Code    response.APIResponseCode    `json:"code"`
	Message string                      `json:"message"`
	Data    CurrentSubscriptionResponse `json:"data"`
}

type RespChange struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ChangeResponse           `json:"data"`
}
