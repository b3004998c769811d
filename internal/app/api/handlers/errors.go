package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	nh "github.com/fatflowers/membership/internal/app/service/notification_handler"
	subsvc "github.com/fatflowers/membership/internal/app/service/subscription"
	"github.com/fatflowers/membership/internal/app/service/sweeper"
	"github.com/fatflowers/membership/internal/store"
	"github.com/fatflowers/membership/pkg/logctx"
	"github.com/fatflowers/membership/pkg/response"
	"github.com/fatflowers/membership/pkg/types"
)

// errorCode maps service errors onto response codes.
func errorCode(err error) response.APIResponseCode {
	switch {
	case errors.Is(err, subsvc.ErrPlanNotFound), errors.Is(err, subsvc.ErrBindingNotFound), errors.Is(err, store.ErrNotFound):
		return response.APIResponseCodeNotFound
	case errors.Is(err, subsvc.ErrDuplicateBinding), errors.Is(err, store.ErrDuplicate), errors.Is(err, sweeper.ErrSweepInProgress):
		return response.APIResponseCodeConflict
	case errors.Is(err, subsvc.ErrInvalidPlan), errors.Is(err, types.ErrInvalidFilter),
		errors.Is(err, nh.ErrUnsupportedNotification), errors.Is(err, nh.ErrReceiverMismatch):
		return response.APIResponseCodeBadRequest
	}
	return response.APIResponseCodeError
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, msg))
}

// fail writes err in the response envelope, logging unexpected errors.
func fail(c *gin.Context, log *zap.SugaredLogger, err error) {
	code := errorCode(err)
	if code == response.APIResponseCodeError {
		logctx.FromGin(c, log).Errorw("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(http.StatusOK, response.ErrorT[any](code, err.Error()))
}
