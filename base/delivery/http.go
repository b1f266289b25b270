package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/service/query"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
	Code   string             `json:"code,omitempty"`
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindValidation:    http.StatusBadRequest,
	domain.KindState:         http.StatusConflict,
	domain.KindFunds:         http.StatusPaymentRequired,
	domain.KindAuthorization: http.StatusForbidden,
	domain.KindTransfer:      http.StatusUnprocessableEntity,
}

// StatusOf maps an engine error to its http status, fallback is used for
// unclassified errors
func StatusOf(err error, fallback int) int {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, query.ErrNotFound) {
		return http.StatusNotFound
	}
	if kind, ok := domain.KindOf(err); ok {
		return kindStatus[kind]
	}
	return fallback
}

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	code := ""
	if err, ok := data.(error); ok {
		status = StatusOf(err, status)
		var de *domain.Error
		if errors.As(err, &de) {
			code = de.Code
		}
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail, code})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{Data: data, Status: JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}
