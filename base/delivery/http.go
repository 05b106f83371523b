package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/service/query"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, query.ErrNotFound) {
			status = http.StatusNotFound
		}
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}

// StatusMapping pairs sentinel errors with the http status they answer with
type StatusMapping map[int][]error

// Status returns the first status whose errors match err, or fallback
func (m StatusMapping) Status(err error, fallback int) int {
	for status, errs := range m {
		for _, e := range errs {
			if errors.Is(err, e) {
				return status
			}
		}
	}
	return fallback
}

// MakeErrorResp answers err with the status m assigns to it, 500 otherwise
func MakeErrorResp(c echo.Context, m StatusMapping, err error) error {
	return MakeJsonResp(c, m.Status(err, http.StatusInternalServerError), err)
}
