package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/delivery"
	hcdomain "github.com/x-xyz/escrow/domain/healthcheck"
)

type healthCheckHandler struct {
	healthCheck hcdomain.HealthCheckUsecase
}

func New(e *echo.Echo, us hcdomain.HealthCheckUsecase) {
	handler := &healthCheckHandler{
		healthCheck: us,
	}
	e.GET("/health", handler.check)
}

// check reports whether the configured stores answer
//
//	@Summary	Health check
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	delivery.JsonResponse{data=string}
//	@Failure	503	{object}	delivery.JsonResponse{data=string}
//	@Router		/health [get]
func (h *healthCheckHandler) check(c echo.Context) error {
	cc := c.Get("ctx").(ctx.Ctx)
	if err := h.healthCheck.Check(cc); err != nil {
		return delivery.MakeJsonResp(c, http.StatusServiceUnavailable, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}
