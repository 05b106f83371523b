package http_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/escrow/middleware"
	"github.com/x-xyz/escrow/service/redis"
	redisMocks "github.com/x-xyz/escrow/service/redis/mocks"
	hcHttp "github.com/x-xyz/escrow/stores/healthcheck/delivery/http"
	"github.com/x-xyz/escrow/stores/healthcheck/repository"
	"github.com/x-xyz/escrow/stores/healthcheck/usecase"
)

func newServer(r redis.Service) *echo.Echo {
	e := echo.New()
	e.Use(middleware.InitMiddleware().AddContext())
	hcHttp.New(e, usecase.New(repository.New(nil, r)))
	return e
}

func check(e *echo.Echo) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	return rec
}

func TestNoStores(t *testing.T) {
	rec := check(newServer(nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"data":"ok"`)
}

func TestRedis(t *testing.T) {
	r := redisMocks.NewService(t)
	r.On("Set", mock.Anything, "healthcheck:testset", []byte("1"), mock.Anything).Return(nil).Once()
	require.Equal(t, http.StatusOK, check(newServer(r)).Code)

	r.On("Set", mock.Anything, "healthcheck:testset", []byte("1"), mock.Anything).Return(errors.New("conn refused")).Once()
	rec := check(newServer(r))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "conn refused")
	require.Contains(t, rec.Body.String(), `"status":"fail"`)
}
