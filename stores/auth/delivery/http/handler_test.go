package http_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/delivery"
	"github.com/x-xyz/escrow/base/ethereum"
	"github.com/x-xyz/escrow/base/validator"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/middleware"
	"github.com/x-xyz/escrow/service/cache"
	"github.com/x-xyz/escrow/service/cache/provider/primitive"
	authHttp "github.com/x-xyz/escrow/stores/auth/delivery/http"
	authMiddleware "github.com/x-xyz/escrow/stores/auth/delivery/http/middleware"
	"github.com/x-xyz/escrow/stores/auth/usecase"
)

const template = "nonce: %s"

func newServer(t *testing.T, admins ...string) (*echo.Echo, domain.AuthUsecase) {
	t.Helper()
	auth := usecase.New(&usecase.Config{
		JwtSecret:          "secret",
		SigningMsgTemplate: template,
		Nonces: cache.New(cache.ServiceConfig{
			Ttl:   time.Minute,
			Pfx:   "nonce",
			Cache: primitive.NewPrimitive("nonce", 1),
		}),
	})

	e := echo.New()
	e.Validator = validator.NewCustomValidator(validator.New())
	e.Use(middleware.InitMiddleware().AddContext())
	authHttp.New(e, auth, template)

	am := authMiddleware.New(auth, admins)
	authHttp.NewCheck(e, am)
	e.GET("/me", func(c echo.Context) error {
		return delivery.MakeJsonResp(c, http.StatusOK, c.Get("address"))
	}, am.Auth())
	e.GET("/admin", func(c echo.Context) error {
		return delivery.MakeJsonResp(c, http.StatusOK, "ok")
	}, am.Auth(), am.IsAdmin())
	return e, auth
}

func do(e *echo.Echo, method, path, body, token string) (int, delivery.JsonResponse) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	res := delivery.JsonResponse{}
	_ = json.Unmarshal(rec.Body.Bytes(), &res)
	return rec.Code, res
}

func TestSignInFlow(t *testing.T) {
	e, _ := newServer(t)

	key, account, err := ethereum.NewAccount()
	require.NoError(t, err)
	address := string(account)

	code, res := do(e, http.MethodGet, "/auth/nonce/"+address, "", "")
	require.Equal(t, http.StatusOK, code)
	nonce := res.Data.(string)

	sig, err := ethereum.SignMsg([]byte(fmt.Sprintf(template, nonce)), key)
	require.NoError(t, err)

	body := fmt.Sprintf(`{"address":"%s","signature":"%s"}`, address, sig)
	code, res = do(e, http.MethodPost, "/auth/sign", body, "")
	require.Equal(t, http.StatusCreated, code)
	token := res.Data.(string)

	code, res = do(e, http.MethodGet, "/me", "", token)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, strings.ToLower(address), res.Data)

	// replay
	code, res = do(e, http.MethodPost, "/auth/sign", body, "")
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, delivery.JsonResponseStatusFail, res.Status)
}

func TestSignRejectsBadInput(t *testing.T) {
	e, _ := newServer(t)

	code, _ := do(e, http.MethodGet, "/auth/nonce/0x123", "", "")
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(e, http.MethodPost, "/auth/sign", `{"address":"0x123","signature":"0x00"}`, "")
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(e, http.MethodPost, "/auth/sign", `{"address":`, "")
	require.Equal(t, http.StatusBadRequest, code)
}

func TestAuthMiddleware(t *testing.T) {
	admin := "0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D"
	e, auth := newServer(t, admin)

	code, _ := do(e, http.MethodGet, "/me", "", "")
	require.Contains(t, []int{http.StatusBadRequest, http.StatusUnauthorized}, code, "missing token")

	code, _ = do(e, http.MethodGet, "/me", "", "garbage")
	require.Equal(t, http.StatusUnauthorized, code)

	adminToken, err := auth.SignToken(ctx.Background(), domain.Address(admin))
	require.NoError(t, err)
	code, _ = do(e, http.MethodGet, "/admin", "", adminToken)
	require.Equal(t, http.StatusOK, code)

	userToken, err := auth.SignToken(ctx.Background(), "0x0000000000000000000000000000000000000001")
	require.NoError(t, err)
	code, _ = do(e, http.MethodGet, "/admin", "", userToken)
	require.Equal(t, http.StatusForbidden, code)
}

func TestCheck(t *testing.T) {
	e, auth := newServer(t)

	token, err := auth.SignToken(ctx.Background(), "0x0000000000000000000000000000000000000001")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/check", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	res := map[string]string{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "0x0000000000000000000000000000000000000001", res["address"])

	code, _ := do(e, http.MethodGet, "/check", "", "garbage")
	require.Equal(t, http.StatusUnauthorized, code)
}
