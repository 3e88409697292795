package handler

import (
    "errors"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/skillswap/internal/service"
)

func newCtx(method string) (echo.Context, *httptest.ResponseRecorder) {
    e := echo.New()
    rec := httptest.NewRecorder()
    return e.NewContext(httptest.NewRequest(method, "/", nil), rec), rec
}

func TestRespondError_Kinds(t *testing.T) {
    cases := map[service.Kind]int{
        service.KindValidation:   http.StatusBadRequest,
        service.KindUnauthorized: http.StatusUnauthorized,
        service.KindForbidden:    http.StatusForbidden,
        service.KindNotFound:     http.StatusNotFound,
        service.KindConflict:     http.StatusConflict,
        service.KindInternal:     http.StatusInternalServerError,
    }
    for kind, status := range cases {
        c, rec := newCtx(http.MethodGet)
        require.NoError(t, respondError(c, &service.Error{Kind: kind, Message: "boom"}))
        require.Equal(t, status, rec.Code, kind.String())
        require.JSONEq(t, `{"success":false,"message":"boom"}`, rec.Body.String())
    }
}

func TestRespondError_HidesForeignErrors(t *testing.T) {
    c, rec := newCtx(http.MethodGet)
    require.NoError(t, respondError(c, errors.New("dial tcp: connection refused")))
    require.Equal(t, http.StatusInternalServerError, rec.Code)
    require.JSONEq(t, `{"success":false,"message":"Something went wrong!"}`, rec.Body.String())
}

func TestHTTPErrorHandler(t *testing.T) {
    c, rec := newCtx(http.MethodGet)
    HTTPErrorHandler(echo.ErrStatusRequestEntityTooLarge, c)
    require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
    require.Contains(t, rec.Body.String(), "Request body too large.")

    c, rec = newCtx(http.MethodGet)
    HTTPErrorHandler(echo.NewHTTPError(http.StatusTeapot, "short and stout"), c)
    require.Equal(t, http.StatusTeapot, rec.Code)
    require.Contains(t, rec.Body.String(), "short and stout")

    c, rec = newCtx(http.MethodHead)
    HTTPErrorHandler(echo.ErrNotFound, c)
    require.Equal(t, http.StatusNotFound, rec.Code)
    require.Empty(t, rec.Body.String())

    c, rec = newCtx(http.MethodGet)
    HTTPErrorHandler(service.Conflict("taken"), c)
    require.Equal(t, http.StatusConflict, rec.Code)
}

func TestOk_MergesBody(t *testing.T) {
    c, rec := newCtx(http.MethodGet)
    require.NoError(t, ok(c, http.StatusCreated, "", echo.Map{"n": 1}))
    require.Equal(t, http.StatusCreated, rec.Code)
    require.JSONEq(t, `{"success":true,"n":1}`, rec.Body.String())
}
