package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/swapi-mirror/internal/model"
	"github.com/iliyamo/swapi-mirror/internal/repository"
	"github.com/iliyamo/swapi-mirror/internal/service"
	"github.com/iliyamo/swapi-mirror/internal/utils"
)

func call(h echo.HandlerFunc, method, target, body string, setup func(echo.Context)) *httptest.ResponseRecorder {
	e := echo.New()
	e.JSONSerializer = JSONSerializer{}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	_ = h(c)
	return rec
}

type brokenLedger struct{}

func (brokenLedger) Issue(context.Context, string, string) error { return errors.New("insert failed") }

func TestLoginFailsWhenLedgerRowCannotBeWritten(t *testing.T) {
	store := repository.NewMemory()
	hash, err := utils.HashPassword("pw123456", 4)
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), &model.User{Email: "a@x.com", PasswordHash: hash, Role: model.RoleUser}))
	codec, _ := utils.NewSessionCodec("s3cret", time.Hour)

	h := NewAuthHandler(store, codec, brokenLedger{}, 4)
	rec := call(h.Login, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"pw123456"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "token\"")
}

func TestLoginComparesPasswordForUnknownEmail(t *testing.T) {
	store := repository.NewMemory()
	hash, err := utils.HashPassword("pw123456", 4)
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), &model.User{Email: "a@x.com", PasswordHash: hash, Role: model.RoleUser}))

	var compared []string
	orig := checkPassword
	checkPassword = func(hash, plain string) bool {
		compared = append(compared, hash)
		return orig(hash, plain)
	}
	t.Cleanup(func() { checkPassword = orig })

	h := NewAuthHandler(store, nil, nil, 4)
	for _, body := range []string{
		`{"email":"nobody@x.com","password":"pw123456"}`,
		`{"email":"a@x.com","password":"wrong-pw"}`,
	} {
		rec := call(h.Login, http.MethodPost, "/auth/login", body, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid credentials")
	}
	require.Len(t, compared, 2, "both failures run one bcrypt comparison")
	assert.NotEmpty(t, compared[0])
	assert.NotEqual(t, hash, compared[0])
	assert.Equal(t, hash, compared[1])
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	h := NewAuthHandler(repository.NewMemory(), nil, nil, 4)
	rec := call(h.Login, http.MethodPost, "/auth/login", `{"email":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type brokenLister struct{}

func (brokenLister) Count(context.Context, model.Kind) (int, error) { return 0, errors.New("db down") }
func (brokenLister) List(context.Context, model.Kind, int, int) ([]model.Row, error) {
	return nil, errors.New("db down")
}

func TestListStoreFailureIs500(t *testing.T) {
	h := NewResourceHandler(service.NewReader(brokenLister{}), "https://mirror.example/")
	rec := call(h.List, http.MethodGet, "/v1/films", "", func(c echo.Context) {
		c.SetParamNames("resource")
		c.SetParamValues("films")
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestIndexUsesConfiguredBaseURL(t *testing.T) {
	h := NewResourceHandler(service.NewReader(repository.NewMemory()), "https://mirror.example/")
	rec := call(h.Index, http.MethodGet, "/v1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"films":"https://mirror.example/v1/films"`)
}

type brokenPurger struct{}

func (brokenPurger) DeleteAll(context.Context, model.Kind) (int64, error) { return 0, errors.New("locked") }

func TestPurge(t *testing.T) {
	withParam := func(v string) func(echo.Context) {
		return func(c echo.Context) {
			c.SetParamNames("resource")
			c.SetParamValues(v)
		}
	}
	h := NewAdminHandler(nil, brokenPurger{})

	rec := call(h.Purge, http.MethodDelete, "/admin/resources/droids?confirm=droids", "", withParam("droids"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(h.Purge, http.MethodDelete, "/admin/resources/films?confirm=people", "", withParam("films"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(h.Purge, http.MethodDelete, "/admin/resources/films?confirm=films", "", withParam("films"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestJSONSerializerRoundTrip(t *testing.T) {
	rec := call(func(c echo.Context) error {
		var in struct{ Name string }
		if err := c.Bind(&in); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
		return c.JSONPretty(http.StatusOK, echo.Map{"name": in.Name}, "  ")
	}, http.MethodPost, "/", `{"Name":"Leia"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{\n  \"name\": \"Leia\"\n}\n", rec.Body.String())
}
