package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
)

func newTestHandler(t *testing.T) (*Handler, *Service) {
	t.Helper()
	svc, _, _ := newTestService()
	return NewHandler(svc, time.Hour, false), svc
}

func TestHandler_RegisterReturnsCreated(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	body := `{"username":"web1","email":"web1@hospital.test","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["role"] != string(auth.RoleGeneralStaff) {
		t.Fatalf("role = %v", resp["role"])
	}
}

func TestHandler_LoginSetsHTTPOnlyCookie(t *testing.T) {
	h, svc := newTestHandler(t)
	if _, err := svc.Register(context.Background(), RegisterInput{
		Username: "cookie", Email: "cookie@hospital.test", Password: "secret123",
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	e := echo.New()
	body := `{"email":"cookie@hospital.test","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == auth.CookieName {
			cookie = ck
		}
	}
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if !cookie.HttpOnly {
		t.Fatal("cookie must be httpOnly")
	}
	if cookie.Value == "" {
		t.Fatal("empty cookie value")
	}

	var resp struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token != cookie.Value {
		t.Fatal("body token and cookie token differ")
	}
	if resp.User.Email != "cookie@hospital.test" {
		t.Fatalf("user email = %s", resp.User.Email)
	}
}

func TestHandler_GetByIDRejectsBadUUID(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/users/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.GetByID(c)
	if err == nil {
		t.Fatal("expected error for malformed id")
	}
}
