package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperr"
)

type mapResolver struct {
	users map[uuid.UUID]*Identity
}

func (r *mapResolver) ResolveIdentity(_ context.Context, id uuid.UUID) (*Identity, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return u, nil
}

func testIssuer() *TokenIssuer {
	return NewTokenIssuer("test-secret", time.Hour)
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestMiddleware_MissingCredential(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Middleware(testIssuer(), &mapResolver{users: map[uuid.UUID]*Identity{}})
	err := mw(okHandler)(c)
	if !apperr.IsKind(err, apperr.KindAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestMiddleware_BearerHeader(t *testing.T) {
	issuer := testIssuer()
	userID := uuid.New()
	resolver := &mapResolver{users: map[uuid.UUID]*Identity{
		userID: {ID: userID, Username: "nurse1", Role: RoleGeneralStaff},
	}}

	token, err := issuer.Issue(userID, RoleGeneralStaff)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *Identity
	handler := func(c echo.Context) error {
		seen = IdentityFromContext(c.Request().Context())
		return c.String(http.StatusOK, "ok")
	}

	if err := Middleware(issuer, resolver)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen == nil || seen.Username != "nurse1" {
		t.Fatalf("identity not attached: %+v", seen)
	}
}

func TestMiddleware_CookieCredential(t *testing.T) {
	issuer := testIssuer()
	userID := uuid.New()
	resolver := &mapResolver{users: map[uuid.UUID]*Identity{
		userID: {ID: userID, Username: "admin1", Role: RoleAdmin},
	}}

	token, _ := issuer.Issue(userID, RoleAdmin)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Middleware(issuer, resolver)(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)
	userID := uuid.New()
	token, _ := issuer.Issue(userID, RoleAdmin)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	verifier := NewTokenIssuer("test-secret", time.Hour)
	err := Middleware(verifier, &mapResolver{users: map[uuid.UUID]*Identity{}})(okHandler)(c)
	if !apperr.IsKind(err, apperr.KindAuthentication) {
		t.Fatalf("expected authentication error for expired token, got %v", err)
	}
}

func TestMiddleware_DeletedUserFailsResolution(t *testing.T) {
	issuer := testIssuer()
	token, _ := issuer.Issue(uuid.New(), RoleOTStaff)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Middleware(issuer, &mapResolver{users: map[uuid.UUID]*Identity{}})(okHandler)(c)
	if !apperr.IsKind(err, apperr.KindAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestRequireRole_AllowsListedAndAdmin(t *testing.T) {
	e := echo.New()

	cases := []struct {
		role    Role
		allowed bool
	}{
		{RolePharmacyStaff, true},
		{RoleAdmin, true},
		{RoleGeneralStaff, false},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPut, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		ctx := WithIdentity(req.Context(), &Identity{ID: uuid.New(), Role: tc.role})
		c.SetRequest(req.WithContext(ctx))

		err := RequireRole(RolePharmacyStaff, RoleOTStaff)(okHandler)(c)
		if tc.allowed && err != nil {
			t.Errorf("role %s: unexpected error %v", tc.role, err)
		}
		if !tc.allowed && !apperr.IsKind(err, apperr.KindAuthorization) {
			t.Errorf("role %s: expected authorization error, got %v", tc.role, err)
		}
	}
}

func TestRequireRole_NoIdentity(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := RequireRole(RoleAdmin)(okHandler)(c)
	if !apperr.IsKind(err, apperr.KindAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := testIssuer()
	userID := uuid.New()

	token, err := issuer.Issue(userID, RolePharmacyStaff)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != userID.String() {
		t.Errorf("subject = %s, want %s", claims.Subject, userID)
	}
	if claims.Role != string(RolePharmacyStaff) {
		t.Errorf("role = %s, want pharmacy_staff", claims.Role)
	}
}

func TestTokenIssuer_RejectsWrongSecret(t *testing.T) {
	token, _ := testIssuer().Issue(uuid.New(), RoleAdmin)
	other := NewTokenIssuer("other-secret", time.Hour)
	if _, err := other.Verify(token); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}
