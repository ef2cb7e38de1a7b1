package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RouteFleet/RouteFleet/internal/common/config"
	"github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, cfg config.AuthConfig, roles []string) string {
	t.Helper()
	now := time.Now()
	claims := struct {
		Roles []string `json:"roles"`
		jwt.RegisteredClaims
	}{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "op-1",
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tokenStr
}

func TestJWTAuthAndRBAC(t *testing.T) {
	authCfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "routefleet",
		Audience:  "routefleet",
		RBAC: map[string][]string{
			"/api/assignments": {"dispatcher"},
		},
	}

	var gotSubject string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ai, ok := AuthFromContext(r.Context())
		if !ok {
			t.Fatalf("missing auth info in ctx")
		}
		gotSubject = ai.Subject
		w.WriteHeader(http.StatusOK)
	})
	handler := Chain(inner, JWTAuth(authCfg, nil), RBAC(authCfg))

	// dispatcher 角色可以访问
	req := httptest.NewRequest(http.MethodPost, "/api/assignments", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, authCfg, []string{"operator", "dispatcher"}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotSubject != "op-1" {
		t.Fatalf("subject mismatch: %s", gotSubject)
	}

	// 只有 operator 角色，应被 RBAC 拒绝
	req2 := httptest.NewRequest(http.MethodPost, "/api/assignments", nil)
	req2.Header.Set("Authorization", "Bearer "+signTestToken(t, authCfg, []string{"operator"}))
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec2.Code)
	}

	// 缺少 token
	req3 := httptest.NewRequest(http.MethodPost, "/api/assignments", nil)
	rec3 := httptest.NewRecorder()
	handler.ServeHTTP(rec3, req3)
	if rec3.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec3.Code)
	}
}

func TestJWTAuthDisabledPassesThrough(t *testing.T) {
	handler := Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }),
		JWTAuth(config.AuthConfig{Enabled: false}, nil),
		RBAC(config.AuthConfig{Enabled: false}),
	)
	req := httptest.NewRequest(http.MethodGet, "/api/routes", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
