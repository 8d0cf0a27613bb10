package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"strideworks/plan-engine/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const testJWTSecret = "middleware-test-secret"

func mintToken(t *testing.T, secret, uid string, role domain.Role, ttl time.Duration) string {
	t.Helper()
	claims := jwtClaims{
		UserID: uid,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "plan-engine",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func authTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", AuthMiddleware(testJWTSecret), func(c *gin.Context) {
		id, _ := getUserIDFromContext(c)
		role, _ := getUserRoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": string(role)})
	})
	r.GET("/coach-only", AuthMiddleware(testJWTSecret), RoleMiddleware(domain.RoleCoach), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func doRequest(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewarePopulatesContext(t *testing.T) {
	r := authTestRouter()
	token := mintToken(t, testJWTSecret, "abc123", domain.RoleAthlete, time.Hour)

	w := doRequest(r, "/whoami", "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["id"] != "abc123" || body["role"] != "athlete" {
		t.Errorf("context identity = %v", body)
	}
}

func TestAuthMiddlewareRejectsBadCredentials(t *testing.T) {
	r := authTestRouter()
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"no token", "Bearer"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + mintToken(t, "other-secret", "abc123", domain.RoleCoach, time.Hour)},
		{"expired token", "Bearer " + mintToken(t, testJWTSecret, "abc123", domain.RoleCoach, -time.Hour)},
		{"missing claims", "Bearer " + mintToken(t, testJWTSecret, "", domain.RoleCoach, time.Hour)},
	}
	for _, tc := range cases {
		if w := doRequest(r, "/whoami", tc.header); w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", tc.name, w.Code)
		}
	}
}

func TestRoleMiddlewareGatesByRole(t *testing.T) {
	r := authTestRouter()

	coach := mintToken(t, testJWTSecret, "c1", domain.RoleCoach, time.Hour)
	if w := doRequest(r, "/coach-only", "Bearer "+coach); w.Code != http.StatusNoContent {
		t.Errorf("coach: status = %d, want 204", w.Code)
	}

	athlete := mintToken(t, testJWTSecret, "a1", domain.RoleAthlete, time.Hour)
	if w := doRequest(r, "/coach-only", "Bearer "+athlete); w.Code != http.StatusForbidden {
		t.Errorf("athlete: status = %d, want 403", w.Code)
	}
}

func TestBearerToken(t *testing.T) {
	if tok, err := bearerToken("Bearer abc"); err != nil || tok != "abc" {
		t.Errorf("got (%q, %v)", tok, err)
	}
	// Scheme match is case-insensitive.
	if tok, err := bearerToken("bearer abc"); err != nil || tok != "abc" {
		t.Errorf("got (%q, %v)", tok, err)
	}
	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer a b"} {
		if _, err := bearerToken(header); err == nil {
			t.Errorf("header %q should be rejected", header)
		}
	}
}
