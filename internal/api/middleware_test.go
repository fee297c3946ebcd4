package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

const testAuthSecret = "test-service-secret"

func mintServiceToken(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": subject})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func protectedEcho(t *testing.T) http.Handler {
	t.Helper()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok {
			t.Fatal("expected caller identity in context")
		}
		w.Write([]byte(caller))
	})
	return ServiceAuthMiddleware(testAuthSecret)(inner)
}

func TestServiceAuthMiddleware_RejectsMissingHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	protectedEcho(t).ServeHTTP(rec, httptest.NewRequest("GET", "/api/balance", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var resp apiResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("expected envelope error body, got %q", rec.Body.String())
	}
	if resp.Status {
		t.Fatal("expected status false in error envelope")
	}
}

func TestServiceAuthMiddleware_RejectsMalformedHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/balance", nil)
	req.Header.Set("Authorization", mintServiceToken(t, testAuthSecret, "orchestrator"))

	rec := httptest.NewRecorder()
	protectedEcho(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for header without Bearer prefix, got %d", rec.Code)
	}
}

func TestServiceAuthMiddleware_RejectsWrongSecret(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/balance", nil)
	req.Header.Set("Authorization", "Bearer "+mintServiceToken(t, "some-other-secret", "orchestrator"))

	rec := httptest.NewRecorder()
	protectedEcho(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for token signed with wrong secret, got %d", rec.Code)
	}
}

func TestServiceAuthMiddleware_RejectsTokenWithoutSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"scope": "transfers"})
	signed, err := token.SignedString([]byte(testAuthSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/balance", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	rec := httptest.NewRecorder()
	protectedEcho(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for token without sub claim, got %d", rec.Code)
	}
}

func TestServiceAuthMiddleware_AllowsValidToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/balance", nil)
	req.Header.Set("Authorization", "Bearer "+mintServiceToken(t, testAuthSecret, "orchestrator"))

	rec := httptest.NewRecorder()
	protectedEcho(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "orchestrator" {
		t.Fatalf("expected caller identity to reach the handler, got %q", rec.Body.String())
	}
}

func TestRateLimitMiddleware_DisabledWithoutLimiter(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RateLimitMiddleware(nil, 30)(inner)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/balance", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through without limiter, got %d", rec.Code)
	}
}
