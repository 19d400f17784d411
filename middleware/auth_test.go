package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"timesheet/models"
)

func init() {
	SetJWTSecrets("access-secret", "refresh-secret")
}

func testUser() *models.User {
	return &models.User{
		ID:             7,
		OrganisationID: 3,
		Role:           models.RoleManager,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(testUser(), time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.UserID != 7 || claims.OrgID != 3 || claims.Role != models.RoleManager {
		t.Errorf("claims = %+v", claims)
	}

	// Access and refresh secrets are distinct.
	if _, err := ValidateRefreshToken(token); err == nil {
		t.Error("access token must not validate as refresh token")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateAccessToken(testUser(), -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := ValidateAccessToken(token); err == nil {
		t.Error("expired token must not validate")
	}
}

func TestAuthenticateMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a := ActorFromContext(r.Context())
		if a == nil {
			t.Error("actor missing from context")
			return
		}
		if a.UserID != 7 || a.OrgID != 3 {
			t.Errorf("actor = %+v", a)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Authenticate(next)

	token, err := GenerateAccessToken(testUser(), time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid bearer token", "Bearer " + token, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	guard := RequireRole(models.RoleAdmin)(ok)
	authed := Authenticate(guard)

	managerToken, err := GenerateAccessToken(testUser(), time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	admin := testUser()
	admin.Role = models.RoleAdmin
	adminToken, err := GenerateAccessToken(admin, time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+managerToken)
	rec := httptest.NewRecorder()
	authed.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("manager against admin route: status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	authed.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("admin against admin route: status = %d, want 204", rec.Code)
	}
}
