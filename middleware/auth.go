package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"timesheet/apperr"
	"timesheet/models"
)

type contextKey string

const actorContextKey contextKey = "actor"

// Actor is the authenticated identity every handler passes into the core.
type Actor struct {
	UserID uint
	OrgID  uint
	Role   models.Role
}

// Claims is the JWT payload for both access and refresh tokens; the two
// differ only in signing secret and lifetime.
type Claims struct {
	UserID uint        `json:"user_id"`
	OrgID  uint        `json:"org_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

var (
	accessSecret  []byte
	refreshSecret []byte
)

// SetJWTSecrets initializes the signing keys. Called once at startup.
func SetJWTSecrets(access, refresh string) {
	accessSecret = []byte(access)
	refreshSecret = []byte(refresh)
}

func generateToken(user *models.User, expiration time.Duration, secret []byte) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		OrgID:  user.OrganisationID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func GenerateAccessToken(user *models.User, expiration time.Duration) (string, error) {
	return generateToken(user, expiration, accessSecret)
}

func GenerateRefreshToken(user *models.User, expiration time.Duration) (string, error) {
	return generateToken(user, expiration, refreshSecret)
}

func validateToken(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

func ValidateAccessToken(tokenString string) (*Claims, error) {
	return validateToken(tokenString, accessSecret)
}

func ValidateRefreshToken(tokenString string) (*Claims, error) {
	return validateToken(tokenString, refreshSecret)
}

// Authenticate verifies the Bearer token and attaches the actor identity
// to the request context. No database lookup happens here; role and org
// come from the verified claims.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tokenString string
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			unauthorized(w)
			return
		}

		claims, err := ValidateAccessToken(tokenString)
		if err != nil {
			unauthorized(w)
			return
		}

		actor := &Actor{UserID: claims.UserID, OrgID: claims.OrgID, Role: claims.Role}
		ctx := context.WithValue(r.Context(), actorContextKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole guards a route subtree to the given roles.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			if actor == nil {
				unauthorized(w)
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			forbidden(w)
		})
	}
}

func ActorFromContext(ctx context.Context) *Actor {
	actor, ok := ctx.Value(actorContextKey).(*Actor)
	if !ok {
		return nil
	}
	return actor
}

func unauthorized(w http.ResponseWriter) {
	writeErrorJSON(w, http.StatusUnauthorized, apperr.CodeUnauthorized, "authentication required")
}

func forbidden(w http.ResponseWriter) {
	writeErrorJSON(w, http.StatusForbidden, apperr.CodeForbidden, "access denied")
}

func writeErrorJSON(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// small fixed shape, no need for encoding/json here
	w.Write([]byte(`{"error":{"code":"` + code + `","message":"` + message + `"}}`))
}
