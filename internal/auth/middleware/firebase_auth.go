package middleware

import (
	"context"
	"net/http"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/blogcraftai/blogcraft-backend/internal/auth"
	"github.com/blogcraftai/blogcraft-backend/internal/logging"
)

// TokenVerifier verifies Firebase ID tokens. *firebaseauth.Client implements it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// RoleLookup resolves the stored role of an authenticated user.
type RoleLookup interface {
	RoleOf(ctx context.Context, uid string) (string, error)
}

// Authenticator identifies callers. With a nil verifier it runs in
// development mode and trusts the X-User-Id header.
type Authenticator struct {
	verifier TokenVerifier
	roles    RoleLookup
}

func NewAuthenticator(verifier TokenVerifier, roles RoleLookup) *Authenticator {
	return &Authenticator{verifier: verifier, roles: roles}
}

// Required rejects requests without a valid identity.
func (a *Authenticator) Required() gin.HandlerFunc {
	return a.handler(true)
}

// Optional identifies the caller when credentials are present and lets
// anonymous requests through.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return a.handler(false)
}

func (a *Authenticator) handler(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, email, ok := a.identify(c)
		if !ok {
			// identify already answered with 401
			return
		}
		if uid == "" {
			if required {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
				c.Abort()
				return
			}
			c.Next()
			return
		}

		c.Set(auth.CtxFirebaseUID, uid)
		if email != "" {
			c.Set(auth.CtxEmail, email)
		}

		if a.roles != nil {
			role, err := a.roles.RoleOf(c.Request.Context(), uid)
			if err != nil {
				logging.NewLogger(c.Request.Context()).LogError("auth_role_lookup", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
				c.Abort()
				return
			}
			c.Set(auth.CtxRole, role)
		}

		c.Next()
	}
}

// identify returns the caller's uid, or "" for an anonymous request. ok is
// false when a response has already been written.
func (a *Authenticator) identify(c *gin.Context) (uid, email string, ok bool) {
	if a.verifier == nil {
		uid = strings.TrimSpace(c.GetHeader("X-User-Id"))
		return uid, strings.TrimSpace(c.GetHeader("X-User-Email")), true
	}

	token := extractToken(c)
	if token == "" {
		return "", "", true
	}

	decodedToken, err := a.verifier.VerifyIDToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		c.Abort()
		return "", "", false
	}

	if claim, isString := decodedToken.Claims["email"].(string); isString {
		email = claim
	}
	return decodedToken.UID, email, true
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
