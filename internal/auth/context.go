package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
	CtxRole        = "role"
)

const roleStaff = "staff"

// UserFirebaseUID extracts the Firebase UID from the Gin context
// This is set by the auth middleware
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

func UserEmail(c *gin.Context) string {
	return c.GetString(CtxEmail)
}

func IsAuthenticated(c *gin.Context) bool {
	return UserFirebaseUID(c) != ""
}

func IsStaff(c *gin.Context) bool {
	return IsAuthenticated(c) && c.GetString(CtxRole) == roleStaff
}
