package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/blogcraftai/blogcraft-backend/internal/auth"
	"github.com/blogcraftai/blogcraft-backend/internal/blog/domain"
	"github.com/blogcraftai/blogcraft-backend/internal/logging"
)

func actorFrom(c *gin.Context) domain.Actor {
	return domain.Actor{UID: auth.UserFirebaseUID(c), Staff: auth.IsStaff(c)}
}

// writeError answers err with the matching status. Unknown errors are logged
// under op and reported as 500.
func writeError(c *gin.Context, op string, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
	case errors.Is(err, domain.ErrPostNotFound),
		errors.Is(err, domain.ErrTagNotFound),
		errors.Is(err, domain.ErrCommentNotFound),
		errors.Is(err, domain.ErrReactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrTagExists), errors.Is(err, domain.ErrSlugUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logging.NewLogger(c.Request.Context()).LogError(op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
