package mw

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"factory-floor-backend/internal/store"
)

// UserIDHeader carries the client-persisted identity on mutating requests.
// There are no server-side sessions; the client resends the user id returned
// by login.
const UserIDHeader = "X-User-ID"

// RequireRole guards a route group behind a role check. The caller's user id
// is read from the X-User-ID header and resolved against the store; an
// unknown caller gets 401, a caller whose role is not in the allowed set
// gets 403.
func RequireRole(s store.Store, roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		userID := c.GetHeader(UserIDHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + UserIDHeader + " header"})
			return
		}

		user, err := s.GetUser(c.Request.Context(), userID)
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
			return
		}

		if _, ok := allowed[user.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}

		c.Next()
	}
}
