package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// loginFailedMessage is returned for both an unknown username and a wrong
// password so callers cannot enumerate accounts.
const loginFailedMessage = "invalid username or password"

// Login handles POST /api/auth/login. No session token is issued; the client
// persists the returned user and resends its id on later requests.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := h.store.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": loginFailedMessage})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": loginFailedMessage})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
