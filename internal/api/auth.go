package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"socialbot-gateway/pkg/models"
)

// AuthHandler reports the principal behind the configured token.
type AuthHandler struct {
	user models.User
}

func NewAuthHandler(user models.User) *AuthHandler {
	return &AuthHandler{user: user}
}

func (h *AuthHandler) Me(c *gin.Context) {
	respond(c, http.StatusOK, h.user)
}
