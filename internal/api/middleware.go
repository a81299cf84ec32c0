package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"socialbot-gateway/pkg/apperror"
	"socialbot-gateway/pkg/models"
)

// RequestID tags every request with an id, reusing X-Request-ID when the
// caller sends one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = "req_" + uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Recovery turns panics into the error envelope. A panic carrying an
// apperror keeps its status and code.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logrus.Errorf("panic recovered in %s %s: %v", c.Request.Method, c.Request.URL.Path, rec)

			body := &models.ErrorBody{Code: "INTERNAL_SERVER_ERROR", Message: fmt.Sprintf("%v", rec)}
			status := http.StatusInternalServerError
			if ge, ok := rec.(apperror.GenericError); ok {
				status = ge.StatusCode()
				body.Code = ge.ErrCode()
				body.Message = ge.Error()
			}
			c.AbortWithStatusJSON(status, models.Response{Success: false, Error: body, Meta: meta(c)})
		}()
		c.Next()
	}
}

// BearerAuth rejects requests without the configured token. An empty token
// disables the check. Browsers cannot set headers on websocket upgrades, so
// ?token= is accepted as well.
func BearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if got == "" {
			got = c.Query("token")
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			respondError(c, apperror.UnauthorizedError("missing or invalid bearer token"))
			return
		}
		c.Next()
	}
}
