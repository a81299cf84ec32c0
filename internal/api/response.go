package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"socialbot-gateway/internal/database"
	"socialbot-gateway/pkg/apperror"
	"socialbot-gateway/pkg/models"
)

const requestIDKey = "request_id"

func meta(c *gin.Context) models.Meta {
	return models.Meta{
		RequestID:  c.GetString(requestIDKey),
		Timestamp:  time.Now().UTC(),
		APIVersion: models.APIVersion,
	}
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, models.Response{Success: true, Data: data, Meta: meta(c)})
}

func respondPage(c *gin.Context, data interface{}, page, perPage int, total int64) {
	c.JSON(http.StatusOK, models.Response{
		Success:    true,
		Data:       data,
		Pagination: models.NewPagination(page, perPage, total),
		Meta:       meta(c),
	})
}

// respondError writes the error envelope. ozzo validation errors become a
// VALIDATION_ERROR with per-field details.
func respondError(c *gin.Context, err error) {
	body := &models.ErrorBody{}
	status := http.StatusInternalServerError

	var verrs validation.Errors
	var verr validation.Error
	switch {
	case errors.As(err, &verrs):
		status = http.StatusBadRequest
		body.Code = apperror.ValidationError("").ErrCode()
		body.Message = "validation failed"
		body.Details = verrs
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		body.Code = apperror.ValidationError("").ErrCode()
		body.Message = verr.Error()
	default:
		ge := apperror.As(err)
		status = ge.StatusCode()
		body.Code = ge.ErrCode()
		body.Message = ge.Error()
	}

	if status >= http.StatusInternalServerError {
		logrus.WithField("request_id", c.GetString(requestIDKey)).Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, models.Response{Success: false, Error: body, Meta: meta(c)})
}

// bindJSON decodes the body and reports malformed input as a validation error.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperror.ValidationError("invalid request body: "+err.Error()))
		return false
	}
	return true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	perPage, _ := strconv.Atoi(c.Query("per_page"))
	return database.Page(page, perPage)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return n
}
