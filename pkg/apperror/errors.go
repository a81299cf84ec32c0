package apperror

import (
	"errors"
	"net/http"
)

// GenericError is implemented by every error the API maps onto a status
// code and a machine readable code.
type GenericError interface {
	ErrCode() string
	StatusCode() int
	Error() string
}

type ValidationError string

func (err ValidationError) Error() string   { return string(err) }
func (err ValidationError) ErrCode() string { return "VALIDATION_ERROR" }
func (err ValidationError) StatusCode() int { return http.StatusBadRequest }

type NotFoundError string

func (err NotFoundError) Error() string   { return string(err) }
func (err NotFoundError) ErrCode() string { return "NOT_FOUND" }
func (err NotFoundError) StatusCode() int { return http.StatusNotFound }

type ConflictError string

func (err ConflictError) Error() string   { return string(err) }
func (err ConflictError) ErrCode() string { return "CONFLICT" }
func (err ConflictError) StatusCode() int { return http.StatusConflict }

type UnauthorizedError string

func (err UnauthorizedError) Error() string   { return string(err) }
func (err UnauthorizedError) ErrCode() string { return "UNAUTHORIZED" }
func (err UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }

type InsufficientCreditsError string

func (err InsufficientCreditsError) Error() string   { return string(err) }
func (err InsufficientCreditsError) ErrCode() string { return "INSUFFICIENT_CREDITS" }
func (err InsufficientCreditsError) StatusCode() int { return http.StatusPaymentRequired }

type InternalServerError string

func (err InternalServerError) Error() string   { return string(err) }
func (err InternalServerError) ErrCode() string { return "INTERNAL_SERVER_ERROR" }
func (err InternalServerError) StatusCode() int { return http.StatusInternalServerError }

// As unwraps err into a GenericError, falling back to an internal error.
func As(err error) GenericError {
	var ge GenericError
	if errors.As(err, &ge) {
		return ge
	}
	return InternalServerError(err.Error())
}
