package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"socialbot-gateway/pkg/apperror"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Page normalizes page/per_page query values.
func Page(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

func paginate(page, perPage int) func(*gorm.DB) *gorm.DB {
	page, perPage = Page(page, perPage)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * perPage).Limit(perPage)
	}
}

func newID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// notFound maps gorm's missing-row error onto the API error type.
func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFoundError(fmt.Sprintf("%s %s not found", what, id))
	}
	return err
}
