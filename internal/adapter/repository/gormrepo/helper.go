package gormrepo

import (
	"errors"

	"gorm.io/gorm"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// notFound swaps gorm's missing-row error for the entity's own.
func notFound(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

func paginate(page, limit int) (offset, size int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return (page - 1) * limit, limit
}
