package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"skincare/internal/pkg/apperror"
)

var (
	ErrNotFound  = apperror.New(apperror.KindNotFound, "record not found")
	ErrDuplicate = apperror.New(apperror.KindConflict, "duplicate record")
)

func translate(err error, what string, id any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
	case isUniqueConstraintError(err):
		return fmt.Errorf("%s: %w: %w", what, ErrDuplicate, err)
	}
	return err
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
