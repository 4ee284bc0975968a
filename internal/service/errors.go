// Package service implements the local data store operations used by the UI:
// registration and login, conversion history and the tutoring workflow. It
// delegates persistence to repository interfaces.
package service

import (
	"errors"

	"go.uber.org/zap"

	"github.com/atinyakov/basetutor/internal/models"
)

var rejections = []error{
	models.ErrInvalidInput,
	models.ErrAlreadyExists,
	models.ErrInvalidCredentials,
	models.ErrNotFound,
	models.ErrActiveRequestExists,
	models.ErrInvalidTransition,
}

// classify passes business-rule rejections through unchanged and wraps
// anything else in a *models.StorageError after logging it.
func classify(log *zap.Logger, op string, err error) error {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return err
		}
	}
	log.Error("store operation failed", zap.String("op", op), zap.Error(err))
	return &models.StorageError{Op: op, Err: err}
}
