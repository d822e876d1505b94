// Package services implements the portal's operations over the repositories:
// the content catalog, contact intake, sessions, image upload and SEO files.
// Every store fault leaving this package is wrapped as
// common.ErrorStorageFailure; driver errors never reach callers.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taxportal/internal/common"
	"github.com/dmitrijs2005/taxportal/internal/logging"
)

// storageFailure logs err and converts it to common.ErrorStorageFailure.
// Context cancellation is passed through unchanged.
func storageFailure(ctx context.Context, logger logging.Logger, op string, err error, args ...any) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	logger.Error(ctx, op+" failed", append(args, "error", err)...)
	return fmt.Errorf("%w: %s: %v", common.ErrorStorageFailure, op, err)
}

// lookupFailure is storageFailure for single-document reads, where
// common.ErrorNotFound is an expected outcome.
func lookupFailure(ctx context.Context, logger logging.Logger, op string, err error, args ...any) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	return storageFailure(ctx, logger, op, err, args...)
}
