package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"task-manager/internal/errors"
	"task-manager/internal/validation"
)

// asAppError converts validation failures to validation AppErrors and leaves
// every other error untouched.
func asAppError(err error) error {
	if err == nil {
		return nil
	}
	if ve, ok := validation.AsValidationError(err); ok {
		return ve.ToAppError()
	}
	return err
}

// logIfSystemError logs err when it is not caused by the user's input.
func logIfSystemError(ctx context.Context, logger *slog.Logger, msg string, err error, args ...any) {
	if err == nil || !errors.ShouldLogError(err) {
		return
	}
	logger.ErrorContext(ctx, msg, append(args, "error", err, "code", errors.GetErrorCode(err))...)
}

func hashSHA256(data string) string {
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:])
}

func generateRandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
