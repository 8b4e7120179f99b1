package app

import (
	"errors"

	"kstest/domain/core"
	apperrors "kstest/internal/errors"
)

// ToAppError attaches an application error code to an error returned by
// the engine. Validation failures become INVALID_INPUT; errors that already
// carry a code keep it.
func ToAppError(err error) error {
	switch {
	case err == nil:
		return nil
	case apperrors.IsAppError(err):
		return err
	case core.IsValidationError(err):
		return apperrors.WithCode(apperrors.CodeInvalidInput, err)
	case errors.Is(err, core.ErrInvalidRank):
		return apperrors.WithCode(apperrors.CodeInvalidInput, err)
	default:
		return apperrors.WithCode(apperrors.CodeInternalError, err)
	}
}
