package services

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/thereayou/matcha/internal/apperror"
	"github.com/thereayou/matcha/internal/database"
)

var validate = validator.New()

var (
	errNotAuthorized = apperror.New(apperror.CodeNotAuthorized, "users cannot exchange messages")
	errNotInChat     = apperror.New(apperror.CodeNotAuthorized, "not a participant of this chat")
)

// storageError maps a repository error onto the taxonomy. what names the
// missing entity for NOT_FOUND.
func storageError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrRecordNotFound):
		return apperror.Wrap(apperror.CodeNotFound, what+" not found", err)
	case errors.Is(err, database.ErrInvalidData):
		return apperror.Wrap(apperror.CodeValidation, "invalid "+what, err)
	case errors.Is(err, database.ErrUnavailable):
		return apperror.Wrap(apperror.CodeUnavailable, "storage temporarily unavailable", err)
	default:
		return apperror.Wrap(apperror.CodeInternal, "storage failure", err)
	}
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperror.Wrap(apperror.CodeValidation, "invalid "+fe.Field()+": failed "+fe.Tag(), err)
	}
	return apperror.Wrap(apperror.CodeValidation, "invalid request", err)
}
