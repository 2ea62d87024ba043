package handler

import (
	"errors"

	"neuromatch/internal/delivery/http/middleware"
	"neuromatch/internal/pkg/response"
	"neuromatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// mapUsecaseError translates usecase sentinels into transport errors.
func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrInvalidStage):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid pipeline stage", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized),
		errors.Is(err, usecase.ErrInvalidCredentials):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrInvalidRefreshToken):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid refresh token", nil, err)
	case errors.Is(err, usecase.ErrRefreshTokenExpired):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Refresh token expired", nil, err)
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	case errors.Is(err, usecase.ErrCandidateNotFound),
		errors.Is(err, usecase.ErrCompanyNotFound),
		errors.Is(err, usecase.ErrJobNotFound),
		errors.Is(err, usecase.ErrMatchNotFound),
		errors.Is(err, usecase.ErrConnectionNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Not found", nil, err)
	case errors.Is(err, usecase.ErrEmailTaken):
		return middleware.NewAppError(fiber.StatusConflict, "Email already registered", nil, err)
	case errors.Is(err, usecase.ErrMatchExpired):
		return middleware.NewAppError(fiber.StatusConflict, "Match expired", nil, err)
	case errors.Is(err, usecase.ErrMatchNotPending):
		return middleware.NewAppError(fiber.StatusConflict, "Match is no longer pending", nil, err)
	case errors.Is(err, usecase.ErrConnectionNotActive):
		return middleware.NewAppError(fiber.StatusConflict, "Connection is not active", nil, err)
	case errors.Is(err, usecase.ErrConsentLocked):
		return middleware.NewAppError(fiber.StatusConflict, "Consent can no longer be revoked", nil, err)
	case errors.Is(err, usecase.ErrAssessmentIncomplete):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Assessment not completed", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
