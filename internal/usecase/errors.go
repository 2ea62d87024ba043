package usecase

import "errors"

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInternal            = errors.New("internal error")

	ErrCandidateNotFound  = errors.New("candidate not found")
	ErrCompanyNotFound    = errors.New("company not found")
	ErrJobNotFound        = errors.New("job not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrConnectionNotFound = errors.New("connection not found")

	ErrMatchNotPending      = errors.New("match is no longer pending")
	ErrMatchExpired         = errors.New("match expired")
	ErrConnectionNotActive  = errors.New("connection is not active")
	ErrConsentLocked        = errors.New("consent can no longer be revoked")
	ErrInvalidStage         = errors.New("invalid pipeline stage")
	ErrInvalidInput         = errors.New("invalid input")
	ErrAssessmentIncomplete = errors.New("assessment not completed")
)
