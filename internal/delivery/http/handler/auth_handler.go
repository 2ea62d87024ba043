package handler

import (
	"strings"

	"neuromatch/internal/delivery/http/middleware"
	"neuromatch/internal/pkg/response"
	"neuromatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type AuthHandler struct {
	uc usecase.AuthUsecase
}

func NewAuthHandler(uc usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/register/individual", h.RegisterIndividual)
	r.Post("/register/company", h.RegisterCompany)
	r.Post("/register/therapist", h.RegisterTherapist)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
}

type registerIndividualRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type registerCompanyRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

type registerTherapistRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *AuthHandler) RegisterIndividual(c fiber.Ctx) error {
	var req registerIndividualRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	cand, tokens, err := h.uc.RegisterIndividual(c.Context(), usecase.RegisterIndividualInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Location: req.Location,
	})
	if err != nil {
		return mapUsecaseError(err)
	}

	data := map[string]any{
		"id":            cand.ID,
		"email":         cand.Email,
		"access_token":  tokens.Access,
		"refresh_token": tokens.Refresh,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func (h *AuthHandler) RegisterCompany(c fiber.Ctx) error {
	var req registerCompanyRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	comp, tokens, err := h.uc.RegisterCompany(c.Context(), usecase.RegisterCompanyInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		return mapUsecaseError(err)
	}

	data := map[string]any{
		"id":            comp.ID,
		"email":         comp.Email,
		"access_token":  tokens.Access,
		"refresh_token": tokens.Refresh,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func (h *AuthHandler) RegisterTherapist(c fiber.Ctx) error {
	var req registerTherapistRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	th, tokens, err := h.uc.RegisterTherapist(c.Context(), usecase.RegisterTherapistInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return mapUsecaseError(err)
	}

	data := map[string]any{
		"id":            th.ID,
		"email":         th.Email,
		"access_token":  tokens.Access,
		"refresh_token": tokens.Refresh,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	userID, tokens, err := h.uc.Login(c.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return mapUsecaseError(err)
	}

	data := map[string]any{
		"id":            userID,
		"access_token":  tokens.Access,
		"refresh_token": tokens.Refresh,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	tok, ok := bearerFromAuthorizationHeader(c.Get("Authorization"))
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	tokens, err := h.uc.Refresh(c.Context(), tok)
	if err != nil {
		switch err {
		case usecase.ErrRefreshTokenExpired:
			return middleware.NewAppError(fiber.StatusUnauthorized, "Refresh token expired", nil, err)
		case usecase.ErrInvalidRefreshToken:
			return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid refresh token", nil, err)
		}
		return mapUsecaseError(err)
	}

	data := map[string]any{
		"access_token":  tokens.Access,
		"refresh_token": tokens.Refresh,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func bearerFromAuthorizationHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	if tok == "" {
		return "", false
	}
	return tok, true
}
