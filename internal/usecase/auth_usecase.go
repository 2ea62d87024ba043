package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"neuromatch/internal/domain/candidate"
	"neuromatch/internal/domain/company"
	"neuromatch/internal/domain/id"
	"neuromatch/internal/domain/privacy"
	"neuromatch/internal/domain/therapist"
	"neuromatch/internal/pkg/jwt"
	"neuromatch/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type RegisterIndividualInput struct {
	Email    string
	Password string
	Name     string
	Location string
}

type RegisterCompanyInput struct {
	Email       string
	Password    string
	Name        string
	Description string
	Location    string
}

type RegisterTherapistInput struct {
	Email    string
	Password string
	Name     string
}

type LoginInput struct {
	Email    string
	Password string
	Role     string
}

type TokenPair struct {
	Access  string
	Refresh string
}

type AuthUsecase interface {
	RegisterIndividual(ctx context.Context, in RegisterIndividualInput) (candidate.Candidate, TokenPair, error)
	RegisterCompany(ctx context.Context, in RegisterCompanyInput) (company.Company, TokenPair, error)
	RegisterTherapist(ctx context.Context, in RegisterTherapistInput) (therapist.Therapist, TokenPair, error)
	Login(ctx context.Context, in LoginInput) (string, TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
}

type Auth struct {
	candidates repository.CandidateRepository
	companies  repository.CompanyRepository
	therapists repository.TherapistRepository
	jwt        jwt.Service
	now        func() time.Time
}

func NewAuthUsecase(
	candidates repository.CandidateRepository,
	companies repository.CompanyRepository,
	therapists repository.TherapistRepository,
	jwtSvc jwt.Service,
) *Auth {
	return &Auth{
		candidates: candidates,
		companies:  companies,
		therapists: therapists,
		jwt:        jwtSvc,
		now:        time.Now,
	}
}

func (u *Auth) RegisterIndividual(ctx context.Context, in RegisterIndividualInput) (candidate.Candidate, TokenPair, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return candidate.Candidate{}, TokenPair{}, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return candidate.Candidate{}, TokenPair{}, err
	}

	now := u.now().UTC()
	c := candidate.Candidate{
		ID:    id.New(id.PrefixIndividual),
		Email: email,
		Profile: candidate.Profile{
			Name:     strings.TrimSpace(in.Name),
			Location: strings.TrimSpace(in.Location),
		},
		Privacy:   privacy.Defaults(),
		Status:    candidate.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := u.candidates.Create(ctx, c, hash); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return candidate.Candidate{}, TokenPair{}, ErrEmailTaken
		}
		return candidate.Candidate{}, TokenPair{}, ErrInternal
	}

	tokens, err := u.issueTokens(c.ID, c.Email, jwt.RoleIndividual)
	if err != nil {
		return candidate.Candidate{}, TokenPair{}, err
	}
	return c, tokens, nil
}

func (u *Auth) RegisterCompany(ctx context.Context, in RegisterCompanyInput) (company.Company, TokenPair, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return company.Company{}, TokenPair{}, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return company.Company{}, TokenPair{}, err
	}

	now := u.now().UTC()
	c := company.Company{
		ID:          id.New(id.PrefixCompany),
		Email:       email,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := u.companies.Create(ctx, c, hash); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return company.Company{}, TokenPair{}, ErrEmailTaken
		}
		return company.Company{}, TokenPair{}, ErrInternal
	}

	tokens, err := u.issueTokens(c.ID, c.Email, jwt.RoleCompany)
	if err != nil {
		return company.Company{}, TokenPair{}, err
	}
	return c, tokens, nil
}

func (u *Auth) RegisterTherapist(ctx context.Context, in RegisterTherapistInput) (therapist.Therapist, TokenPair, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return therapist.Therapist{}, TokenPair{}, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return therapist.Therapist{}, TokenPair{}, err
	}

	t := therapist.Therapist{
		ID:        id.New(id.PrefixTherapist),
		Email:     email,
		Name:      strings.TrimSpace(in.Name),
		CreatedAt: u.now().UTC(),
	}

	if err := u.therapists.Create(ctx, t, hash); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return therapist.Therapist{}, TokenPair{}, ErrEmailTaken
		}
		return therapist.Therapist{}, TokenPair{}, ErrInternal
	}

	tokens, err := u.issueTokens(t.ID, t.Email, jwt.RoleTherapist)
	if err != nil {
		return therapist.Therapist{}, TokenPair{}, err
	}
	return t, tokens, nil
}

// Login authenticates against the store matching the declared role and
// returns the authenticated user's id.
func (u *Auth) Login(ctx context.Context, in LoginInput) (string, TokenPair, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return "", TokenPair{}, ErrInvalidCredentials
	}

	var (
		userID string
		hash   string
	)

	switch in.Role {
	case jwt.RoleIndividual:
		c, h, findErr := u.candidates.FindByEmail(ctx, email)
		if findErr == nil && c.Status == candidate.StatusDeleted {
			findErr = repository.ErrNotFound
		}
		err, userID, hash = findErr, c.ID, h
	case jwt.RoleCompany:
		c, h, findErr := u.companies.FindByEmail(ctx, email)
		err, userID, hash = findErr, c.ID, h
	case jwt.RoleTherapist:
		t, h, findErr := u.therapists.FindByEmail(ctx, email)
		err, userID, hash = findErr, t.ID, h
	default:
		return "", TokenPair{}, ErrInvalidCredentials
	}

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", TokenPair{}, ErrInvalidCredentials
		}
		return "", TokenPair{}, ErrInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(in.Password)) != nil {
		return "", TokenPair{}, ErrInvalidCredentials
	}

	tokens, err := u.issueTokens(userID, email, in.Role)
	if err != nil {
		return "", TokenPair{}, err
	}
	return userID, tokens, nil
}

func (u *Auth) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, ErrUnauthorized
	}

	claims, err := u.jwt.ValidateToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenPair{}, ErrRefreshTokenExpired
		}
		return TokenPair{}, ErrInvalidRefreshToken
	}

	if !u.jwt.IsRefreshToken(claims) || claims.TokenType != jwt.TokenTypeRefresh {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	return u.issueTokens(claims.UserID, claims.Email, claims.Role)
}

func (u *Auth) issueTokens(userID, email, role string) (TokenPair, error) {
	access, err := u.jwt.GenerateAccessToken(userID, email, role)
	if err != nil {
		return TokenPair{}, ErrInternal
	}
	refresh, err := u.jwt.GenerateRefreshToken(userID, role)
	if err != nil {
		return TokenPair{}, ErrInternal
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", ErrInvalidInput
	}
	return email, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", ErrInvalidInput
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrInternal
	}
	return string(b), nil
}
