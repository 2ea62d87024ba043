package repository

import (
	"context"
	"errors"

	"neuromatch/internal/database"
	"neuromatch/internal/domain/company"

	"github.com/jackc/pgx/v5"
)

type CompanyRepository interface {
	Create(ctx context.Context, c company.Company, passwordHash string) error
	FindByID(ctx context.Context, id string) (company.Company, error)
	FindByEmail(ctx context.Context, email string) (company.Company, string, error)
}

type PostgresCompanyRepository struct {
	db database.DB
}

func NewPostgresCompanyRepository(db database.DB) *PostgresCompanyRepository {
	return &PostgresCompanyRepository{db: db}
}

func (r *PostgresCompanyRepository) Create(ctx context.Context, c company.Company, passwordHash string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO companies (id, email, password_hash, name, description, location, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.Email, passwordHash, c.Name, c.Description, c.Location, c.CreatedAt, c.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PostgresCompanyRepository) FindByID(ctx context.Context, id string) (company.Company, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, name, description, location, created_at, updated_at FROM companies WHERE id = $1`, id)

	var c company.Company
	err := row.Scan(&c.ID, &c.Email, &c.Name, &c.Description, &c.Location, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.Company{}, ErrNotFound
		}
		return company.Company{}, err
	}
	return c, nil
}

func (r *PostgresCompanyRepository) FindByEmail(ctx context.Context, email string) (company.Company, string, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, name, description, location, created_at, updated_at, password_hash
		 FROM companies WHERE email = $1`, email)

	var c company.Company
	var hash string
	err := row.Scan(&c.ID, &c.Email, &c.Name, &c.Description, &c.Location, &c.CreatedAt, &c.UpdatedAt, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.Company{}, "", ErrNotFound
		}
		return company.Company{}, "", err
	}
	return c, hash, nil
}
