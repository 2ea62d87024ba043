package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"neuromatch/internal/database"
	"neuromatch/internal/domain/candidate"
	"neuromatch/internal/domain/privacy"
	"neuromatch/internal/infrastructure/crypto"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type CandidateRepository interface {
	Create(ctx context.Context, c candidate.Candidate, passwordHash string) error
	FindByID(ctx context.Context, id string) (candidate.Candidate, error)
	FindByEmail(ctx context.Context, email string) (candidate.Candidate, string, error)
	ListMatchable(ctx context.Context) ([]candidate.Candidate, error)
	UpdateProfile(ctx context.Context, c candidate.Candidate) error
	UpdatePrivacy(ctx context.Context, id string, s privacy.Settings) error
	UpdateAssessment(ctx context.Context, id string, a candidate.Assessment) error
	Anonymize(ctx context.Context, id string) error
}

// PostgresCandidateRepository persists candidates with field-level encryption
// on diagnoses, medical history, accommodation needs and the therapist
// reference. No other entity gets encrypted columns.
type PostgresCandidateRepository struct {
	db     database.DB
	cipher *crypto.FieldCipher
}

func NewPostgresCandidateRepository(db database.DB, cipher *crypto.FieldCipher) *PostgresCandidateRepository {
	return &PostgresCandidateRepository{db: db, cipher: cipher}
}

const candidateColumns = `id, email, name, location, bio, skills, experience, education,
	preferences, accommodations_needed, diagnoses, medical_history, therapist_ref,
	visible_in_search, show_real_name, share_diagnosis, share_therapist_contact, share_assessment_details,
	assessment_completed, assessment, status, created_at, updated_at`

func (r *PostgresCandidateRepository) Create(ctx context.Context, c candidate.Candidate, passwordHash string) error {
	enc, err := r.encryptProfile(c.Profile)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO individuals (
			id, email, password_hash, name, location, bio, skills, experience, education,
			preferences, accommodations_needed, diagnoses, medical_history, therapist_ref,
			visible_in_search, show_real_name, share_diagnosis, share_therapist_contact, share_assessment_details,
			assessment_completed, assessment, status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)`,
		c.ID, c.Email, passwordHash,
		c.Profile.Name, c.Profile.Location, c.Profile.Bio,
		mustJSON(c.Profile.Skills), c.Profile.Experience, c.Profile.Education,
		mustJSON(c.Profile.Preferences),
		enc.accommodations, enc.diagnoses, enc.medicalHistory, enc.therapistRef,
		c.Privacy.VisibleInSearch, c.Privacy.ShowRealName, c.Privacy.ShareDiagnosis,
		c.Privacy.ShareTherapistContact, c.Privacy.ShareAssessmentDetails,
		c.Assessment.Completed, mustJSON(c.Assessment), string(c.Status),
		c.CreatedAt, c.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PostgresCandidateRepository) FindByID(ctx context.Context, id string) (candidate.Candidate, error) {
	row := r.db.QueryRow(ctx, `SELECT `+candidateColumns+` FROM individuals WHERE id = $1`, id)
	return r.scanCandidate(row)
}

func (r *PostgresCandidateRepository) FindByEmail(ctx context.Context, email string) (candidate.Candidate, string, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+candidateColumns+`, password_hash FROM individuals WHERE email = $1`, email)

	var hash string
	c, err := r.scanCandidate(row, &hash)
	if err != nil {
		return candidate.Candidate{}, "", err
	}
	return c, hash, nil
}

func (r *PostgresCandidateRepository) ListMatchable(ctx context.Context) ([]candidate.Candidate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+candidateColumns+`
		 FROM individuals
		 WHERE status = 'active' AND visible_in_search = TRUE AND assessment_completed = TRUE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]candidate.Candidate, 0)
	for rows.Next() {
		c, err := r.scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresCandidateRepository) UpdateProfile(ctx context.Context, c candidate.Candidate) error {
	enc, err := r.encryptProfile(c.Profile)
	if err != nil {
		return err
	}

	n, err := r.db.Exec(ctx,
		`UPDATE individuals SET
			name=$2, location=$3, bio=$4, skills=$5, experience=$6, education=$7,
			preferences=$8, accommodations_needed=$9, diagnoses=$10, medical_history=$11,
			therapist_ref=$12, updated_at=now()
		 WHERE id = $1`,
		c.ID, c.Profile.Name, c.Profile.Location, c.Profile.Bio,
		mustJSON(c.Profile.Skills), c.Profile.Experience, c.Profile.Education,
		mustJSON(c.Profile.Preferences),
		enc.accommodations, enc.diagnoses, enc.medicalHistory, enc.therapistRef,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresCandidateRepository) UpdatePrivacy(ctx context.Context, id string, s privacy.Settings) error {
	n, err := r.db.Exec(ctx,
		`UPDATE individuals SET
			visible_in_search=$2, show_real_name=$3, share_diagnosis=$4,
			share_therapist_contact=$5, share_assessment_details=$6, updated_at=now()
		 WHERE id = $1`,
		id, s.VisibleInSearch, s.ShowRealName, s.ShareDiagnosis, s.ShareTherapistContact, s.ShareAssessmentDetails,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresCandidateRepository) UpdateAssessment(ctx context.Context, id string, a candidate.Assessment) error {
	n, err := r.db.Exec(ctx,
		`UPDATE individuals SET assessment_completed=$2, assessment=$3, updated_at=now() WHERE id = $1`,
		id, a.Completed, mustJSON(a),
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Anonymize scrubs PII in place. The row and its id survive for audit
// referential integrity.
func (r *PostgresCandidateRepository) Anonymize(ctx context.Context, id string) error {
	n, err := r.db.Exec(ctx,
		`UPDATE individuals SET
			email = id || '@erased.invalid', password_hash='', name='', location='', bio='',
			skills='[]', experience='', education='', preferences='{}',
			accommodations_needed='', diagnoses='', medical_history='', therapist_ref='',
			visible_in_search=FALSE, assessment='{}', assessment_completed=FALSE,
			status='deleted', updated_at=now()
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type encryptedProfile struct {
	accommodations string
	diagnoses      string
	medicalHistory string
	therapistRef   string
}

func (r *PostgresCandidateRepository) encryptProfile(p candidate.Profile) (encryptedProfile, error) {
	var enc encryptedProfile
	var err error

	if enc.accommodations, err = r.encryptList(p.AccommodationsNeeded); err != nil {
		return enc, err
	}
	if enc.diagnoses, err = r.encryptList(p.Diagnoses); err != nil {
		return enc, err
	}
	if enc.medicalHistory, err = r.cipher.Encrypt(p.MedicalHistory); err != nil {
		return enc, err
	}
	if enc.therapistRef, err = r.cipher.Encrypt(p.TherapistID); err != nil {
		return enc, err
	}
	return enc, nil
}

func (r *PostgresCandidateRepository) encryptList(items []string) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return r.cipher.Encrypt(string(b))
}

func (r *PostgresCandidateRepository) decryptList(ciphertext string) ([]string, error) {
	plain, err := r.cipher.Decrypt(ciphertext)
	if err != nil {
		return nil, err
	}
	if plain == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(plain), &items); err != nil {
		return nil, fmt.Errorf("decode decrypted list: %w", err)
	}
	return items, nil
}

// scanCandidate scans the shared candidate column set plus any trailing
// extra destinations.
func (r *PostgresCandidateRepository) scanCandidate(row database.Row, extra ...any) (candidate.Candidate, error) {
	var (
		c                              candidate.Candidate
		skillsRaw, prefsRaw, assessRaw []byte
		encAccommodations              string
		encDiagnoses                   string
		encMedicalHistory              string
		encTherapistRef                string
		status                         string
	)

	dest := []any{
		&c.ID, &c.Email, &c.Profile.Name, &c.Profile.Location, &c.Profile.Bio,
		&skillsRaw, &c.Profile.Experience, &c.Profile.Education,
		&prefsRaw, &encAccommodations, &encDiagnoses, &encMedicalHistory, &encTherapistRef,
		&c.Privacy.VisibleInSearch, &c.Privacy.ShowRealName, &c.Privacy.ShareDiagnosis,
		&c.Privacy.ShareTherapistContact, &c.Privacy.ShareAssessmentDetails,
		&c.Assessment.Completed, &assessRaw, &status, &c.CreatedAt, &c.UpdatedAt,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return candidate.Candidate{}, ErrNotFound
		}
		return candidate.Candidate{}, err
	}

	c.Status = candidate.Status(status)
	if err := json.Unmarshal(skillsRaw, &c.Profile.Skills); err != nil {
		return candidate.Candidate{}, err
	}
	if err := json.Unmarshal(prefsRaw, &c.Profile.Preferences); err != nil {
		return candidate.Candidate{}, err
	}
	if err := json.Unmarshal(assessRaw, &c.Assessment); err != nil {
		return candidate.Candidate{}, err
	}

	var err error
	if c.Profile.AccommodationsNeeded, err = r.decryptList(encAccommodations); err != nil {
		return candidate.Candidate{}, err
	}
	if c.Profile.Diagnoses, err = r.decryptList(encDiagnoses); err != nil {
		return candidate.Candidate{}, err
	}
	if c.Profile.MedicalHistory, err = r.cipher.Decrypt(encMedicalHistory); err != nil {
		return candidate.Candidate{}, err
	}
	if c.Profile.TherapistID, err = r.cipher.Decrypt(encTherapistRef); err != nil {
		return candidate.Candidate{}, err
	}

	return c, nil
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return b
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
