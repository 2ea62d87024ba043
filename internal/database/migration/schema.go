package migration

// Sensitive individual columns (diagnoses, medical_history,
// accommodations_needed, therapist_ref) hold ciphertext produced by the
// field cipher; the schema treats them as opaque text.
var migrations = []migrationStep{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS individuals (
				id                       TEXT PRIMARY KEY,
				email                    TEXT NOT NULL UNIQUE,
				password_hash            TEXT NOT NULL,
				name                     TEXT NOT NULL DEFAULT '',
				location                 TEXT NOT NULL DEFAULT '',
				bio                      TEXT NOT NULL DEFAULT '',
				skills                   JSONB NOT NULL DEFAULT '[]',
				experience               TEXT NOT NULL DEFAULT '',
				education                TEXT NOT NULL DEFAULT '',
				preferences              JSONB NOT NULL DEFAULT '{}',
				accommodations_needed    TEXT NOT NULL DEFAULT '',
				diagnoses                TEXT NOT NULL DEFAULT '',
				medical_history          TEXT NOT NULL DEFAULT '',
				therapist_ref            TEXT NOT NULL DEFAULT '',
				visible_in_search        BOOLEAN NOT NULL DEFAULT TRUE,
				show_real_name           BOOLEAN NOT NULL DEFAULT FALSE,
				share_diagnosis          BOOLEAN NOT NULL DEFAULT FALSE,
				share_therapist_contact  BOOLEAN NOT NULL DEFAULT FALSE,
				share_assessment_details BOOLEAN NOT NULL DEFAULT TRUE,
				assessment_completed     BOOLEAN NOT NULL DEFAULT FALSE,
				assessment               JSONB NOT NULL DEFAULT '{}',
				status                   TEXT NOT NULL DEFAULT 'active',
				created_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at               TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE TABLE IF NOT EXISTS companies (
				id            TEXT PRIMARY KEY,
				email         TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				name          TEXT NOT NULL,
				description   TEXT NOT NULL DEFAULT '',
				location      TEXT NOT NULL DEFAULT '',
				created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE TABLE IF NOT EXISTS therapists (
				id            TEXT PRIMARY KEY,
				email         TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				name          TEXT NOT NULL,
				created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE TABLE IF NOT EXISTS jobs (
				id                     TEXT PRIMARY KEY,
				company_id             TEXT NOT NULL REFERENCES companies(id),
				title                  TEXT NOT NULL,
				description            TEXT NOT NULL DEFAULT '',
				required_skills        JSONB NOT NULL DEFAULT '[]',
				accommodations_offered JSONB NOT NULL DEFAULT '[]',
				location               TEXT NOT NULL DEFAULT '',
				work_mode              TEXT NOT NULL DEFAULT '',
				attributes             JSONB NOT NULL DEFAULT '{}',
				status                 TEXT NOT NULL DEFAULT 'active',
				created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs (company_id)`,
		},
	},
	{
		version: 2,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS matches (
				id                  TEXT PRIMARY KEY,
				candidate_id        TEXT NOT NULL REFERENCES individuals(id),
				job_id              TEXT NOT NULL REFERENCES jobs(id),
				company_id          TEXT NOT NULL REFERENCES companies(id),
				score               DOUBLE PRECISION NOT NULL,
				breakdown           JSONB NOT NULL DEFAULT '{}',
				ai_justification    TEXT NOT NULL DEFAULT '',
				candidate_data      JSONB NOT NULL DEFAULT '{}',
				status              TEXT NOT NULL DEFAULT 'pending',
				matching_method     TEXT NOT NULL DEFAULT 'semantic',
				needs_recalculation BOOLEAN NOT NULL DEFAULT FALSE,
				warnings            JSONB NOT NULL DEFAULT '[]',
				candidate_notified  BOOLEAN NOT NULL DEFAULT FALSE,
				company_can_view    BOOLEAN NOT NULL DEFAULT FALSE,
				rejection_reason    TEXT NOT NULL DEFAULT '',
				created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
				expires_at          TIMESTAMPTZ NOT NULL,
				accepted_at         TIMESTAMPTZ,
				rejected_at         TIMESTAMPTZ
			)`,
			`CREATE INDEX IF NOT EXISTS idx_matches_candidate ON matches (candidate_id, status)`,
			`CREATE INDEX IF NOT EXISTS idx_matches_job ON matches (job_id, status)`,
			`CREATE INDEX IF NOT EXISTS idx_matches_pending_expiry ON matches (expires_at) WHERE status = 'pending'`,
			`CREATE TABLE IF NOT EXISTS connections (
				id               TEXT PRIMARY KEY,
				individual_id    TEXT NOT NULL REFERENCES individuals(id),
				company_id       TEXT NOT NULL REFERENCES companies(id),
				job_id           TEXT NOT NULL REFERENCES jobs(id),
				type             TEXT NOT NULL DEFAULT 'job_match',
				status           TEXT NOT NULL DEFAULT 'active',
				shared_data      JSONB NOT NULL DEFAULT '[]',
				custom_privacy   JSONB NOT NULL DEFAULT '{}',
				pipeline_stage   TEXT NOT NULL DEFAULT 'newMatches',
				opening_message  TEXT NOT NULL DEFAULT '',
				consent_given_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				revoked_at       TIMESTAMPTZ,
				revoked_reason   TEXT NOT NULL DEFAULT '',
				updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_connections_individual ON connections (individual_id, status)`,
			`CREATE INDEX IF NOT EXISTS idx_connections_company ON connections (company_id, status)`,
		},
	},
	{
		version: 3,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS audit_log (
				id                TEXT PRIMARY KEY,
				event_type        TEXT NOT NULL,
				accessed_by       TEXT NOT NULL,
				target_user       TEXT NOT NULL,
				data_accessed     JSONB NOT NULL DEFAULT '[]',
				data_type         TEXT NOT NULL,
				sensitivity_level TEXT NOT NULL,
				reason            TEXT NOT NULL DEFAULT '',
				ip_address        TEXT NOT NULL DEFAULT '',
				ts                TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_audit_target ON audit_log (target_user, ts)`,
			`CREATE INDEX IF NOT EXISTS idx_audit_accessor ON audit_log (accessed_by, ts)`,
		},
	},
}
