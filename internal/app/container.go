package app

import (
	"context"
	"errors"
	"time"

	"neuromatch/internal/audit"
	"neuromatch/internal/config"
	"neuromatch/internal/database"
	"neuromatch/internal/database/migration"
	dbpostgres "neuromatch/internal/database/postgres"
	"neuromatch/internal/domain/scoring"
	"neuromatch/internal/infrastructure/cache"
	"neuromatch/internal/infrastructure/crypto"
	"neuromatch/internal/notification"
	"neuromatch/internal/pkg/jwt"
	"neuromatch/internal/repository"
	"neuromatch/internal/semantic/gemini"
	"neuromatch/internal/usecase"
	"neuromatch/internal/ws"

	"go.uber.org/zap"
)

// Container wires infrastructure, repositories and usecases. Everything
// downstream depends on interfaces; the container decides implementations.
type Container struct {
	Config config.Config
	Logger *zap.Logger
	DB     database.DB
	Cache  *cache.Redis
	JWT    jwt.Service
	Hub    *ws.Hub

	Recorder *audit.Recorder

	AuthUC      usecase.AuthUsecase
	CandidateUC usecase.CandidateUsecase
	JobUC       usecase.JobUsecase
	MatchingUC  usecase.MatchingUsecase
	LifecycleUC usecase.LifecycleUsecase
	ConsentUC   usecase.ConsentUsecase
	AccessUC    usecase.AccessUsecase
	GDPRUC      usecase.GDPRUsecase
}

func NewContainer(cfg config.Config, log *zap.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := migration.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	cipher, err := crypto.NewFieldCipher(cfg.Crypto.FieldKey)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	redisCache := cache.NewRedis(cfg.Redis, log)
	jwtSvc := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)

	hub := ws.NewHub(log)
	var notifier notification.Notifier = notification.NewHubNotifier(hub, log)

	oracle := buildOracle(ctx, cfg, log)

	candidateRepo := repository.NewPostgresCandidateRepository(db, cipher)
	companyRepo := repository.NewPostgresCompanyRepository(db)
	therapistRepo := repository.NewPostgresTherapistRepository(db)
	jobRepo := repository.NewPostgresJobRepository(db)
	matchRepo := repository.NewPostgresMatchRepository(db)
	connectionRepo := repository.NewPostgresConnectionRepository(db)
	auditRepo := repository.NewPostgresAuditRepository(db)

	recorder := audit.NewRecorder(auditRepo, log)

	matchingUC := usecase.NewMatchingUsecase(
		candidateRepo, jobRepo, matchRepo, connectionRepo,
		oracle, redisCache, notifier, log, cfg.Matching,
	)

	// Matching runs triggered by writes happen off the request path; a slow
	// oracle must not delay the job-create or assessment response.
	runForJob := func(jobID string) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := matchingUC.RunMatchingForJob(ctx, jobID); err != nil {
				log.Warn("matching run after job create failed", zap.String("job_id", jobID), zap.Error(err))
			}
		}()
	}
	runForCandidate := func(candidateID string) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := matchingUC.RunMatchingForCandidate(ctx, candidateID); err != nil {
				log.Warn("matching run after assessment failed", zap.String("candidate_id", candidateID), zap.Error(err))
			}
		}()
	}

	return &Container{
		Config:   cfg,
		Logger:   log,
		DB:       db,
		Cache:    redisCache,
		JWT:      jwtSvc,
		Hub:      hub,
		Recorder: recorder,

		AuthUC:      usecase.NewAuthUsecase(candidateRepo, companyRepo, therapistRepo, jwtSvc),
		CandidateUC: usecase.NewCandidateUsecase(candidateRepo, redisCache, runForCandidate),
		JobUC:       usecase.NewJobUsecase(jobRepo, runForJob),
		MatchingUC:  matchingUC,
		LifecycleUC: usecase.NewLifecycleUsecase(
			matchRepo, connectionRepo, candidateRepo, jobRepo,
			recorder, redisCache, notifier, log,
		),
		ConsentUC: usecase.NewConsentUsecase(
			connectionRepo, candidateRepo, recorder, redisCache, notifier, log,
		),
		AccessUC: usecase.NewAccessUsecase(candidateRepo, connectionRepo, recorder),
		GDPRUC: usecase.NewGDPRUsecase(
			candidateRepo, matchRepo, connectionRepo, auditRepo,
			recorder, redisCache, notifier, log,
		),
	}, nil
}

// buildOracle returns the Gemini-backed skill oracle, or a stub that always
// errors so scoring degrades to the keyword fallback when no API key is set.
func buildOracle(ctx context.Context, cfg config.Config, log *zap.Logger) scoring.SkillOracle {
	gen, err := gemini.NewGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Warn("semantic oracle disabled, keyword fallback only", zap.Error(err))
		return unavailableOracle{}
	}
	return gemini.NewOracle(gen, log, cfg.Matching.OracleTimeout)
}

var errOracleDisabled = errors.New("semantic oracle disabled")

type unavailableOracle struct{}

func (unavailableOracle) ScoreSkillSimilarity(ctx context.Context, candidateSkills, jobSkills []string) (scoring.OracleResult, error) {
	return scoring.OracleResult{}, errOracleDisabled
}

func (c *Container) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
