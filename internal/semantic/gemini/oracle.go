package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"neuromatch/internal/domain/match"
	"neuromatch/internal/domain/scoring"
	"neuromatch/internal/logger"

	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

const (
	defaultTimeout   = 10 * time.Second
	defaultMaxLogLen = 200
)

const promptTemplate = `You judge how well a candidate's skills cover a job's required skills.
Recognise near-synonyms and broader/narrower terms (e.g. "Frontend development" covers "React").
Score from 0 to 100 where 100 means every required skill is covered.

Candidate skills:
{{CANDIDATE_SKILLS}}

Required skills:
{{JOB_SKILLS}}

Respond with JSON only: {"score": <0-100>, "reason": "<one sentence>"}`

// Oracle scores skill similarity through Gemini with a bounded timeout.
// Errors are returned to the caller, which degrades to the deterministic
// keyword fallback for that single candidate.
type Oracle struct {
	generator contentGenerator
	logger    *zap.Logger
	timeout   time.Duration
	maxLogLen int
}

func NewOracle(generator contentGenerator, log *zap.Logger, timeout time.Duration) *Oracle {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Oracle{
		generator: generator,
		logger:    log,
		timeout:   timeout,
		maxLogLen: defaultMaxLogLen,
	}
}

func (o *Oracle) ScoreSkillSimilarity(ctx context.Context, candidateSkills, jobSkills []string) (scoring.OracleResult, error) {
	if len(jobSkills) == 0 {
		return scoring.OracleResult{Score: 100, Method: match.MethodSemantic}, nil
	}

	prompt := buildPrompt(candidateSkills, jobSkills)

	o.logger.Debug("semantic oracle request",
		zap.Int("candidate_skills", len(candidateSkills)),
		zap.Int("job_skills", len(jobSkills)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
	)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	raw, err := o.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return scoring.OracleResult{}, err
	}

	o.logger.Debug("semantic oracle response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, o.maxLogLen)),
	)

	score, err := parseScore(raw)
	if err != nil {
		return scoring.OracleResult{}, err
	}

	return scoring.OracleResult{Score: score, Method: match.MethodSemantic}, nil
}

func buildPrompt(candidateSkills, jobSkills []string) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{CANDIDATE_SKILLS}}", bulletList(candidateSkills))
	return strings.ReplaceAll(prompt, "{{JOB_SKILLS}}", bulletList(jobSkills))
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "- (none)"
	}
	var b strings.Builder
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func parseScore(raw string) (float64, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return 0, fmt.Errorf("parse oracle response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		return 0, fmt.Errorf("oracle response missing score")
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
