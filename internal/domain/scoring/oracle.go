package scoring

import "context"

// OracleResult is the outcome of a skill-similarity judgment. Method is
// either "semantic" or "keyword_fallback".
type OracleResult struct {
	Score  float64
	Method string
}

// SkillOracle judges how well a candidate's skills cover a job's required
// skills, recognising near-synonyms. Implementations must bound their own
// latency; callers fall back to KeywordSkillScore on error.
type SkillOracle interface {
	ScoreSkillSimilarity(ctx context.Context, candidateSkills, jobSkills []string) (OracleResult, error)
}
