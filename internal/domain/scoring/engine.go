package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// DefaultThreshold is the minimum overall score at which a match is
// materialized at all. Sub-threshold pairs leave no trace.
const DefaultThreshold = 60.0

type Weights struct {
	Skills         float64
	Accommodations float64
	Preferences    float64
	Location       float64
}

func DefaultWeights() Weights {
	return Weights{Skills: 0.40, Accommodations: 0.30, Preferences: 0.20, Location: 0.10}
}

// Candidate is the scoring view of a candidate: assessment-derived skills,
// declared accommodation needs and work preferences.
type Candidate struct {
	Skills               []string
	AccommodationsNeeded []string
	Preferences          map[string]string
	Location             string
}

// Job is the scoring view of a job posting. Attributes carries soft
// characteristics (hours, team_size) matched against candidate preferences.
type Job struct {
	RequiredSkills        []string
	AccommodationsOffered []string
	Location              string
	WorkMode              string
	Attributes            map[string]string
}

type Breakdown struct {
	Skills         float64
	Accommodations float64
	Preferences    float64
	Location       float64
}

type Result struct {
	Score              float64
	Breakdown          Breakdown
	Method             string
	NeedsRecalculation bool
	Justification      string
}

// Compute combines the four sub-scores under the given weights. The skills
// sub-score is supplied by the caller because it may come from the semantic
// oracle or from the keyword fallback; method records which path produced it.
func Compute(c Candidate, j Job, skillsScore float64, method string, needsRecalc bool, w Weights) Result {
	b := Breakdown{
		Skills:         clamp(skillsScore),
		Accommodations: clamp(AccommodationScore(c.AccommodationsNeeded, j.AccommodationsOffered)),
		Preferences:    clamp(PreferenceScore(c.Preferences, j)),
		Location:       clamp(LocationScore(c, j)),
	}

	total := b.Skills*w.Skills + b.Accommodations*w.Accommodations +
		b.Preferences*w.Preferences + b.Location*w.Location

	return Result{
		Score:              clamp(round2(total)),
		Breakdown:          b,
		Method:             method,
		NeedsRecalculation: needsRecalc,
		Justification:      buildJustification(b, method),
	}
}

// KeywordSkillScore is the deterministic fallback for skill similarity:
// exact and substring overlap, case-insensitive. A job without declared
// skill requirements imposes no skill criteria.
func KeywordSkillScore(candidateSkills, jobSkills []string) float64 {
	if len(jobSkills) == 0 {
		return 100
	}

	norm := make([]string, 0, len(candidateSkills))
	for _, s := range candidateSkills {
		s = normalizeTerm(s)
		if s != "" {
			norm = append(norm, s)
		}
	}

	matched := 0
	for _, js := range jobSkills {
		js = normalizeTerm(js)
		if js == "" {
			continue
		}
		for _, cs := range norm {
			if cs == js || strings.Contains(cs, js) || strings.Contains(js, cs) {
				matched++
				break
			}
		}
	}

	return clamp(round2(float64(matched) / float64(len(jobSkills)) * 100))
}

// AccommodationScore measures how many of the candidate's needed
// accommodations the job offers. No declared needs means full compatibility.
func AccommodationScore(needed, offered []string) float64 {
	if len(needed) == 0 {
		return 100
	}

	offeredSet := make(map[string]bool, len(offered))
	for _, o := range offered {
		offeredSet[normalizeTerm(o)] = true
	}

	matched := 0
	for _, n := range needed {
		if offeredSet[normalizeTerm(n)] {
			matched++
		}
	}

	return round2(float64(matched) / float64(len(needed)) * 100)
}

// PreferenceScore overlaps declared work-mode/hours/team-size preferences
// with job attributes. Preferences the job says nothing about are neutral.
func PreferenceScore(prefs map[string]string, j Job) float64 {
	if len(prefs) == 0 {
		return 100
	}

	attrs := make(map[string]string, len(j.Attributes)+1)
	for k, v := range j.Attributes {
		attrs[normalizeTerm(k)] = normalizeTerm(v)
	}
	if j.WorkMode != "" {
		attrs["work_mode"] = normalizeTerm(j.WorkMode)
	}

	declared := 0
	matched := 0
	for k, want := range prefs {
		want = normalizeTerm(want)
		if want == "" {
			continue
		}
		got, ok := attrs[normalizeTerm(k)]
		if !ok || got == "" {
			continue
		}
		declared++
		if got == want {
			matched++
		}
	}
	if declared == 0 {
		return 100
	}

	return round2(float64(matched) / float64(declared) * 100)
}

// LocationScore compares locations with an exact/region match, reduced (but
// never zeroed to block the match) when the work modes disagree.
func LocationScore(c Candidate, j Job) float64 {
	score := 0.0
	candLoc := normalizeTerm(c.Location)
	jobLoc := normalizeTerm(j.Location)

	switch {
	case candLoc == "" || jobLoc == "":
		score = 50
	case candLoc == jobLoc:
		score = 100
	case region(candLoc) != "" && region(candLoc) == region(jobLoc):
		score = 75
	case normalizeTerm(j.WorkMode) == "remote":
		// Location is irrelevant for fully remote roles.
		score = 90
	default:
		score = 25
	}

	wantMode := normalizeTerm(c.Preferences["work_mode"])
	if wantMode != "" && j.WorkMode != "" && wantMode != normalizeTerm(j.WorkMode) {
		score *= 0.5
	}

	return round2(score)
}

// genericTerms is the stoplist used to flag jobs whose skill requirements
// are too vague for the skill overlap to mean anything.
var genericTerms = map[string]bool{
	"communication":   true,
	"teamwork":        true,
	"motivated":       true,
	"team player":     true,
	"hard working":    true,
	"flexible":        true,
	"problem solving": true,
	"fast learner":    true,
	"detail oriented": true,
	"organized":       true,
}

// HasGenericRequirements reports whether at least half of the job's declared
// skills come from the generic-terms stoplist.
func HasGenericRequirements(jobSkills []string) bool {
	if len(jobSkills) == 0 {
		return false
	}
	generic := 0
	for _, s := range jobSkills {
		if genericTerms[normalizeTerm(s)] {
			generic++
		}
	}
	return generic*2 >= len(jobSkills)
}

func buildJustification(b Breakdown, method string) string {
	type factor struct {
		name  string
		score float64
	}
	factors := []factor{
		{"skill alignment", b.Skills},
		{"accommodation coverage", b.Accommodations},
		{"work preference fit", b.Preferences},
		{"location compatibility", b.Location},
	}
	sort.SliceStable(factors, func(i, k int) bool { return factors[i].score > factors[k].score })

	msg := fmt.Sprintf(
		"This match is driven primarily by %s (%.0f/100) and %s (%.0f/100), with %s at %.0f/100 and %s at %.0f/100.",
		factors[0].name, factors[0].score,
		factors[1].name, factors[1].score,
		factors[2].name, factors[2].score,
		factors[3].name, factors[3].score,
	)
	if method == "keyword_fallback" {
		msg += " Skill similarity was estimated by keyword overlap and will be refined."
	}
	return msg
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// region treats the last comma-separated component of a location as its
// region, e.g. "Berlin, Germany" -> "germany".
func region(loc string) string {
	parts := strings.Split(loc, ",")
	if len(parts) < 2 {
		return ""
	}
	return normalizeTerm(parts[len(parts)-1])
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
