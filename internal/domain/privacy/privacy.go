package privacy

import (
	"fmt"
	"hash/fnv"
)

// Shared-data field names. A Connection's sharedData is an ordered allow-list
// built from these; a company never sees a field that is not listed.
const (
	FieldName           = "name"
	FieldEmail          = "email"
	FieldSkills         = "skills"
	FieldAssessment     = "assessment"
	FieldDiagnosis      = "diagnosis"
	FieldTherapist      = "therapist"
	FieldAccommodations = "accommodations"
	FieldExperience     = "experience"
	FieldEducation      = "education"
)

// Settings are the resolved sharing booleans of a candidate. Medical and
// therapeutic data is opt-in; everything else is disclosed once a Connection
// exists and can only be withheld by revoking the Connection entirely.
type Settings struct {
	VisibleInSearch        bool
	ShowRealName           bool
	ShareDiagnosis         bool
	ShareTherapistContact  bool
	ShareAssessmentDetails bool
}

// Overrides carry per-connection custom privacy. A nil field means "no
// override, fall back to the candidate default".
type Overrides struct {
	ShowRealName           *bool
	ShareDiagnosis         *bool
	ShareTherapistContact  *bool
	ShareAssessmentDetails *bool
}

// Defaults returns the hardcoded safe defaults applied at registration and
// whenever a field was never set explicitly.
func Defaults() Settings {
	return Settings{
		VisibleInSearch:        true,
		ShowRealName:           false,
		ShareDiagnosis:         false,
		ShareTherapistContact:  false,
		ShareAssessmentDetails: true,
	}
}

// Effective resolves connection-level overrides against candidate defaults.
// Per-field null-coalescing: explicit override wins, else candidate default.
func Effective(ov Overrides, def Settings) Settings {
	eff := def
	if ov.ShowRealName != nil {
		eff.ShowRealName = *ov.ShowRealName
	}
	if ov.ShareDiagnosis != nil {
		eff.ShareDiagnosis = *ov.ShareDiagnosis
	}
	if ov.ShareTherapistContact != nil {
		eff.ShareTherapistContact = *ov.ShareTherapistContact
	}
	if ov.ShareAssessmentDetails != nil {
		eff.ShareAssessmentDetails = *ov.ShareAssessmentDetails
	}
	return eff
}

// SharedData derives the ordered allow-list of fields a company may view.
// Diagnosis and therapist are the only gated fields; professional data is
// always shared once a Connection exists.
func SharedData(eff Settings, hasTherapist bool) []string {
	fields := []string{FieldName, FieldEmail, FieldSkills, FieldAssessment}
	if eff.ShareDiagnosis {
		fields = append(fields, FieldDiagnosis)
	}
	if eff.ShareTherapistContact && hasTherapist {
		fields = append(fields, FieldTherapist)
	}
	return append(fields, FieldAccommodations, FieldExperience, FieldEducation)
}

// Preview is shown to the candidate before consent is granted.
type Preview struct {
	CompanyWillSee    []string
	CompanyWillNotSee []string
}

func BuildPreview(eff Settings, hasTherapist bool) Preview {
	shared := SharedData(eff, hasTherapist)
	seen := make(map[string]bool, len(shared))
	for _, f := range shared {
		seen[f] = true
	}

	all := []string{
		FieldName, FieldEmail, FieldSkills, FieldAssessment,
		FieldDiagnosis, FieldTherapist,
		FieldAccommodations, FieldExperience, FieldEducation,
	}
	hidden := make([]string, 0, len(all))
	for _, f := range all {
		if !seen[f] {
			hidden = append(hidden, f)
		}
	}

	return Preview{CompanyWillSee: shared, CompanyWillNotSee: hidden}
}

// Contains reports whether field is in the sharedData allow-list.
func Contains(sharedData []string, field string) bool {
	for _, f := range sharedData {
		if f == field {
			return true
		}
	}
	return false
}

// Remove returns sharedData without the named fields, preserving order.
func Remove(sharedData []string, fields []string) []string {
	drop := make(map[string]bool, len(fields))
	for _, f := range fields {
		drop[f] = true
	}
	out := make([]string, 0, len(sharedData))
	for _, f := range sharedData {
		if !drop[f] {
			out = append(out, f)
		}
	}
	return out
}

// DisplayName returns the candidate's real name when disclosure is allowed,
// otherwise a label derived from the candidate ID. The label is stable across
// calls for the same candidate so list views do not re-shuffle identities.
func DisplayName(showRealName bool, realName, candidateID string) string {
	if showRealName && realName != "" {
		return realName
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(candidateID))
	return fmt.Sprintf("Anonymous Candidate %d", h.Sum32()%10000)
}
