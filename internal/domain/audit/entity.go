package audit

import "time"

type EventType string

const (
	EventDataAccess     EventType = "data_access"
	EventDataMutation   EventType = "data_mutation"
	EventDataDeletion   EventType = "data_deletion"
	EventConsentGranted EventType = "consent_granted"
	EventConsentRevoked EventType = "consent_revoked"
)

type DataType string

const (
	DataTypeProfile      DataType = "Profile"
	DataTypeMedical      DataType = "Medical"
	DataTypeProfessional DataType = "Professional"
	DataTypeGDPRExport   DataType = "GDPR_Export"
	DataTypeGDPRErasure  DataType = "GDPR_Erasure"
)

type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// Access reasons recorded with each entry.
const (
	ReasonSelfAccess           = "self_access"
	ReasonTherapistPatientCare = "therapist_patient_care"
	ReasonPipelineReview       = "pipeline_review"
	ReasonConsentLifecycle     = "consent_lifecycle"
	ReasonGDPRRequest          = "gdpr_request"
)

// RetentionPeriod applies regardless of account deletion.
const RetentionPeriod = 7 * 365 * 24 * time.Hour

// Entry is an immutable audit record. Entries referencing deleted users keep
// their keys intact for the full retention period.
type Entry struct {
	ID               string
	EventType        EventType
	AccessedBy       string
	TargetUser       string
	DataAccessed     []string
	DataType         DataType
	SensitivityLevel Sensitivity
	Reason           string
	IPAddress        string
	Timestamp        time.Time
}
