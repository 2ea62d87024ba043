package id

import (
	"strings"

	"github.com/google/uuid"
)

// Entity ID prefixes. They are part of the public contract: stored rows,
// audit entries and API payloads all carry prefixed identifiers so that a
// bare ID in a log line is attributable to an entity kind.
const (
	PrefixIndividual = "ind"
	PrefixCompany    = "comp"
	PrefixTherapist  = "ther"
	PrefixJob        = "job"
	PrefixMatch      = "match"
	PrefixConnection = "conn"
	PrefixAudit      = "adt"
)

func New(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"_") && len(id) > len(prefix)+1
}

// Prefix returns the entity prefix of id, or "" when id is not prefixed.
func Prefix(id string) string {
	i := strings.IndexByte(id, '_')
	if i <= 0 {
		return ""
	}
	return id[:i]
}
