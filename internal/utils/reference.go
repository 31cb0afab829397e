package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewReferenceID builds a ledger reference of the form
// {KIND}_{unix seconds}_{8 uppercase hex}, e.g. CREDIT_1767225600_9F86D081.
// The suffix comes from a random UUID.
func NewReferenceID(kind string, at time.Time) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s_%d_%s", strings.ToUpper(kind), at.Unix(), strings.ToUpper(hex[:8]))
}
