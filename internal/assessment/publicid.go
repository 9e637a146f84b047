package assessment

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// publicIDPrefix marks identifiers issued by this service.
const publicIDPrefix = "YX"

// NewPublicID generates a shareable assessment identifier of the form
// YX<yymmdd><4 random digits>. The random suffix is small, so callers must
// treat the result as a candidate and retry on a storage-level uniqueness
// conflict.
func NewPublicID(now time.Time) string {
	return fmt.Sprintf("%s%s%04d", publicIDPrefix, now.UTC().Format("060102"), rand.IntN(10000))
}
