package artifact

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/qaflow/internal/blob"
)

// Defaults for job ids and output placement.
const (
	DefaultJobPrefix    = "gemini-job"
	DefaultOutputSuffix = "-processed"
	OutputFileName      = "gemini_output.json"
	FailurePrefix       = "failed"
)

// JobIDPattern matches ids produced by NewJobID: prefix, 8 hex characters and
// unix seconds.
var JobIDPattern = regexp.MustCompile(`^(.+)-([0-9a-f]{8})-([0-9]+)$`)

// NewJobID returns "{prefix}-{8 hex}-{unix seconds}". Uniqueness rests on the
// random component; the timestamp keeps ids roughly ordered by creation.
func NewJobID(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = DefaultJobPrefix
	}
	return fmt.Sprintf("%s-%s-%d", prefix, shortHex(), now.Unix())
}

// NewFailureID returns the synthetic id used in failure envelopes, when no
// job id may exist yet.
func NewFailureID() string {
	return FailurePrefix + "-" + shortHex()
}

func shortHex() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// OutputLocator places the artifact for jobID under the input namespace plus
// suffix: {scheme}://{namespace}{suffix}/processed/{jobID}/gemini_output.json.
func OutputLocator(input blob.Locator, suffix, jobID string) blob.Locator {
	return blob.Locator{
		Scheme:    input.Scheme,
		Namespace: input.Namespace + suffix,
		Key:       "processed/" + jobID + "/" + OutputFileName,
	}
}
