package parc

import (
	"os"
	"strings"

	"golang.org/x/text/cases"
)

// EnableEnvVar is the environment variable that switches PARC on or off for
// a compilation unit — the pass's one and only external enable/disable
// flag (spec.md §6). Kept generic rather than literally matching any one
// upstream project's variable name.
const EnableEnvVar = "PARC_ENABLE"

var foldCaser = cases.Fold()

// Enabled reports whether EnableEnvVar is set to a recognized truthy value.
// Matching is case-insensitive via golang.org/x/text/cases.Fold, which
// normalizes Unicode case-folding edge cases a plain strings.ToLower would
// miss; the truthy vocabulary check itself is a plain switch over a fixed,
// small set of values, not a localization concern.
func Enabled() bool {
	raw, ok := os.LookupEnv(EnableEnvVar)
	if !ok {
		return false
	}
	return isTruthy(foldCaser.String(strings.TrimSpace(raw)))
}

func isTruthy(folded string) bool {
	switch folded {
	case "1", "on", "yes", "true", "y", "t":
		return true
	default:
		return false
	}
}

// Disabled is the negation of Enabled, for call sites that read better as
// a guard clause.
func Disabled() bool {
	return !Enabled()
}
