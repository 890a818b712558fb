package upstream

import "strings"

// TransientPhrases are substrings of session service errors that indicate a
// momentary failure inside the service's event loop. Matching is case-insensitive.
var TransientPhrases = []string{
	"asyncio event loop",
	"event loop",
	"loop must not change",
}

// IsTransient reports whether an upstream error message signals a retryable failure
func IsTransient(message string) bool {
	if message == "" {
		return false
	}

	lower := strings.ToLower(message)
	for _, phrase := range TransientPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
