package trigger

import (
	"fmt"
	"sort"
	"strings"
)

// MatchPayload compares the payload keys supplied on a trigger request
// against the expected field names configured for the event. The match
// is exact-set: no subset, no superset. A nil payload means the field
// was absent from the request body, which is distinct from an empty
// object.
//
// Pure function; the returned message is safe to show to the caller.
func MatchPayload(expected []string, payload map[string]string) (bool, string) {
	if len(expected) > 0 && payload == nil {
		return false, "Payload missing on request. Please check event configuration or provide needed payload fields."
	}

	if len(expected) == 0 {
		if len(payload) > 0 {
			return false, "Payload not found in event configuration but was provided in request."
		}
		return true, ""
	}

	var missing []string
	for _, name := range expected {
		if _, ok := payload[name]; !ok {
			missing = append(missing, name)
		}
	}

	known := make(map[string]struct{}, len(expected))
	for _, name := range expected {
		known[name] = struct{}{}
	}
	var extra []string
	for key := range payload {
		if _, ok := known[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)

	var msgs []string
	if len(missing) > 0 {
		msgs = append(msgs, fmt.Sprintf("Payload fields %q missing on request. Please check event configuration or provide needed payload fields.", strings.Join(missing, ", ")))
	}
	if len(extra) > 0 {
		msgs = append(msgs, fmt.Sprintf("Payload fields %q not found in event configuration.", strings.Join(extra, ", ")))
	}
	if len(msgs) > 0 {
		return false, strings.Join(msgs, " ")
	}

	return true, ""
}
