// SPDX-License-Identifier: AGPL-3.0-or-later
package history

import (
	"encoding/json"
	"fmt"
	"time"
)

// legacyLayouts are timezone-less ISO-8601 forms found in older history
// files. They are read as UTC.
var legacyLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// Timestamp is an ISO-8601 instant, written as RFC 3339 in UTC.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	for _, layout := range legacyLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	// Unreadable timestamps are treated as absent so the entry gets pruned.
	t.Time = time.Time{}
	return nil
}
