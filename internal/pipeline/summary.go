package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Summary counts what one run did. Matched includes resumed offers.
type Summary struct {
	RunID          string
	Resumed        int
	Listed         int
	Extracted      int
	Deduplicated   int
	Matched        int
	Unscored       int
	Dropped        int
	DroppedByKind  map[string]int
	UnscoredByKind map[string]int
	Started        time.Time
	Finished       time.Time
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run=%s resumed=%d listed=%d extracted=%d deduplicated=%d matched=%d unscored=%d dropped=%d",
		s.RunID, s.Resumed, s.Listed, s.Extracted, s.Deduplicated, s.Matched, s.Unscored, s.Dropped)
	if len(s.DroppedByKind) > 0 {
		b.WriteString(" (" + kinds(s.DroppedByKind) + ")")
	}
	if !s.Finished.IsZero() {
		fmt.Fprintf(&b, " took=%s", s.Finished.Sub(s.Started).Round(time.Millisecond))
	}
	return b.String()
}

func kinds(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, " ")
}
