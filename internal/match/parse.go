package match

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"jobscout-engine/internal/domain"
)

// Evaluation is the decoded model answer.
type Evaluation struct {
	ProfileScore      float64
	ExpectationsScore float64
	Rationale         string
	Missing           []string
	TechStack         []string
}

var (
	thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>\s*`)
	fenceRe = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*$")
)

// key aliases, first match wins
var (
	profileKeys      = []string{"profile_score", "dopasowanie_kandydata"}
	expectationsKeys = []string{"expectations_score", "ocena_oferty"}
	rationaleKeys    = []string{"rationale", "opinia"}
	missingKeys      = []string{"missing", "braki"}
	techKeys         = []string{"techstack", "tech_stack"}
)

// ParseResponse decodes a model answer. Reasoning blocks, markdown fences and
// any text around the outermost JSON object are ignored. Missing or
// out-of-range scores are domain.ErrMalformed.
func ParseResponse(raw string) (Evaluation, error) {
	s := thinkRe.ReplaceAllString(raw, "")
	s = fenceRe.ReplaceAllString(s, "")

	start, end := strings.Index(s, "{"), strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return Evaluation{}, fmt.Errorf("no JSON object in response: %w", domain.ErrMalformed)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s[start:end+1]), &fields); err != nil {
		return Evaluation{}, fmt.Errorf("decode response: %v: %w", err, domain.ErrMalformed)
	}

	var ev Evaluation
	var err error
	if ev.ProfileScore, err = score(fields, profileKeys); err != nil {
		return Evaluation{}, err
	}
	if ev.ExpectationsScore, err = score(fields, expectationsKeys); err != nil {
		return Evaluation{}, err
	}
	if raw, ok := lookup(fields, rationaleKeys); ok {
		_ = json.Unmarshal(raw, &ev.Rationale)
		ev.Rationale = strings.TrimSpace(ev.Rationale)
	}
	if raw, ok := lookup(fields, missingKeys); ok {
		ev.Missing = stringList(raw)
	}
	if raw, ok := lookup(fields, techKeys); ok {
		ev.TechStack = stringList(raw)
	}
	return ev, nil
}

func lookup(fields map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}

func score(fields map[string]json.RawMessage, keys []string) (float64, error) {
	raw, ok := lookup(fields, keys)
	if !ok {
		return 0, fmt.Errorf("%s missing: %w", keys[0], domain.ErrMalformed)
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		// "85" is tolerated
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return 0, fmt.Errorf("%s not a number: %w", keys[0], domain.ErrMalformed)
		}
		if v, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, fmt.Errorf("%s not a number: %w", keys[0], domain.ErrMalformed)
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
		return 0, fmt.Errorf("%s=%v out of range: %w", keys[0], v, domain.ErrMalformed)
	}
	return v, nil
}

// stringList accepts a JSON array of strings or a single comma separated string.
func stringList(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return nil
		}
		list = strings.Split(s, ",")
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
