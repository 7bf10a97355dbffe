package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg with everything a run
// needs checked.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Filters.RequireAny = trimList(out.Filters.RequireAny)
	out.Filters.BlockAny = trimList(out.Filters.BlockAny)
	out.Filters.Locations = trimList(out.Filters.Locations)
	out.Prompts.Profile = strings.TrimSpace(out.Prompts.Profile)
	out.Prompts.Expectations = strings.TrimSpace(out.Prompts.Expectations)

	for i := range out.Sites {
		out.Sites[i].Adapter = strings.ToLower(strings.TrimSpace(out.Sites[i].Adapter))
		out.Sites[i].URL = strings.TrimSpace(out.Sites[i].URL)
	}

	// ---- Validation rules ----

	if err := Validate(out); err != nil {
		res.addErr("%v", err)
	}

	if out.Prompts.Profile == "" {
		res.addErr("prompts.profile (or JOBSCOUT_PROFILE) is required")
	}
	if out.Prompts.Expectations == "" {
		res.addErr("prompts.expectations (or JOBSCOUT_EXPECTATIONS) is required")
	}

	enabled := 0
	for _, s := range out.Sites {
		if s.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		res.addWarn("no sites enabled; only unscored offers from earlier runs will be processed.")
	}

	if out.Pipeline.Workers > 16 {
		res.addWarn("pipeline.workers is %d; job boards may start throttling.", out.Pipeline.Workers)
	}
	if out.Pipeline.IntervalMinutes > 0 && out.Pipeline.IntervalMinutes < 15 {
		res.addWarn("pipeline.interval_minutes is very low (%d) and may cause rate limits.", out.Pipeline.IntervalMinutes)
	}

	// simple conflict check
	blockSet := map[string]bool{}
	for _, b := range out.Filters.BlockAny {
		blockSet[strings.ToLower(b)] = true
	}
	for _, a := range out.Filters.RequireAny {
		if blockSet[strings.ToLower(a)] {
			res.addWarn("keyword appears in both require_any and block_any: %q", a)
		}
	}

	return out, res
}
