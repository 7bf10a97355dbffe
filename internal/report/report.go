// Package report renders scored offers as a standalone HTML page for review.
package report

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/store"
)

var page = template.Must(template.New("report").Funcs(template.FuncMap{
	"salary": salary,
	"join":   func(xs []string) string { return strings.Join(xs, ", ") },
	"score":  func(v float64) string { return fmt.Sprintf("%.0f", v) },
}).Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Job Offers Report</title>
<style>
body{font-family:sans-serif;margin:2em}
table{border-collapse:collapse;width:100%}
td,th{border:1px solid #ccc;padding:.4em;vertical-align:top;text-align:left}
.hi{background:#e6f4ea}.lo{background:#fce8e6}
</style></head><body>
<h1>Job Offers Report</h1>
<p>{{len .Rows}} offers, generated {{.Generated.Format "2006-01-02 15:04"}}</p>
<table>
<tr><th>Profile</th><th>Expectations</th><th>Offer</th><th>Company</th><th>Location</th><th>Salary</th><th>Tech stack</th><th>Missing</th><th>Rationale</th><th>Evaluated</th></tr>
{{- range .Rows}}
<tr class="{{.Class}}">
<td>{{score .Match.ProfileScore}}</td>
<td>{{score .Match.ExpectationsScore}}</td>
<td><a href="{{.Offer.SourceURL}}" target="_blank">{{.Offer.Title}}</a></td>
<td>{{.Offer.Company}}</td>
<td>{{.Offer.Location}}{{if .Offer.Remote}} (remote){{end}}</td>
<td>{{salary .Offer.Salary}}</td>
<td>{{join .Offer.TechStack}}</td>
<td>{{join .Match.Missing}}</td>
<td>{{.Match.Rationale}}</td>
<td>{{.Age}}</td>
</tr>
{{- end}}
</table></body></html>
`))

type row struct {
	store.Scored
	Class string
	Age   string
}

// Write renders rows in the order given.
func Write(w io.Writer, rows []store.Scored, now time.Time) error {
	data := struct {
		Rows      []row
		Generated time.Time
	}{Generated: now}
	for _, s := range rows {
		r := row{Scored: s, Age: humanize.RelTime(s.Match.EvaluatedAt, now, "ago", "from now")}
		switch {
		case s.Match.ProfileScore >= 75:
			r.Class = "hi"
		case s.Match.ProfileScore < 40:
			r.Class = "lo"
		}
		data.Rows = append(data.Rows, r)
	}
	return page.Execute(w, data)
}

// WriteFile writes dir/report_YYYYMMDD_HHMMSS.html and returns its path.
func WriteFile(dir string, rows []store.Scored, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "report_"+now.Format("20060102_150405")+".html")

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := Write(f, rows, now); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("render report: %w", err)
	}
	return path, f.Close()
}

func salary(s domain.Salary) string {
	if !s.Known() {
		return ""
	}
	amount := func(v *float64) string {
		if v == nil {
			return "?"
		}
		return humanize.Comma(int64(*v))
	}
	out := amount(s.Min)
	if s.Max != nil && (s.Min == nil || *s.Max != *s.Min) {
		out += " - " + amount(s.Max)
	}
	if s.Currency != "" {
		out += " " + s.Currency
	}
	if s.Period != "" {
		out += " / " + s.Period
	}
	return out
}
