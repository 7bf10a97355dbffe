package match

import (
	"fmt"
	"strings"

	"jobscout-engine/internal/domain"
)

// Prompts are the candidate-specific parts of every scoring request.
type Prompts struct {
	Profile      string
	Expectations string
}

const (
	roleMessage = "You rate how well IT job offers fit one candidate. " +
		"Reply with ONLY valid UTF-8 JSON, no markdown and no explanation of your reasoning."

	schemaMessage = "Output exactly this JSON:\n" +
		`{ "expectations_score": <int 0-100>, ` +
		`"profile_score": <int 0-100>, ` +
		`"techstack": ["...", "..."], ` +
		`"missing": ["...", "..."], ` +
		`"rationale": "at most 5 short sentences" }` + "\n" +
		"expectations_score: how well the offer meets the candidate's expectations; " +
		"profile_score: how well the candidate meets the offer's requirements; " +
		"techstack: 1-20 unique technologies from the offer, lowercase; " +
		"missing: requirements from the offer the candidate does not meet."

	synonymMessage = "Normalize techstack (lowercase): " +
		`"azure devops pipelines|azure pipelines|ado pipelines|azure devops ci/cd"→"azure devops"; ` +
		`"qa automation|sdet|automated testing"→"test automation"; ` +
		`"http api|web api"→"rest api"; ` +
		`"hardware-in-the-loop|software-in-the-loop"→"hil/sil"; ` +
		`"python backend|python scripting"→"python"; ` +
		`"continuous integration|continuous delivery"→"ci/cd"; ` +
		`"gh actions|github actions"→"github actions"; ` +
		`"gitlab-ci|gitlab ci/cd"→"gitlab ci"; ` +
		`"k8s|kubernetes"→"kubernetes"; ` +
		`"ms azure|azure cloud"→"azure"; ` +
		`"selenium webdriver"→"selenium".`
)

// Request builds the scoring prompt for o.
func (p Prompts) Request(o domain.Offer) Request {
	var b strings.Builder
	fmt.Fprintf(&b, "Full text of the offer at %s:\n", o.SourceURL)
	fmt.Fprintf(&b, "Title: %s\nCompany: %s\n", o.Title, o.Company)
	if o.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", o.Location)
	}
	if o.Remote {
		b.WriteString("Remote: yes\n")
	}
	if s := salaryLine(o.Salary); s != "" {
		fmt.Fprintf(&b, "Salary: %s\n", s)
	}
	if len(o.TechStack) > 0 {
		fmt.Fprintf(&b, "Tech stack: %s\n", strings.Join(o.TechStack, ", "))
	}
	b.WriteString("\n")
	b.WriteString(o.Description)

	return Request{
		System: []string{roleMessage, schemaMessage, p.Profile, synonymMessage, p.Expectations},
		User:   b.String(),
	}
}

func salaryLine(s domain.Salary) string {
	if !s.Known() {
		return ""
	}
	var lo, hi float64
	if s.Min != nil {
		lo = *s.Min
	}
	if s.Max != nil {
		hi = *s.Max
	}
	if s.Min == nil {
		lo = hi
	}
	if s.Max == nil {
		hi = lo
	}
	out := fmt.Sprintf("%.0f-%.0f", lo, hi)
	if s.Currency != "" {
		out += " " + s.Currency
	}
	if s.Period != "" {
		out += "/" + s.Period
	}
	return out
}
