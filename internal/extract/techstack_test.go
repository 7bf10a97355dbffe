package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTechStack(t *testing.T) {
	cases := []struct {
		in   []string
		want []string
	}{
		{[]string{"Python, K8s | GH Actions\nDocker"}, []string{"docker", "github actions", "kubernetes", "python"}},
		{[]string{"Python", "python", " PYTHON "}, []string{"python"}},
		{[]string{"Selenium WebDriver; QA Automation; SDET"}, []string{"selenium", "test automation"}},
		{[]string{"CI/CD • GitLab-CI • Continuous Integration"}, []string{"ci/cd", "gitlab ci"}},
		{[]string{"Python\nadvanced\nDocker\nregular"}, []string{"docker", "python"}},
		{[]string{"Pytest (nice to have) / .NET / Node.js"}, []string{".net", "node.js", "pytest"}},
		{[]string{"Język angielski - B2"}, []string{"b2", "jezyk angielski"}},
		{nil, []string{}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeTechStack(tc.in...), "%q", tc.in)
	}
}

func TestNormalizeTechStackDropsProse(t *testing.T) {
	got := NormalizeTechStack("You will be working with a modern stack and a friendly team, Go")
	assert.Equal(t, []string{"go"}, got)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("pracuj", "1004285879", "https://www.pracuj.pl/praca/x,oferta,1004285879?s=1")
	b := Fingerprint("pracuj", "1004285879", "https://www.pracuj.pl/praca/x-renamed,oferta,1004285879")
	assert.Equal(t, a, b, "offer id wins over link")

	c := Fingerprint("hexagon", "", "https://hexagon.com/job/1/?utm_source=x#apply")
	d := Fingerprint("hexagon", "", "https://HEXAGON.com/job/1")
	assert.Equal(t, c, d, "canonical link")

	assert.NotEqual(t, Fingerprint("justjoinit", "1", ""), Fingerprint("pracuj", "1", ""))
}
