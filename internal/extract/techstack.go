package extract

import (
	"regexp"
	"sort"
	"strings"

	"jobscout-engine/internal/scrape/util"
)

// synonyms maps folded spellings onto one canonical token.
var synonyms = map[string]string{
	"k8s":                      "kubernetes",
	"gh actions":               "github actions",
	"github action":            "github actions",
	"gitlab-ci":                "gitlab ci",
	"gitlab ci/cd":             "gitlab ci",
	"gitlabci":                 "gitlab ci",
	"http api":                 "rest api",
	"web api":                  "rest api",
	"rest":                     "rest api",
	"restful api":              "rest api",
	"azure devops pipelines":   "azure devops",
	"azure pipelines":          "azure devops",
	"ado pipelines":            "azure devops",
	"azure devops ci/cd":       "azure devops",
	"qa automation":            "test automation",
	"sdet":                     "test automation",
	"automated testing":        "test automation",
	"hardware-in-the-loop":     "hil/sil",
	"software-in-the-loop":     "hil/sil",
	"python backend":           "python",
	"python scripting":         "python",
	"python 3":                 "python",
	"python3":                  "python",
	"continuous integration":   "ci/cd",
	"continuous delivery":      "ci/cd",
	"ci cd":                    "ci/cd",
	"cicd":                     "ci/cd",
	"ms azure":                 "azure",
	"azure cloud":              "azure",
	"microsoft azure":          "azure",
	"selenium webdriver":       "selenium",
	"golang":                   "go",
	"js":                       "javascript",
	"ts":                       "typescript",
	"postgres":                 "postgresql",
	"amazon web services":      "aws",
	"google cloud platform":    "gcp",
	"google cloud":             "gcp",
	"node":                     "node.js",
	"nodejs":                   "node.js",
	"react.js":                 "react",
	"reactjs":                  "react",
	"c sharp":                  "c#",
	"dotnet":                   ".net",
	"docker compose":           "docker",
	"robot framework (python)": "robot framework",
	"unix":                     "linux",
	"terraform cloud":          "terraform",
	"apache kafka":             "kafka",
	"pytest framework":         "pytest",
	"shell scripting":          "bash",
	"hil":                      "hil/sil",
	"sil":                      "hil/sil",
	"sql databases":            "sql",
	"rest api design":          "rest api",
	"unit tests":               "unit testing",
	"testy jednostkowe":        "unit testing",
	"testy automatyczne":       "test automation",
	"automatyzacja testow":     "test automation",
	"python (advanced)":        "python",
	"kubernetes (k8s)":         "kubernetes",
	"amazon aws":               "aws",
	"aws cloud":                "aws",
}

// skill levels shown next to each technology on some boards
var levelWords = map[string]bool{
	"nice to have":  true,
	"beginner":      true,
	"junior":        true,
	"regular":       true,
	"advanced":      true,
	"master":        true,
	"expert":        true,
	"mile widziane": true,
	"wymagane":      true,
	"required":      true,
	"optional":      true,
}

var (
	splitRe  = regexp.MustCompile(`[,;|•·\n\r\t]+|\s+/\s+|\s+-\s+`)
	parenRe  = regexp.MustCompile(`\s*\([^)]*\)`)
	maxToken = 40
)

// NormalizeTechStack turns free text ("Python, K8s | GH Actions\nDocker")
// into a sorted set of canonical lowercase tokens.
func NormalizeTechStack(texts ...string) []string {
	set := map[string]bool{}
	for _, text := range texts {
		for _, raw := range splitRe.Split(text, -1) {
			if tok := canonicalTech(raw); tok != "" {
				set[tok] = true
			}
		}
	}
	out := make([]string, 0, len(set))
	for tok := range set {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

func canonicalTech(raw string) string {
	tok := util.Fold(util.CleanText(raw))
	if c, ok := synonyms[tok]; ok {
		return c
	}
	tok = parenRe.ReplaceAllString(tok, "")
	tok = strings.TrimRight(strings.Trim(tok, " -*:"), ".")
	if tok == "" || len(tok) > maxToken || levelWords[tok] {
		return ""
	}
	if c, ok := synonyms[tok]; ok {
		return c
	}
	return tok
}
