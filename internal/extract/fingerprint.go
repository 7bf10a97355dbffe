package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"jobscout-engine/internal/scrape/util"
)

// Fingerprint identifies a posting across runs. The site's own offer id wins;
// otherwise the canonical link is used. Page text never contributes, so
// counters like "23 applicants" cannot change it.
func Fingerprint(siteID, sourceID, link string) string {
	key := strings.TrimSpace(sourceID)
	if key == "" {
		key = util.CanonicalURL(link)
	}
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(siteID)) + ":" + key))
	return hex.EncodeToString(sum[:])
}
