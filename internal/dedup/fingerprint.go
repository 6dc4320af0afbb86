package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"vacradar/internal/textutil"
)

// Fingerprint derives the content fingerprint of a posting: a SHA-256 hex
// digest over normalized title, normalized company, and trimmed link.
// Byte-identical postings always collide; near-identical ones are left to
// the fuzzy stage.
func Fingerprint(title, company, link string) string {
	payload := textutil.Normalize(title) + "|" + textutil.Normalize(company) + "|" + strings.TrimSpace(link)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
