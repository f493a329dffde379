package schema

import (
	"encoding/json"
	"fmt"

	"github.com/spaolacci/murmur3"
)

// Fingerprint returns a murmur3 128-bit digest of the schema's canonical
// JSON form, excluding the version number. Two schemas with equal
// fingerprints define the same objects; the updater uses this to skip
// no-op commits and the history log stores it for integrity checks.
func (s *Schema) Fingerprint() (string, error) {
	// Version is excluded so that re-registering an identical schema under a
	// new version number still fingerprints the same.
	shadow := *s
	shadow.Version = 0

	raw, err := json.Marshal(&shadow)
	if err != nil {
		return "", fmt.Errorf("schema: marshal for fingerprint: %w", err)
	}

	h1, h2 := murmur3.Sum128(raw)
	return fmt.Sprintf("%016x%016x", h1, h2), nil
}
