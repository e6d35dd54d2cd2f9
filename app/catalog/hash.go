package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/lysyi3m/course-comb/app/course"
)

// ContentHash fingerprints the normalized course, so a re-fetched document
// that normalizes to the same record is recognized as unchanged.
func ContentHash(c *course.Course) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode course: %w", err)
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
