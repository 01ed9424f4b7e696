package facts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/steinarvk/brator/internal/models"
)

// ContentHash fingerprints a fact's payload. Two imports of the same key with
// the same hash are the same version; a differing hash deactivates the old
// version and creates a new one. The key itself is not part of the hash.
func ContentHash(f *models.Fact) (string, error) {
	h := sha256.New()
	fmt.Fprintf(h, "%s\n", f.Type)
	switch f.Type {
	case models.AnswerBoolean:
		fmt.Fprintf(h, "%s\n%t\n", f.Boolean.QuestionText, f.Boolean.CorrectAnswer)
	case models.AnswerNumeric:
		fmt.Fprintf(h, "%s\n%s\n%.2f\n", f.Numeric.QuestionText, f.Numeric.Unit, f.Numeric.CorrectAnswer)
	default:
		return "", fmt.Errorf("content hash: illegal fact type %q", f.Type)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
