package patient

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// generateMRN produces a candidate medical record number of the form
// MRN-YYYYMMDD-XXXX. Uniqueness is checked against the store by the caller.
func generateMRN(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("generate mrn: %w", err)
	}
	return fmt.Sprintf("MRN-%s-%04d", now.Format("20060102"), n.Int64()), nil
}

// newInvitationToken returns a 256-bit random token, hex encoded.
func newInvitationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate invitation token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
