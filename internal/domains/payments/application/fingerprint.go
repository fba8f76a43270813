package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/shopspring/decimal"
)

type initiateFingerprint struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

// Fingerprint hashes the parts of an initiation that must match on replay.
func Fingerprint(userID string, amount decimal.Decimal) (string, error) {
	payload, err := json.Marshal(initiateFingerprint{UserID: userID, Amount: amount.StringFixed(2)})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// scopedKey keeps two users' identical Idempotency-Key headers apart.
func scopedKey(userID, key string) string {
	return userID + ":" + key
}
