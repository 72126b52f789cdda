package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ShelterID produces a deterministic ID from the shelter's identifying
// fields, so republishing an unchanged register yields the same keys.
func ShelterID(s Shelter) string {
	input := fmt.Sprintf("%s|%s|%s|%s|%s",
		s.Name, s.Settlement, s.Address, formatOptional(s.Longitude), formatOptional(s.Latitude))
	hash := sha256.Sum256([]byte(input))
	return "shelter-" + hex.EncodeToString(hash[:8])
}

// PayloadHash fingerprints a raw payload for change detection.
func PayloadHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
