package fulfillment

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// TrackingPrefix starts every tracking number issued by the reference clients.
const TrackingPrefix = "AMZ-"

// NewTrackingNumber returns TrackingPrefix followed by 8 uppercase hex characters.
func NewTrackingNumber() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return TrackingPrefix + strings.ToUpper(hex.EncodeToString(b)), nil
}
