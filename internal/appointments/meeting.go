package appointments

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// NewMeetingLink mints a meeting room URL under baseURL with an
// unguessable 16-byte token.
func NewMeetingLink(baseURL string) (string, error) {
	token := make([]byte, 16)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("appointments: generate meeting token: %w", err)
	}
	return strings.TrimRight(baseURL, "/") + "/" + base64.RawURLEncoding.EncodeToString(token), nil
}
