package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// GenerateID generates a random ID with prefix
func GenerateID(prefix string) string {
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b))
}

// GenerateConnectionID generates a unique connection ID, assigned by the
// transport when a websocket is accepted.
func GenerateConnectionID() string {
	return GenerateID("conn")
}

// GenerateMessageID generates a unique chat message ID
func GenerateMessageID() string {
	return GenerateID("msg")
}

// GenerateCallID generates a unique call session ID
func GenerateCallID() string {
	return GenerateID("call")
}

// GenerateUploadName builds a collision-resistant stored filename from the
// original upload name.
func GenerateUploadName(originalName string) string {
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), SanitizeFilename(originalName))
}
