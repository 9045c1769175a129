package repository

import (
	"crypto/rand"
	"encoding/hex"
)

// NewPublicID generates the external identifier stored in the public_id
// column of every entity table. Callers address entities by these opaque
// 32-character hex strings; auto-increment row ids never leave the
// repository layer. crypto/rand keeps the ids unguessable.
func NewPublicID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
