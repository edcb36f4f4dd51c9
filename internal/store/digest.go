package store

import (
	"crypto/sha256"
	"encoding/hex"
)

// digestContent returns a stable content digest for file-change detection
// (verify / update_paths digest comparison, §4.5).
func digestContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
