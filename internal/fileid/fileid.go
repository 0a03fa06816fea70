// Package fileid fingerprints input files so runs over the same reference corpus can be matched up.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const prefix = "sha256:"

// Fingerprint returns a content hash of the file at path. Identical bytes always
// yield the same fingerprint, wherever the file lives.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return prefix + hex.EncodeToString(h.Sum(nil)), nil
}

// Short returns the first n hex digits of a fingerprint, for display.
func Short(fingerprint string, n int) string {
	digest := fingerprint
	if len(digest) > len(prefix) && digest[:len(prefix)] == prefix {
		digest = digest[len(prefix):]
	}
	if n <= 0 || n >= len(digest) {
		return digest
	}
	return digest[:n]
}
