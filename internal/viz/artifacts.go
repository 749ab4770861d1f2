package viz

import (
	"encoding/base64"
	"fmt"
	"os"
)

// Separator joins multiple inline image payloads in one response body; the
// frontend splits on it.
const Separator = "||VISUALIZATION_SEPARATOR||"

// EncodeArtifact reads a rendered PNG back and wraps it as a self-contained
// inline image payload.
func EncodeArtifact(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read chart %s: %w", path, err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// EncodeAll encodes every artifact it can, skipping unreadable files so a
// single bad artifact does not drop the rest.
func EncodeAll(paths []string) []string {
	var encoded []string
	for _, path := range paths {
		payload, err := EncodeArtifact(path)
		if err != nil {
			continue
		}
		encoded = append(encoded, payload)
	}
	return encoded
}
