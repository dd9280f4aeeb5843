package client

import (
	"encoding/base64"
	"os"
	"strings"

	"github.com/Mil05h/calories-ai/apperr"
)

// EncodeImageFile reads an image file and returns its raw base64 encoding,
// ready for an AnalysisRequest. Any data-URI prefix in the source is
// stripped. Runs to completion before any network call; an unreadable
// file surfaces as an encoding error.
func EncodeImageFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperr.Wrap(apperr.EncodingError, "could not read image file", err)
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	return StripDataURI(encoded), nil
}

// StripDataURI removes a "data:<mime>;base64," prefix when present.
func StripDataURI(s string) string {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			return s[i+1:]
		}
	}
	return s
}
