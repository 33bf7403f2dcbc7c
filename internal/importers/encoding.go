package importers

import (
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// DetectAndDecode turns raw uploaded bytes into text using statistical
// charset detection. Detectors are unreliable on short samples, so a
// low-confidence guess is overridden by strict UTF-8 validation before the
// guessed charset is tried. The function never fails: undecodable bytes
// degrade to replacement characters rather than aborting the upload.
func DetectAndDecode(content []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(content)

	if err == nil && result.Confidence < 70 && utf8.Valid(content) {
		return string(content)
	}

	if err == nil {
		if enc, lookupErr := htmlindex.Get(result.Charset); lookupErr == nil {
			if decoded, decodeErr := enc.NewDecoder().Bytes(content); decodeErr == nil {
				return string(decoded)
			}
		}
	}

	if utf8.Valid(content) {
		return string(content)
	}
	return strings.ToValidUTF8(string(content), string(utf8.RuneError))
}

// DecodeWithFallback tries a fixed chain of encodings: UTF-8, then
// Windows-1251 for Cyrillic exports, then Latin-1. It is the cheap path used
// where statistical detection is not warranted.
func DecodeWithFallback(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}
	if decoded, err := charmap.Windows1251.NewDecoder().Bytes(content); err == nil {
		return string(decoded), nil
	}
	if decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content); err == nil {
		return string(decoded), nil
	}
	return "", formatErrorf("unable to decode file, please use UTF-8 encoding")
}

// detectDelimiter sniffs the CSV dialect from the header line. Book Tracker
// and most European spreadsheet exports use semicolons; everything else
// defaults to commas.
func detectDelimiter(text string) rune {
	header, _, _ := strings.Cut(text, "\n")
	if strings.ContainsRune(header, ';') {
		return ';'
	}
	return ','
}
