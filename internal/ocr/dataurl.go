package ocr

import (
	"encoding/base64"
	"strings"

	"github.com/rotisserie/eris"
)

// ParseDataURL decodes an RFC 2397 data URL into its media type and payload.
// Both base64 and percent-free plain encodings are accepted; an omitted media
// type defaults to text/plain.
func ParseDataURL(s string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, eris.New("ocr: not a data URL")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, eris.New("ocr: data URL missing payload")
	}

	isBase64 := false
	if h, found := strings.CutSuffix(header, ";base64"); found {
		isBase64 = true
		header = h
	}
	mime = header
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i] // drop charset and other parameters
	}
	if mime == "" {
		mime = "text/plain"
	}

	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, eris.Wrap(err, "ocr: decode data URL payload")
		}
		return mime, data, nil
	}
	return mime, []byte(payload), nil
}
