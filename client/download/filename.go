package download

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// FilenameFromDisposition extracts the filename from a Content-Disposition
// header. An RFC 5987 filename* value is preferred over a plain filename.
// It returns "" when neither is present.
func FilenameFromDisposition(header string) string {
	var plain, extended string
	for param := range strings.SplitSeq(header, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"`)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "filename*":
			// charset'lang'percent-encoded
			if _, encoded, found := strings.Cut(value, "''"); found {
				value = encoded
			}
			if decoded, err := url.PathUnescape(value); err == nil {
				extended = decoded
			}
		case "filename":
			plain = value
		}
	}

	if extended != "" {
		return extended
	}
	return plain
}

// Target returns the path inside dir that a response with the given
// Content-Disposition header should be saved to.
func Target(dir, disposition string, optFns ...Option) (string, error) {
	opts, err := apply(optFns)
	if err != nil {
		return "", err
	}

	name := opts.name
	if name == "" {
		if clean, err := sanitize(FilenameFromDisposition(disposition)); err == nil {
			name = clean
		}
	}
	if name == "" {
		name = opts.fallback
	}
	if name == "" {
		return "", &Error{Err: ErrInvalidFilename, Detail: "response names no file and no fallback was given"}
	}

	return filepath.Join(dir, name), nil
}

// sanitize reduces name to its final element so a server cannot direct
// the write outside the target directory.
func sanitize(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return "", &Error{Err: ErrInvalidFilename, Detail: "empty"}
	}

	base := path.Base(name)
	switch base {
	case ".", "..", "/":
		return "", &Error{Err: ErrInvalidFilename, Detail: fmt.Sprintf("%q", name)}
	}

	return base, nil
}
