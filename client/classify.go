package client

import (
	"net/http"
	"strings"
)

// binaryContentTypes mark a successful body as a file rather than JSON.
var binaryContentTypes = []string{
	"application/octet-stream",
	"application/vnd.openxmlformats",
}

// isSuccess decides success purely from the status code.
func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// isBinary reports whether a successful response should be returned as a
// raw envelope. Only the hint and the declared Content-Type are consulted,
// so the body is never consumed here.
func isBinary(hint ResponseType, header http.Header) bool {
	if hint == ResponseBinary {
		return true
	}

	ct := strings.ToLower(header.Get("Content-Type"))
	for _, b := range binaryContentTypes {
		if strings.Contains(ct, b) {
			return true
		}
	}

	return false
}
