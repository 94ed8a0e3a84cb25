package backend

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// bytesToEtag returns the quoted entity tag of a response body.
func bytesToEtag(data []byte) string {
	return fmt.Sprintf("\"%x\"", md5.Sum(data))
}

// bytesPlusTotalCountToEtag folds the total match count into the tag, so
// a list page whose items are unchanged but whose collection grew still
// gets a new tag.
func bytesPlusTotalCountToEtag(data []byte, totalCount int) string {
	hash := md5.New()
	hash.Write(data)
	fmt.Fprintf(hash, "%d", totalCount)
	return fmt.Sprintf("\"%x\"", hash.Sum(nil))
}

// ifNoneMatchFound returns true if etag is found in ifNoneMatch. The
// header value is one of:
// If-None-Match: "<etag_value>"
// If-None-Match: "<etag_value>", "<etag_value>", ...
// If-None-Match: *
func ifNoneMatchFound(ifNoneMatch, etag string) bool {
	ifNoneMatch = strings.Trim(ifNoneMatch, " ")
	if len(ifNoneMatch) == 0 {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}
	for _, s := range strings.Split(ifNoneMatch, ",") {
		if strings.Trim(s, " \"") == strings.Trim(etag, " \"") {
			return true
		}
	}
	return false
}
