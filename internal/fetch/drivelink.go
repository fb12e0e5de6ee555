package fetch

import (
	"fmt"
	"regexp"
)

// Google Drive share-link shapes that can be rewritten to the direct export
// form. Anything else is fetched as-is.
var drivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https://drive\.google\.com/file/d/([^/?#]+)/view`),
	regexp.MustCompile(`^https://drive\.google\.com/open\?id=([^&]+)`),
	regexp.MustCompile(`^https://drive\.google\.com/uc\?id=([^&]+)`),
}

// ResolveIndirectLink rewrites a recognized share link to its
// direct-download form. ok is false when the URL matches no known shape;
// the caller then uses the URL unchanged.
func ResolveIndirectLink(rawURL string) (string, bool) {
	for _, pattern := range drivePatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return fmt.Sprintf("https://drive.google.com/uc?export=download&id=%s", m[1]), true
		}
	}
	return "", false
}
