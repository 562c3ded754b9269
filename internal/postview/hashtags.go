package postview

import (
	"regexp"
	"strings"
)

// A hashtag starts at the beginning of the text or after a character that
// cannot be part of a word; words may be joined by single dashes.
var hashtagRe = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_&#/])(#[\p{L}\p{N}_]+(?:-[\p{L}\p{N}_]+)*)`)

// Hashtags lists the hashtags of text in order of appearance
func Hashtags(text string) []string {
	matches := hashtagRe.FindAllStringSubmatch(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

// HasNSFWTag reports whether text carries a #nsfw hashtag, in any case
func HasNSFWTag(text string) bool {
	for _, tag := range Hashtags(text) {
		if strings.EqualFold(tag, "#nsfw") {
			return true
		}
	}
	return false
}
