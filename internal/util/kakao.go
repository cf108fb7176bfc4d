// Package util holds KakaoTalk reply helpers.
package util

import "strings"

// KakaoTalk collapses a message behind "see more" once the preview runs past
// roughly 500 characters; zero-width spaces push the body past that point
// without showing anything.
const (
	KakaoSeeMorePadding = 500
	KakaoZeroWidthSpace = "\u200b"
)

var seeMorePad = strings.Repeat(KakaoZeroWidthSpace, KakaoSeeMorePadding)

// ApplyKakaoSeeMorePadding returns preview followed by body, with body folded
// behind the "see more" button. Blank bodies are returned unchanged.
func ApplyKakaoSeeMorePadding(body, preview string) string {
	if strings.TrimSpace(body) == "" {
		return body
	}
	sep := "\n"
	if strings.HasPrefix(body, "\n") {
		sep = ""
	}
	return strings.TrimSpace(preview) + seeMorePad + sep + body
}

// FoldLongReply folds text behind header once it has more than maxLines lines.
// A first line equal to header is dropped so it is not shown twice.
func FoldLongReply(text, header string, maxLines int) string {
	if strings.Count(strings.TrimSpace(text), "\n") < maxLines {
		return text
	}
	header = strings.TrimSpace(header)
	if first, rest, ok := strings.Cut(text, "\n"); ok && header != "" && strings.TrimSpace(first) == header {
		text = rest
	}
	return ApplyKakaoSeeMorePadding(text, header)
}
