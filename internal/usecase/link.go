package usecase

import (
	"net/url"
	"strings"
)

// BuildAnimationLink appends the text as a form-encoded `text` query value
// to the animation web app base URL. Pure and total: empty text yields a
// valid URL with an empty parameter, and any query already present on the
// base is preserved.
func BuildAnimationLink(baseURL, text string) string {
	v := url.Values{}
	v.Set("text", text)
	encoded := v.Encode()

	if strings.Contains(baseURL, "?") {
		return baseURL + "&" + encoded
	}
	return baseURL + "?" + encoded
}

// TruncateLabel shortens text for a button caption. Display truncation never
// touches the encoded URL, which always carries the full original text.
func TruncateLabel(text string, max int) string {
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
