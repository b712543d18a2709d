package link

import (
	"strings"
)

const upperhex = "0123456789ABCDEF"

// EncodeKey percent-encodes each "/"-separated segment of an object key
// independently, so separators survive and "a b/c#d" becomes "a%20b/c%23d".
func EncodeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = EncodeComponent(seg)
	}
	return strings.Join(segments, "/")
}

// EncodeComponent escapes every byte of s except A-Z a-z 0-9 and - _ . ! ~ * ' ( )
func EncodeComponent(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !shouldEscape(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func shouldEscape(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return false
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return false
	}
	return true
}

// JoinURL joins a base URL and a path with exactly one slash between them
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// PublicURL returns the public address of key under baseURL
func PublicURL(baseURL, key string) string {
	return JoinURL(baseURL, EncodeKey(key))
}

// IsEmbeddable reports whether a MIME type renders inline (images and video)
func IsEmbeddable(mime string) bool {
	return strings.HasPrefix(mime, "image/") || strings.HasPrefix(mime, "video/")
}

// Markdown formats the link inserted into the note: an embed for images
// and video, a named link for everything else.
func Markdown(url, mime, displayName string) string {
	if IsEmbeddable(mime) {
		return "![](" + url + ")"
	}
	return "[" + displayName + "](" + url + ")"
}
