package search

import (
	"strings"

	"imgtools/pkg/config"
)

// safeURLBytes are kept as typed when a URL is re-quoted. Everything else
// outside the unreserved set is percent-encoded.
const safeURLBytes = "!#$%&'()*+,/:;=?@[]~"

// BuildURL substitutes the raw query into the endpoint template and
// re-quotes the result. The query is not form-encoded, so reserved
// characters such as & or # keep their URL meaning.
func BuildURL(endpoint, query string) string {
	return QuoteURL(strings.ReplaceAll(endpoint, config.QueryPlaceholder, query))
}

// QuoteURL percent-encodes bytes that cannot appear in a URL (spaces,
// control characters and non-ASCII) while leaving reserved characters and
// existing escapes untouched.
func QuoteURL(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if isUnreserved(c) || strings.IndexByte(safeURLBytes, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte("0123456789ABCDEF"[c>>4])
		b.WriteByte("0123456789ABCDEF"[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}
