package openschema

import (
	"fmt"
	"strconv"
	"strings"
)

// Pointer renders an error location as an RFC 6901 JSON Pointer.
// The root location renders as "/".
func Pointer(loc []any) string {
	if len(loc) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, k := range loc {
		b.WriteByte('/')
		b.WriteString(escapeToken(k))
	}
	return b.String()
}

func escapeToken(k any) string {
	switch v := k.(type) {
	case int:
		return strconv.Itoa(v)
	case string:
		return strings.ReplaceAll(strings.ReplaceAll(v, "~", "~0"), "/", "~1")
	default:
		return escapeToken(fmt.Sprint(v))
	}
}
