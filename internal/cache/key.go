package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"
)

// StoryListKey derives the cache key of a story list response from its query parameters.
// Parameter order does not matter; repeated values keep their order.
//
// The hashed text is the sorted list of [name, values] pairs in the layout of Python's
// json.dumps defaults, so keys stay shared with deployments that compute them that way.
func StoryListKey(params map[string][]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteByte('[')
	for i, name := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('[')
		writeASCIIString(&sb, name)
		sb.WriteString(", [")
		for j, v := range params[name] {
			if j > 0 {
				sb.WriteString(", ")
			}
			writeASCIIString(&sb, v)
		}
		sb.WriteString("]]")
	}
	sb.WriteByte(']')

	sum := md5.Sum([]byte(sb.String()))
	return StoryListPrefix + hex.EncodeToString(sum[:])
}

// writeASCIIString writes s as a JSON string literal with every non-ASCII rune escaped as
// \uXXXX, astral runes as surrogate pairs. Invalid UTF-8 is written as U+FFFD.
func writeASCIIString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"':
			sb.WriteString(`\"`)
		case r == '\\':
			sb.WriteString(`\\`)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r == '\b':
			sb.WriteString(`\b`)
		case r == '\f':
			sb.WriteString(`\f`)
		case r < 0x20 || (r >= 0x7f && r <= 0xffff):
			fmt.Fprintf(sb, `\u%04x`, r)
		case r > 0xffff:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(sb, `\u%04x\u%04x`, hi, lo)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
}
