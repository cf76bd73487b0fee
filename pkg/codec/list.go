// Package codec decodes and encodes the compact inline formats used inside
// content CSV cells: pipe lists, effect maps and choice blocks.
package codec

import "strings"

const (
	listSep    = "|"
	subListSep = ";"
)

// SplitList splits a pipe separated cell ("a | b | c") into trimmed items.
// An empty cell yields an empty, non-nil slice.
func SplitList(raw string) []string {
	return split(raw, listSep)
}

// JoinList is the inverse of SplitList.
func JoinList(items []string) string {
	return strings.Join(items, listSep)
}

// SplitSubList splits a list nested inside a choice field, where | is already
// taken as the field separator.
func SplitSubList(raw string) []string {
	return split(raw, subListSep)
}

// JoinSubList is the inverse of SplitSubList.
func JoinSubList(items []string) string {
	return strings.Join(items, subListSep)
}

func split(raw, sep string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, sep)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
