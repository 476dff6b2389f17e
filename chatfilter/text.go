package chatfilter

import "strings"

// Normalize lowercases s. Every stored phrase, sender name and channel token
// goes through this exactly once, at write time; read paths assume their
// inputs are already normalized.
func Normalize(s string) string { return strings.ToLower(s) }

// Contains reports whether needle occurs in haystack as a plain substring.
// No pattern or word-boundary semantics.
func Contains(haystack, needle string) bool { return strings.Contains(haystack, needle) }
