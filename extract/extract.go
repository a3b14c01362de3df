// Package extract recovers structured records from free-form model output.
//
// Completion backends are asked for JSON but frequently wrap it in prose,
// code fences or trailing commentary. Extraction applies a strict fallback
// chain: trust clean output first, salvage an embedded balanced JSON
// substring second, and degrade to a caller-supplied skeleton last. It
// never returns an error past its own boundary.
package extract

import (
	"encoding/json"
	"strings"
)

// Tier reports which fallback level produced a result.
type Tier int

const (
	// TierFull - the entire text parsed as the expected structure
	TierFull Tier = iota
	// TierScan - a balanced JSON substring inside the text parsed
	TierScan
	// TierSkeleton - nothing parsed; the caller's default was returned
	TierSkeleton
)

// String returns the string representation of a tier
func (t Tier) String() string {
	switch t {
	case TierFull:
		return "full"
	case TierScan:
		return "scan"
	case TierSkeleton:
		return "skeleton"
	default:
		return "unknown"
	}
}

// Object extracts a single JSON object of type T from raw text.
// skeleton is returned when neither a full parse nor a scan succeeds.
func Object[T any](raw string, skeleton T) (T, Tier) {
	trimmed := strings.TrimSpace(raw)

	var full T
	if err := json.Unmarshal([]byte(trimmed), &full); err == nil {
		return full, TierFull
	}

	for _, candidate := range balancedCandidates(trimmed, '{', '}') {
		var scanned T
		if err := json.Unmarshal([]byte(candidate), &scanned); err == nil {
			return scanned, TierScan
		}
	}

	return skeleton, TierSkeleton
}

// Array extracts a JSON array of T from raw text, with the same fallback
// chain as Object but scanning for balanced [...] substrings.
func Array[T any](raw string, skeleton []T) ([]T, Tier) {
	trimmed := strings.TrimSpace(raw)

	var full []T
	if err := json.Unmarshal([]byte(trimmed), &full); err == nil && full != nil {
		return full, TierFull
	}

	for _, candidate := range balancedCandidates(trimmed, '[', ']') {
		var scanned []T
		if err := json.Unmarshal([]byte(candidate), &scanned); err == nil && scanned != nil {
			return scanned, TierScan
		}
	}

	return skeleton, TierSkeleton
}

// balancedCandidates scans s for top-level balanced open...close substrings,
// in order of appearance. It tracks string literals and escape sequences so
// delimiters inside quoted text do not confuse the depth count.
//
// Iterating bytes is safe for ASCII delimiters because UTF-8 guarantees
// ASCII bytes never appear inside a multi-byte sequence.
func balancedCandidates(s string, open, close byte) []string {
	var candidates []string
	var depth int
	start := -1
	var inString bool
	var escape bool

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}

		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}

		if b == '"' {
			inString = true
			continue
		}

		if b == open {
			if depth == 0 {
				start = i
			}
			depth++
		} else if b == close {
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					candidates = append(candidates, s[start:i+1])
					start = -1
				}
			}
		}
	}

	return candidates
}
