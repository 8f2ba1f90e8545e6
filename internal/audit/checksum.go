package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// ChecksumDDL computes a SHA-256 checksum of generated DDL, normalized so
// that formatting-only changes (whitespace, comments, case) produce the
// same value. The checksum identifies a schema version in the audit tables.
func ChecksumDDL(ddl string) string {
	normalized := normalizeDDL(ddl)
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

// normalizeDDL lowercases the statement text, strips SQL comments while
// preserving quoted identifiers and string literals, and collapses runs of
// whitespace to single spaces.
func normalizeDDL(ddl string) string {
	cleaned := stripComments(ddl)

	var b strings.Builder
	b.Grow(len(cleaned))

	lastWasSpace := false
	for _, r := range cleaned {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			b.WriteRune(unicode.ToLower(r))
			lastWasSpace = false
		}
	}

	return strings.TrimSpace(b.String())
}

type scanState int

const (
	scanNormal scanState = iota
	scanLineComment
	scanBlockComment
	scanSingleQuote
	scanDoubleQuote
)

// stripComments removes -- line comments and /* */ block comments,
// including nested blocks, without touching quoted regions. Generated DDL
// quotes every identifier, so double quotes matter here.
func stripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	state := scanNormal
	blockDepth := 0
	i := 0

	for i < len(s) {
		ch := s[i]
		var next byte
		if i+1 < len(s) {
			next = s[i+1]
		}

		switch state {
		case scanNormal:
			switch {
			case ch == '-' && next == '-':
				state = scanLineComment
				b.WriteByte(' ')
				i += 2
			case ch == '/' && next == '*':
				state = scanBlockComment
				blockDepth = 1
				b.WriteByte(' ')
				i += 2
			case ch == '\'':
				state = scanSingleQuote
				b.WriteByte(ch)
				i++
			case ch == '"':
				state = scanDoubleQuote
				b.WriteByte(ch)
				i++
			default:
				b.WriteByte(ch)
				i++
			}

		case scanLineComment:
			if ch == '\n' {
				b.WriteByte(ch)
				state = scanNormal
			}
			i++

		case scanBlockComment:
			if ch == '/' && next == '*' {
				blockDepth++
				i += 2
			} else if ch == '*' && next == '/' {
				blockDepth--
				i += 2
				if blockDepth == 0 {
					state = scanNormal
				}
			} else {
				i++
			}

		case scanSingleQuote:
			b.WriteByte(ch)
			if ch == '\'' && next == '\'' {
				b.WriteByte(next)
				i += 2
			} else if ch == '\'' {
				state = scanNormal
				i++
			} else {
				i++
			}

		case scanDoubleQuote:
			b.WriteByte(ch)
			if ch == '"' && next == '"' {
				b.WriteByte(next)
				i += 2
			} else if ch == '"' {
				state = scanNormal
				i++
			} else {
				i++
			}
		}
	}

	return b.String()
}
