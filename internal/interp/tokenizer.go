// File: tokenizer.go
// Title: Input Line Tokenizer
// Description: Splits a raw terminal input line into argument tokens while
//              honoring single and double quoting. An unterminated quote is
//              not an error; the rest of the line is taken literally.
// Author: msto63 with Claude Sonnet 4.0
// Version: v0.1.0
// Created: 2026-02-10
// Modified: 2026-02-10

package interp

import "strings"

// Tokenize splits a raw line into tokens. A double or single quote opens a
// quote region closed only by the same quote character; an unquoted space
// flushes the accumulated token. Quote characters that do not match the
// currently open quote are kept literally, as is a backslash — there is no
// escape-character support.
func Tokenize(line string) []string {
	var tokens []string
	var current strings.Builder

	// 0 means not inside a quote region
	var quote rune

	for _, ch := range line {
		switch {
		case quote == 0 && (ch == '"' || ch == '\''):
			quote = ch
		case quote == ch:
			quote = 0
		case quote == 0 && ch == ' ':
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(ch)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// firstWord returns the first whitespace-delimited word of a command string
func firstWord(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// splitFirstWord splits a line into its first whitespace-delimited word and
// the remainder with leading whitespace stripped
func splitFirstWord(line string) (word, rest string) {
	line = strings.TrimLeft(line, " \t")
	idx := strings.IndexAny(line, " \t")
	if idx < 0 {
		return line, ""
	}
	return line[:idx], strings.TrimLeft(line[idx:], " \t")
}
