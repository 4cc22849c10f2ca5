package extract

import "strings"

// quotedArgs pulls every single- or double-quoted token out of a line, in
// order. Both quoting styles appear across historical log formats.
func quotedArgs(line string) (args []string) {
	var (
		inQuote bool
		quote   byte
		buf     strings.Builder
	)

	for i := 0; i < len(line); i++ {
		var c byte = line[i]

		if !inQuote {
			if c == '"' || c == '\'' {
				inQuote, quote = true, c
				buf.Reset()
			}

			continue
		}

		if c == quote {
			inQuote = false
			args = append(args, buf.String())
			continue
		}

		buf.WriteByte(c)
	}

	return
}

// unquote strips one level of matching single or double quotes.
func unquote(token string) string {
	if len(token) >= 2 {
		if (token[0] == '"' && token[len(token)-1] == '"') || (token[0] == '\'' && token[len(token)-1] == '\'') {
			return token[1 : len(token)-1]
		}
	}

	return token
}

// unescapeOutput expands the escaped newlines and tabs that captured
// subprocess stdout carries when flushed through the trace layer.
func unescapeOutput(s string) string {
	s = strings.ReplaceAll(s, `\r\n`, "\n")
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	return s
}

// lookahead scans up to window lines beyond start (exclusive) for the first
// line satisfying match, returning its index or -1. The bounded window is a
// tolerance for interleaved output from concurrent subprocesses.
func lookahead(lines []string, start, window int, match func(string) bool) int {
	var end int = start + 1 + window
	if end > len(lines) {
		end = len(lines)
	}

	for i := start + 1; i < end; i++ {
		if match(lines[i]) {
			return i
		}
	}

	return -1
}

// dedupe keeps first-seen order while dropping entries whose key repeats.
// Extractors apply it after raw extraction so the scan itself stays free of
// hidden state.
func dedupe[T any](items []T, key func(T) string) (out []T) {
	var seen map[string]bool = make(map[string]bool, len(items))
	out = make([]T, 0, len(items))

	for _, item := range items {
		var k string = key(item)
		if seen[k] {
			continue
		}

		seen[k] = true
		out = append(out, item)
	}

	return
}
