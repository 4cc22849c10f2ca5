package trace

import (
	"regexp"
	"strconv"
	"strings"
)

// resultWindow bounds how many lines a call's "name = value" result line
// may drift behind its request line before the call is left unresolved.
// Concurrent appliance output routinely interleaves within this range.
const resultWindow int = 300

// tracePattern matches both historical trace formats: with a handle
// ("libguestfs: trace: v2v: is_file ...") and without one
// ("libguestfs: trace: is_file ...").
var tracePattern *regexp.Regexp = regexp.MustCompile(`^libguestfs: trace: (?:([A-Za-z0-9_]+): )?([a-z][a-z0-9_]*)(.*)$`)

var durationSuffix *regexp.Regexp = regexp.MustCompile(`\s+\(([0-9]+\.[0-9]+)s\)\s*$`)

// copyCalls maps call names to copy origins; the int pairs are the arg
// positions of (source, destination), -1 meaning the call has none.
var copyCalls map[string]CopyOrigin = map[string]CopyOrigin{
	"upload":   OriginUpload,
	"write":    OriginWrite,
	"download": OriginDownload,
	"cp":       OriginCopy,
	"cp_a":     OriginCopy,
	"cp_r":     OriginCopy,
	"tar_in":   OriginTarIn,
}

// Parse walks a whole run's lines once and produces the flat, line-ordered
// call and copy event lists. It is total over arbitrary input: lines that
// are not trace lines are skipped, requests whose result never lands stay
// unresolved with an empty result.
func Parse(lines []string) (calls []ApiCallRecord, copies []FileCopyRecord) {
	calls, copies = []ApiCallRecord{}, []FileCopyRecord{}

	// pending holds open requests awaiting their result line, keyed by
	// handle+name. Results pop the oldest open request for their key.
	var pending map[string][]int = map[string][]int{}

	for i, line := range lines {
		var match []string = tracePattern.FindStringSubmatch(line)
		if match == nil {
			attachGuestCommand(lines, calls, pending, i, line)
			continue
		}

		var (
			handle string = normalizeHandle(match[1])
			name   string = match[2]
			rest   string = match[3]
			key    string = handle + "\x00" + name
		)

		if value, elapsed, isResult := parseResult(rest); isResult {
			var queue []int = pending[key]
			for len(queue) > 0 && i-calls[queue[0]].LineNumber > resultWindow {
				queue = queue[1:]
			}

			if len(queue) > 0 {
				var at int = queue[0]
				pending[key] = queue[1:]
				calls[at].Result = value
				calls[at].DurationSecs = elapsed
			}

			continue
		}

		var call ApiCallRecord = ApiCallRecord{
			Name:       name,
			Handle:     handle,
			Args:       parseArgs(rest),
			LineNumber: i,
		}

		calls = append(calls, call)
		pending[key] = append(pending[key], len(calls)-1)

		if origin, ok := copyCalls[name]; ok {
			if copy, valid := makeCopy(origin, handle, calls[len(calls)-1]); valid {
				copies = append(copies, copy)
			}
		}
	}

	return
}

func normalizeHandle(handle string) string {
	// "v2v" is the dispatcher's default handle name for the primary guest.
	if handle == "v2v" || handle == "g" {
		return ""
	}

	return handle
}

// parseResult recognizes the " = value" form, including an optional
// trailing elapsed-time annotation.
func parseResult(rest string) (value string, elapsed float64, ok bool) {
	if !strings.HasPrefix(rest, " = ") {
		return
	}

	value = strings.TrimPrefix(rest, " = ")
	if match := durationSuffix.FindStringSubmatch(value); match != nil {
		elapsed = parseFloat(match[1])
		value = strings.TrimSuffix(value, match[0])
	}

	value = unescapeOutput(strings.TrimSpace(unquoteValue(strings.TrimSpace(value))))
	ok = true
	return
}

// parseArgs tokenizes the request's argument list. Quoted arguments of
// either style keep embedded spaces; bare tokens pass through as-is.
func parseArgs(rest string) (args []string) {
	args = []string{}

	var (
		buf     strings.Builder
		inQuote bool
		quote   byte
		started bool
	)

	var emit = func() {
		if started {
			args = append(args, buf.String())
			buf.Reset()
			started = false
		}
	}

	for i := 0; i < len(rest); i++ {
		var c byte = rest[i]

		switch {
		case inQuote && c == '\\' && i+1 < len(rest):
			buf.WriteByte(rest[i+1])
			i++
		case inQuote && c == quote:
			inQuote = false
		case inQuote:
			buf.WriteByte(c)
		case c == '"' || c == '\'':
			inQuote, quote = true, c
			started = true
		case c == ' ' || c == '\t':
			emit()
		default:
			buf.WriteByte(c)
			started = true
		}
	}

	emit()
	return
}

// attachGuestCommand folds "commandrvf:" appliance lines into the most
// recent call still awaiting its result, which is the call being served.
func attachGuestCommand(lines []string, calls []ApiCallRecord, pending map[string][]int, index int, line string) {
	if !strings.HasPrefix(line, "commandrvf:") {
		return
	}

	var newest int = -1
	for _, queue := range pending {
		for _, at := range queue {
			if at > newest && index-calls[at].LineNumber <= resultWindow {
				newest = at
			}
		}
	}

	if newest < 0 {
		return
	}

	calls[newest].GuestCommands = append(calls[newest].GuestCommands, GuestCommand{
		Command:    strings.TrimSpace(strings.TrimPrefix(line, "commandrvf:")),
		LineNumber: index,
	})
}

// makeCopy derives a FileCopyRecord from a copy-family call's arguments.
func makeCopy(origin CopyOrigin, handle string, call ApiCallRecord) (copy FileCopyRecord, ok bool) {
	if len(call.Args) == 0 {
		return
	}

	copy = FileCopyRecord{Origin: origin, LineNumber: call.LineNumber}

	switch origin {
	case OriginWrite:
		copy.Destination = call.Args[0]
		if len(call.Args) > 1 {
			copy.Content = call.Args[1]
			copy.SizeBytes = int64(len(call.Args[1]))
		}
	case OriginDownload:
		copy.Source = call.Args[0]
		if len(call.Args) > 1 {
			copy.Destination = call.Args[1]
		}
	default:
		copy.Source = call.Args[0]
		if len(call.Args) > 1 {
			copy.Destination = call.Args[1]
		}
		copy.SourceHandle = handle
	}

	if copy.Destination == "" {
		return copy, false
	}

	return copy, true
}

func unquoteValue(token string) string {
	if len(token) >= 2 {
		if (token[0] == '"' && token[len(token)-1] == '"') || (token[0] == '\'' && token[len(token)-1] == '\'') {
			return token[1 : len(token)-1]
		}
	}

	return token
}

func unescapeOutput(s string) string {
	s = strings.ReplaceAll(s, `\r\n`, "\n")
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	return s
}

func parseFloat(token string) float64 {
	var f, err = strconv.ParseFloat(strings.TrimSpace(token), 64)
	if err != nil {
		return 0
	}

	return f
}
