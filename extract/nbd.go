package extract

import (
	"regexp"
	"strings"
)

// nbdSocketWindow bounds how far the "bound to unix socket" line may drift
// behind the nbdkit command line that opened it.
const nbdSocketWindow int = 40

var (
	nbdkitCommandPattern *regexp.Regexp = regexp.MustCompile(`\bnbdkit\b`)
	nbdSocketPattern     *regexp.Regexp = regexp.MustCompile(`(?:bound to|listening on)(?: unix)? socket\s+(\S+)`)
)

// nbdPlugins are the access plugins the conversion pipeline is known to
// drive. A command line is only treated as a connection when one appears.
var nbdPlugins []string = []string{"vddk", "curl", "ssh", "nbd", "file", "python"}

// ExtractNBDConnections scans one stage's lines for nbdkit invocations,
// one record per endpoint. The socket line is emitted asynchronously by
// the nbdkit process itself and is paired through a bounded lookahead.
func ExtractNBDConnections(lines []string) (out []NBDConnection) {
	out = []NBDConnection{}

	for i, line := range lines {
		if !nbdkitCommandPattern.MatchString(line) {
			continue
		}

		var conn *NBDConnection = parseNBDCommand(line)
		if conn == nil {
			continue
		}

		conn.LineNumber = i
		if conn.SocketPath == "" {
			if at := lookahead(lines, i, nbdSocketWindow, nbdSocketPattern.MatchString); at >= 0 {
				conn.SocketPath = nbdSocketPattern.FindStringSubmatch(lines[at])[1]
			}
		}

		out = append(out, *conn)
	}

	return dedupe(out, func(c NBDConnection) string {
		return c.Plugin + "\x00" + c.PluginArgs["file"] + "\x00" + c.SocketPath
	})
}

// parseNBDCommand splits an nbdkit command line on whitespace outside
// quotes and interprets plugin name, filters, socket and key=value args.
func parseNBDCommand(line string) (conn *NBDConnection) {
	var tokens []string = tokenizeCommand(line)

	var pluginAt int = -1
	for i, token := range tokens {
		if strings.HasPrefix(token, "-") || strings.Contains(token, "=") {
			continue
		}

		for _, plugin := range nbdPlugins {
			if token == plugin {
				pluginAt = i
				break
			}
		}

		if pluginAt >= 0 {
			break
		}
	}

	if pluginAt < 0 {
		return nil
	}

	conn = &NBDConnection{
		Plugin:     tokens[pluginAt],
		Filters:    []string{},
		PluginArgs: map[string]string{},
	}

	for i, token := range tokens {
		switch {
		case strings.HasPrefix(token, "--filter="):
			conn.Filters = append(conn.Filters, strings.TrimPrefix(token, "--filter="))
		case token == "--filter" && i+1 < len(tokens):
			conn.Filters = append(conn.Filters, tokens[i+1])
		case (token == "-U" || token == "--unix") && i+1 < len(tokens):
			conn.SocketPath = tokens[i+1]
		case strings.HasPrefix(token, "--unix="):
			conn.SocketPath = strings.TrimPrefix(token, "--unix=")
		case i > pluginAt && strings.Contains(token, "="):
			var key, value, _ = strings.Cut(token, "=")
			switch key {
			case "server":
				conn.Server = value
			case "thumbprint":
				conn.Thumbprint = value
			case "libdir":
				conn.VddkLibdir = value
			case "export", "exportname":
				conn.ExportName = value
			default:
				conn.PluginArgs[key] = value
			}
		}
	}

	return
}

// tokenizeCommand splits on whitespace while honoring single and double
// quotes, stripping the quotes from the resulting tokens.
func tokenizeCommand(line string) (tokens []string) {
	var (
		buf     strings.Builder
		inQuote bool
		quote   byte
	)

	var emit = func() {
		if buf.Len() > 0 {
			tokens = append(tokens, buf.String())
			buf.Reset()
		}
	}

	for i := 0; i < len(line); i++ {
		var c byte = line[i]

		switch {
		case inQuote && c == quote:
			inQuote = false
		case inQuote:
			buf.WriteByte(c)
		case c == '"' || c == '\'':
			inQuote, quote = true, c
		case c == ' ' || c == '\t':
			emit()
		default:
			buf.WriteByte(c)
		}
	}

	emit()
	return
}
