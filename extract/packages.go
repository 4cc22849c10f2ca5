package extract

import (
	"regexp"
	"strings"
)

// packageOutputWindow bounds how far package-manager stdout may drift
// behind the command that produced it before the operation is closed as-is.
const packageOutputWindow int = 300

var (
	packageCommandPattern  *regexp.Regexp = regexp.MustCompile(`^commandr?v?f?:\s+(?:.*\s)?(dnf|yum|rpm|zypper|apt-get)\s+(.*)$`)
	packageTableRow        *regexp.Regexp = regexp.MustCompile(`^\s+(\S+)\s+(\S+)\s+(\S+)\s+\S+\s+([\d.]+\s*[KMGT]?i?B?)\s*$`)
	freedSpacePattern      *regexp.Regexp = regexp.MustCompile(`^Freed space:\s*(.+)$`)
	transactionTimePattern *regexp.Regexp = regexp.MustCompile(`(?i)transaction (?:completed|time)[^\d]*([\d.]+)\s*s`)
)

type packageState int

const (
	packageIdle packageState = iota
	packageInCommand
	packageInRemoveTable
)

type packageExtractor struct {
	state        packageState
	current      *PackageOperation
	sinceCommand int
	out          []PackageOperation
}

// ExtractPackageOperations scans one stage's lines for package-manager
// transactions (kernel and tool removals during conversion).
func ExtractPackageOperations(lines []string) []PackageOperation {
	var ex packageExtractor = packageExtractor{out: []PackageOperation{}}

	for i, line := range lines {
		ex.step(i, line)
	}

	ex.flush()
	return ex.out
}

func (ex *packageExtractor) step(index int, line string) {
	if match := packageCommandPattern.FindStringSubmatch(line); match != nil {
		ex.flush()
		ex.state = packageInCommand
		ex.current = &PackageOperation{
			Manager:    match[1],
			Command:    strings.TrimSpace(match[1] + " " + match[2]),
			Packages:   []RemovedPackage{},
			LineNumber: index,
		}
		ex.sinceCommand = 0

		// rpm -e names its victims on the command line itself.
		if match[1] == "rpm" {
			for _, arg := range strings.Fields(match[2]) {
				if strings.HasPrefix(arg, "-") {
					continue
				}

				ex.current.Packages = append(ex.current.Packages, RemovedPackage{Name: unquote(arg)})
			}
		}
		return
	}

	if ex.state == packageIdle {
		return
	}

	ex.sinceCommand++
	if ex.sinceCommand > packageOutputWindow {
		ex.flush()
		return
	}

	var trimmed string = strings.TrimSpace(line)
	switch {
	case trimmed == "Removing:":
		ex.state = packageInRemoveTable
	case trimmed == "Complete!":
		ex.flush()
	case freedSpacePattern.MatchString(trimmed):
		ex.current.FreedBytes = ParseSizeBytes(freedSpacePattern.FindStringSubmatch(trimmed)[1])
	case transactionTimePattern.MatchString(trimmed):
		ex.current.DurationSecs = parseFloat(transactionTimePattern.FindStringSubmatch(trimmed)[1])
	case ex.state == packageInRemoveTable:
		if match := packageTableRow.FindStringSubmatch(line); match != nil {
			ex.current.Packages = append(ex.current.Packages, RemovedPackage{
				Name:    match[1],
				Arch:    match[2],
				Version: match[3],
			})
		} else if trimmed == "" || !strings.HasPrefix(line, " ") {
			ex.state = packageInCommand
		}
	}
}

func (ex *packageExtractor) flush() {
	if ex.current != nil {
		ex.out = append(ex.out, *ex.current)
	}

	ex.state, ex.current = packageIdle, nil
}
