package extract

import (
	"regexp"
	"strings"
)

// fsckResultWindow bounds how many lines the exit-status line may drift
// behind the check's command line before the record closes with the
// neutral exit code 0.
const fsckResultWindow int = 120

var (
	fsckCommandPattern *regexp.Regexp = regexp.MustCompile(`commandr?v?f?:\s+(?:.*\s)?(e2fsck|xfs_repair|fsck(?:\.\w+)?|ntfsfix|btrfs)\s+(?:\S+\s+)*?(/dev/\S+)`)
	fsckPhasePattern   *regexp.Regexp = regexp.MustCompile(`^\s*(Pass \d+[A-E]?:.*|Phase \d+ -.*)$`)
	fsckResultPattern  *regexp.Regexp = regexp.MustCompile(`(?:returned|exited with (?:status|code))\s+(-?\d+)`)
)

// ExtractFsChecks scans one stage's lines for filesystem integrity check
// runs. Phase lines between a check's command and its exit line belong to
// that check; the exit line may drift due to interleaving, so pairing is
// bounded by fsckResultWindow.
func ExtractFsChecks(lines []string) (out []FsCheckResult) {
	out = []FsCheckResult{}

	var (
		current      *FsCheckResult
		sinceCommand int
	)

	var flush = func() {
		if current != nil {
			out = append(out, *current)
		}

		current = nil
	}

	for i, line := range lines {
		if match := fsckCommandPattern.FindStringSubmatch(line); match != nil {
			flush()
			current = &FsCheckResult{
				Tool:       match[1],
				Device:     match[2],
				Phases:     []string{},
				LineNumber: i,
			}
			sinceCommand = 0
			continue
		}

		if current == nil {
			continue
		}

		sinceCommand++
		if sinceCommand > fsckResultWindow {
			flush()
			continue
		}

		if match := fsckPhasePattern.FindStringSubmatch(line); match != nil {
			current.Phases = append(current.Phases, strings.TrimSpace(match[1]))
			continue
		}

		if match := fsckResultPattern.FindStringSubmatch(line); match != nil {
			current.ExitCode = parseInt(match[1])
			flush()
		}
	}

	flush()
	return
}
