package extract

import "regexp"

var (
	selinuxModePattern     *regexp.Regexp = regexp.MustCompile(`(?:^|\s)SELINUX=(\w+)`)
	selinuxTypePattern     *regexp.Regexp = regexp.MustCompile(`(?:^|\s)SELINUXTYPE=(\w+)`)
	setfilesCommandPattern *regexp.Regexp = regexp.MustCompile(`commandr?v?f?:\s+(?:.*\s)?setfiles\s+(?:-\S+\s+)*(\S*file_contexts\S*)`)
	relabeledPattern       *regexp.Regexp = regexp.MustCompile(`(?:setfiles:\s+relabeling|Relabeled)\s+(\S+)\s+from\s+(\S+)\s+to\s+(\S+)`)
)

// ExtractSELinuxRelabel scans the conversion stage plus a secondary
// whole-run array. setfiles output is flushed asynchronously and commonly
// lands after the next stage marker; relabel records recovered from the
// secondary scan are deduplicated against the stage-local ones on file
// path, keeping first-seen order.
// stageOffset is the stage's first absolute line number, so that stage-local
// hits report run-absolute line numbers like whole-run hits do.
func ExtractSELinuxRelabel(stageLines []string, stageOffset int, wholeRun []string) (out SELinuxRelabel) {
	out = SELinuxRelabel{Relabeled: []RelabeledFile{}, LineNumber: -1}

	scanSELinux(stageLines, stageOffset, &out)
	scanSELinux(wholeRun, 0, &out)

	out.Relabeled = dedupe(out.Relabeled, func(r RelabeledFile) string { return r.Path })
	return
}

func scanSELinux(lines []string, offset int, out *SELinuxRelabel) {
	var mark = func(index int) {
		if out.LineNumber < 0 {
			out.LineNumber = index
		}
	}

	for n, line := range lines {
		var i int = n + offset
		if match := selinuxModePattern.FindStringSubmatch(line); match != nil && out.Config.Mode == "" {
			out.Config.Mode = match[1]
			mark(i)
		}

		if match := selinuxTypePattern.FindStringSubmatch(line); match != nil && out.Config.Type == "" {
			out.Config.Type = match[1]
			mark(i)
		}

		if match := setfilesCommandPattern.FindStringSubmatch(line); match != nil && out.Config.FileContextsPath == "" {
			out.Config.FileContextsPath = unquote(match[1])
			mark(i)
		}

		if match := relabeledPattern.FindStringSubmatch(line); match != nil {
			out.Relabeled = append(out.Relabeled, RelabeledFile{
				Path:        match[1],
				FromContext: match[2],
				ToContext:   match[3],
				LineNumber:  i,
			})
			mark(i)
		}
	}
}
