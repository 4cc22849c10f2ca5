package extract

import (
	"regexp"
	"strings"
)

var (
	grubMkconfigPattern  *regexp.Regexp = regexp.MustCompile(`commandr?v?f?:\s+(?:.*\s)?(grub2?-mkconfig|update-grub|zipl|bootctl)(?:\s+-o\s+(\S+))?`)
	grubConfigPattern    *regexp.Regexp = regexp.MustCompile(`(grub2?|systemd-boot):\s+config(?:uration)? file\s+(\S+)`)
	grubbyDefaultPattern *regexp.Regexp = regexp.MustCompile(`grubby\s+--set-default[= ]['"]?([^'"\s]+)['"]?`)
	grubbyArgsPattern    *regexp.Regexp = regexp.MustCompile(`grubby\s+.*--args[= ](?:"([^"]*)"|'([^']*)'|(\S+))`)
	fstabReplacePattern  *regexp.Regexp = regexp.MustCompile(`fstab:\s+replacing\s+["']([^"']+)["']\s+with\s+["']([^"']+)["'](?:\s+\(mountpoint\s+(\S+?)\))?`)
	fstabAddPattern      *regexp.Regexp = regexp.MustCompile(`fstab:\s+adding\s+["']([^"']+)["']\s+at\s+["']([^"']+)["']`)
)

// ExtractBootloaderConfig scans one stage's lines for bootloader
// reconfiguration and fstab rewrites, aggregated into a single record.
// Fields stay at their zero values when the log carries no evidence.
func ExtractBootloaderConfig(lines []string) (out BootloaderConfig) {
	out = BootloaderConfig{KernelArgs: []string{}, FstabEdits: []FstabEdit{}, LineNumber: -1}

	var mark = func(index int) {
		if out.LineNumber < 0 {
			out.LineNumber = index
		}
	}

	for i, line := range lines {
		switch {
		case grubMkconfigPattern.MatchString(line):
			var match []string = grubMkconfigPattern.FindStringSubmatch(line)
			out.Tool = bootloaderToolName(match[1])
			if match[2] != "" {
				out.ConfigPath = unquote(match[2])
			}
			mark(i)

		case grubConfigPattern.MatchString(line):
			var match []string = grubConfigPattern.FindStringSubmatch(line)
			if out.Tool == "" {
				out.Tool = match[1]
			}
			out.ConfigPath = unquote(match[2])
			mark(i)

		case grubbyDefaultPattern.MatchString(line):
			out.DefaultKernel = grubbyDefaultPattern.FindStringSubmatch(line)[1]
			mark(i)

		case grubbyArgsPattern.MatchString(line):
			var match []string = grubbyArgsPattern.FindStringSubmatch(line)
			var args string = match[1] + match[2] + match[3]
			out.KernelArgs = append(out.KernelArgs, strings.Fields(args)...)
			mark(i)

		case fstabReplacePattern.MatchString(line):
			var match []string = fstabReplacePattern.FindStringSubmatch(line)
			out.FstabEdits = append(out.FstabEdits, FstabEdit{
				Spec:       match[2],
				Replaces:   match[1],
				Mountpoint: match[3],
				LineNumber: i,
			})
			mark(i)

		case fstabAddPattern.MatchString(line):
			var match []string = fstabAddPattern.FindStringSubmatch(line)
			out.FstabEdits = append(out.FstabEdits, FstabEdit{
				Spec:       match[1],
				Mountpoint: match[2],
				LineNumber: i,
			})
			mark(i)
		}
	}

	out.KernelArgs = dedupe(out.KernelArgs, func(s string) string { return s })
	return
}

func bootloaderToolName(command string) string {
	switch {
	case strings.HasPrefix(command, "grub2"):
		return "grub2"
	case command == "update-grub":
		return "grub"
	case command == "zipl":
		return "zipl"
	case command == "bootctl":
		return "systemd-boot"
	}

	return command
}
