package extract

import (
	"regexp"
	"strings"
)

var (
	initramfsCommandPattern *regexp.Regexp = regexp.MustCompile(`^commandr?v?f?:\s+(?:.*\s)?(dracut|mkinitrd|update-initramfs)\s+(.*)$`)
	dracutModulePattern     *regexp.Regexp = regexp.MustCompile(`dracut: \*\*\* Including module: (\S+) \*\*\*`)
	dracutHookPattern       *regexp.Regexp = regexp.MustCompile(`dracut: \*\*\* Running hook: (\S+) \*\*\*`)
	dracutInstallPattern    *regexp.Regexp = regexp.MustCompile(`dracut(?:-install)?: Installing (?:binary )?['"]?(/[^'"\s]+)['"]?`)
	dracutFirmwarePattern   *regexp.Regexp = regexp.MustCompile(`dracut: Installing firmware ['"]?(/[^'"\s]+)['"]?`)
	dracutConfigPattern     *regexp.Regexp = regexp.MustCompile(`dracut: Including config(?: file)?: (\S+)`)
	dracutCopyDirPattern    *regexp.Regexp = regexp.MustCompile(`(?:dracut|mkinitrd): Copying directory ['"]?(/[^'"\s]+)['"]?`)
)

// ExtractInitramfsRebuilds scans one stage's lines for initramfs
// regeneration runs. Detail lines are attributed to the most recent tool
// invocation; detail seen before any invocation opens an implicit one, as
// older formats do not log the command line at all.
func ExtractInitramfsRebuilds(lines []string) (out []InitramfsRebuild) {
	out = []InitramfsRebuild{}

	var current *InitramfsRebuild
	var open = func(tool string, index int) {
		out = append(out, InitramfsRebuild{
			Tool:            tool,
			IncludedModules: []string{},
			Binaries:        []string{},
			Firmware:        []string{},
			Configs:         []string{},
			Hooks:           []string{},
			CopyDirs:        []string{},
			LineNumber:      index,
		})
		current = &out[len(out)-1]
	}

	for i, line := range lines {
		if match := initramfsCommandPattern.FindStringSubmatch(line); match != nil {
			open(match[1], i)
			current.OutputPath, current.KernelVersion = initramfsCommandArgs(match[2])
			continue
		}

		var isDetail bool = strings.Contains(line, "dracut") || strings.Contains(line, "mkinitrd")
		if !isDetail {
			continue
		}

		if current == nil {
			open("dracut", i)
		}

		switch {
		case dracutModulePattern.MatchString(line):
			current.IncludedModules = append(current.IncludedModules, dracutModulePattern.FindStringSubmatch(line)[1])
		case dracutHookPattern.MatchString(line):
			current.Hooks = append(current.Hooks, dracutHookPattern.FindStringSubmatch(line)[1])
		case dracutFirmwarePattern.MatchString(line):
			current.Firmware = append(current.Firmware, dracutFirmwarePattern.FindStringSubmatch(line)[1])
		case dracutConfigPattern.MatchString(line):
			current.Configs = append(current.Configs, dracutConfigPattern.FindStringSubmatch(line)[1])
		case dracutCopyDirPattern.MatchString(line):
			current.CopyDirs = append(current.CopyDirs, dracutCopyDirPattern.FindStringSubmatch(line)[1])
		case dracutInstallPattern.MatchString(line):
			current.Binaries = append(current.Binaries, dracutInstallPattern.FindStringSubmatch(line)[1])
		}
	}

	for i := range out {
		out[i].IncludedModules = dedupe(out[i].IncludedModules, func(s string) string { return s })
		out[i].Binaries = dedupe(out[i].Binaries, func(s string) string { return s })
		out[i].Firmware = dedupe(out[i].Firmware, func(s string) string { return s })
	}

	return
}

// initramfsCommandArgs pulls the image path and kernel version out of a
// rebuild command line, e.g. "dracut -v -f /boot/initramfs-5.14.img 5.14.0".
func initramfsCommandArgs(args string) (outputPath string, kernelVersion string) {
	for _, arg := range strings.Fields(args) {
		arg = unquote(arg)
		if strings.HasPrefix(arg, "-") {
			continue
		}

		if strings.HasPrefix(arg, "/") && outputPath == "" {
			outputPath = arg
			continue
		}

		if outputPath != "" && kernelVersion == "" && !strings.HasPrefix(arg, "/") {
			kernelVersion = arg
		}
	}

	return
}
