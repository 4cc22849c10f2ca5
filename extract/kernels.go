package extract

import (
	"regexp"
	"strings"
)

// kernelBulletPattern matches the head line of one kernel block, e.g.
// "* kernel-core 5.14.0-1.x86_64 (x86_64)".
var kernelBulletPattern *regexp.Regexp = regexp.MustCompile(`^\s*\*\s+(\S+)\s+(\S+)\s+\((\S+)\)\s*$`)

var kernelModulesPattern *regexp.Regexp = regexp.MustCompile(`^(\d+)\s+modules\s+found$`)

type kernelState int

const (
	kernelIdle kernelState = iota
	kernelInBlock
)

// kernelExtractor walks kernel enumeration blocks. The block body has no
// terminator of its own; it ends at the next bullet or end of input, and
// unrecognized lines inside it are skipped so interleaved subprocess
// output cannot truncate a block.
type kernelExtractor struct {
	state   kernelState
	current *KernelInfo
	out     []KernelInfo
}

// ExtractKernels scans the conversion stage's lines plus a secondary
// whole-run array. Package-manager stdout is flushed asynchronously, so
// kernel blocks can land after the next stage marker; the secondary scan
// recovers those, deduplicated on name+version keeping first-seen order.
// stageOffset is the stage's first absolute line number.
func ExtractKernels(stageLines []string, stageOffset int, wholeRun []string) []KernelInfo {
	var raw []KernelInfo = scanKernels(stageLines, stageOffset)
	raw = append(raw, scanKernels(wholeRun, 0)...)

	return dedupe(raw, func(k KernelInfo) string { return k.Name + "\x00" + k.Version })
}

func scanKernels(lines []string, offset int) []KernelInfo {
	var ex kernelExtractor = kernelExtractor{out: []KernelInfo{}}

	for i, line := range lines {
		ex.step(i+offset, line)
	}

	ex.flush()
	return ex.out
}

func (ex *kernelExtractor) step(index int, line string) {
	if match := kernelBulletPattern.FindStringSubmatch(line); match != nil {
		ex.flush()
		ex.state = kernelInBlock
		ex.current = &KernelInfo{
			Name:       match[1],
			Version:    match[2],
			Arch:       match[3],
			Virtio:     map[string]bool{},
			LineNumber: index,
		}
		return
	}

	if ex.state != kernelInBlock {
		return
	}

	var detail string = strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(detail, "/boot/vmlinuz"):
		ex.current.VmlinuzPath = detail
	case strings.HasPrefix(detail, "/lib/modules/"), strings.HasPrefix(detail, "/usr/lib/modules/"):
		ex.current.ModulesPath = detail
	case strings.HasPrefix(detail, "initrd:"):
		ex.current.InitrdPath = strings.TrimSpace(strings.TrimPrefix(detail, "initrd:"))
	case strings.HasPrefix(detail, "virtio:"):
		for _, pair := range strings.Fields(strings.TrimPrefix(detail, "virtio:")) {
			if name, value, found := strings.Cut(pair, "="); found {
				ex.current.Virtio[name] = value == "true"
			}
		}
	case detail == "best kernel":
		ex.current.IsBest = true
	case detail == "default kernel":
		ex.current.IsDefault = true
	case kernelModulesPattern.MatchString(detail):
		ex.current.ModulesCount = parseInt(kernelModulesPattern.FindStringSubmatch(detail)[1])
	}
}

func (ex *kernelExtractor) flush() {
	if ex.current != nil {
		ex.out = append(ex.out, *ex.current)
	}

	ex.state, ex.current = kernelIdle, nil
}
