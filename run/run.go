package run

import (
	"sync"

	"github.com/opnlaas/v2vlens/extract"
	"github.com/opnlaas/v2vlens/guesttree"
	"github.com/opnlaas/v2vlens/logline"
	"github.com/opnlaas/v2vlens/stages"
	"github.com/opnlaas/v2vlens/trace"
)

// Run is one loaded conversion log plus every derived record, computed
// lazily and exactly once. The line array is immutable after Load, which
// is what makes the memoization sound: identical input identity, identical
// output, recomputed only by loading a fresh Run.
type Run struct {
	Name  string
	Lines []logline.LogLine

	texts []string

	stagesOnce sync.Once
	stageRecs  []stages.StageRecord

	disksOnce sync.Once
	disks     []extract.DiskLayout

	kernelsOnce sync.Once
	kernels     []extract.KernelInfo

	packagesOnce sync.Once
	packages     []extract.PackageOperation

	initramfsOnce sync.Once
	initramfs     []extract.InitramfsRebuild

	bootloaderOnce sync.Once
	bootloader     extract.BootloaderConfig

	fschecksOnce sync.Once
	fschecks     []extract.FsCheckResult

	selinuxOnce sync.Once
	selinux     extract.SELinuxRelabel

	sourceOnce sync.Once
	source     extract.SourceInfo

	nbdOnce sync.Once
	nbd     []extract.NBDConnection

	firmwareOnce sync.Once
	firmware     extract.FirmwareDetection

	traceOnce sync.Once
	calls     []trace.ApiCallRecord
	copies    []trace.FileCopyRecord

	forestOnce sync.Once
	forest     *guesttree.Forest
}

// Load splits one raw UTF-8 log blob into classified lines.
func Load(name string, blob string) *Run {
	return FromLines(name, logline.SplitBlob(blob))
}

// FromLines builds a Run over an already split line array. Line numbers
// are 0-based slice positions, per the loader contract.
func FromLines(name string, raw []string) *Run {
	return &Run{
		Name:  name,
		Lines: logline.ClassifyAll(raw),
		texts: raw,
	}
}

func (r *Run) TotalLines() int {
	return len(r.texts)
}

// Texts returns the raw line array. Callers must not mutate it.
func (r *Run) Texts() []string {
	return r.texts
}

func (r *Run) Stages() []stages.StageRecord {
	r.stagesOnce.Do(func() {
		r.stageRecs = stages.Segment(r.Lines)
	})

	return r.stageRecs
}

// stageScope returns the lines and absolute offset of the first stage
// matching anchor, falling back to the whole run so extraction still works
// on logs whose stage markers were lost.
func (r *Run) stageScope(anchor string) (lines []string, offset int) {
	if stage := stages.Find(r.Stages(), anchor); stage != nil {
		return stage.Texts(), stage.StartLine
	}

	return r.texts, 0
}

func (r *Run) DiskLayouts() []extract.DiskLayout {
	r.disksOnce.Do(func() {
		var lines, offset = r.stageScope(stages.AnchorInspecting)
		r.disks = extract.ExtractDiskLayouts(lines)
		for i := range r.disks {
			r.disks[i].LineNumber += offset
		}
	})

	return r.disks
}

func (r *Run) Kernels() []extract.KernelInfo {
	r.kernelsOnce.Do(func() {
		var lines, offset = r.stageScope(stages.AnchorConverting)
		r.kernels = extract.ExtractKernels(lines, offset, r.texts)
	})

	return r.kernels
}

func (r *Run) PackageOperations() []extract.PackageOperation {
	r.packagesOnce.Do(func() {
		var lines, offset = r.stageScope(stages.AnchorConverting)
		r.packages = extract.ExtractPackageOperations(lines)
		for i := range r.packages {
			r.packages[i].LineNumber += offset
		}
	})

	return r.packages
}

func (r *Run) InitramfsRebuilds() []extract.InitramfsRebuild {
	r.initramfsOnce.Do(func() {
		var lines, offset = r.stageScope(stages.AnchorConverting)
		r.initramfs = extract.ExtractInitramfsRebuilds(lines)
		for i := range r.initramfs {
			r.initramfs[i].LineNumber += offset
		}
	})

	return r.initramfs
}

func (r *Run) Bootloader() extract.BootloaderConfig {
	r.bootloaderOnce.Do(func() {
		var lines, offset = r.stageScope(stages.AnchorConverting)
		r.bootloader = extract.ExtractBootloaderConfig(lines)
		if r.bootloader.LineNumber >= 0 {
			r.bootloader.LineNumber += offset
		}
		for i := range r.bootloader.FstabEdits {
			r.bootloader.FstabEdits[i].LineNumber += offset
		}
	})

	return r.bootloader
}

func (r *Run) FsChecks() []extract.FsCheckResult {
	r.fschecksOnce.Do(func() {
		var lines, offset = r.stageScope(stages.AnchorConverting)
		r.fschecks = extract.ExtractFsChecks(lines)
		for i := range r.fschecks {
			r.fschecks[i].LineNumber += offset
		}
	})

	return r.fschecks
}

func (r *Run) SELinux() extract.SELinuxRelabel {
	r.selinuxOnce.Do(func() {
		var lines, offset = r.stageScope(stages.AnchorConverting)
		r.selinux = extract.ExtractSELinuxRelabel(lines, offset, r.texts)
	})

	return r.selinux
}

func (r *Run) SourceInfo() extract.SourceInfo {
	r.sourceOnce.Do(func() {
		var lines, offset = r.stageScope(stages.AnchorOpening)
		r.source = extract.ExtractSourceInfo(lines)
		if r.source.LineNumber >= 0 {
			r.source.LineNumber += offset
		}
	})

	return r.source
}

func (r *Run) NBDConnections() []extract.NBDConnection {
	r.nbdOnce.Do(func() {
		var lines, offset = r.stageScope(stages.AnchorSettingUp)
		r.nbd = extract.ExtractNBDConnections(lines)
		for i := range r.nbd {
			r.nbd[i].LineNumber += offset
		}
	})

	return r.nbd
}

func (r *Run) Firmware() extract.FirmwareDetection {
	r.firmwareOnce.Do(func() {
		var lines, offset = r.stageScope(stages.AnchorFirmwareCheck)
		r.firmware = extract.ExtractFirmwareDetection(lines)
		if r.firmware.LineNumber >= 0 {
			r.firmware.LineNumber += offset
		}
	})

	return r.firmware
}

// Calls returns the run's API-trace call records; line numbers are
// absolute because the trace parser always scans the whole run.
func (r *Run) Calls() []trace.ApiCallRecord {
	r.traceOnce.Do(func() {
		r.calls, r.copies = trace.Parse(r.texts)
	})

	return r.calls
}

func (r *Run) Copies() []trace.FileCopyRecord {
	r.Calls()
	return r.copies
}

func (r *Run) Forest() *guesttree.Forest {
	r.forestOnce.Do(func() {
		r.forest = guesttree.Build(r.Calls(), r.Copies())
	})

	return r.forest
}
