package run

import (
	"strings"
	"testing"

	"github.com/opnlaas/v2vlens/stages"
)

var demoLog []string = []string{
	"virt-v2v: virt-v2v 2.5.6 (x86_64)",
	"[   0.0] Setting up the source",
	"nbdkit: debug: starting worker thread",
	"[   1.5] Inspecting the source",
	"commandrvf: parted -m -s -- /dev/sda unit b print",
	"BYT;",
	"/dev/sda:1000000000B:scsi:512:512:gpt:Model;",
	"1:1048576B:2097151B:1048576B:vfat:EFI:boot, esp;",
	"",
	"[   9.2] Converting Red Hat Enterprise Linux 8.5 to run on KVM",
	"* kernel-core 5.14.0-1.x86_64 (x86_64)",
	"\t/boot/vmlinuz-5.14.0-1.x86_64",
	"[  60.0] Finishing off",
}

func TestLoadSplitsAndClassifies(t *testing.T) {
	var r = Load("demo", strings.Join(demoLog, "\n")+"\n")

	if r.Name != "demo" || r.TotalLines() != len(demoLog) {
		t.Fatalf("Unexpected run shape: %q, %d lines", r.Name, r.TotalLines())
	}

	if len(r.Lines) != len(r.Texts()) {
		t.Errorf("Classified and raw arrays disagree: %d vs %d", len(r.Lines), len(r.Texts()))
	}

	var recs = r.Stages()
	if len(recs) != 5 {
		t.Fatalf("Expected 5 stages, got %d", len(recs))
	}

	if recs[0].Name != "" || recs[0].StartLine != 0 || recs[0].EndLine != 0 {
		t.Errorf("Unexpected preamble stage: %+v", recs[0])
	}

	if stages.Find(recs, stages.AnchorConverting) == nil {
		t.Error("Conversion stage not found")
	}
}

func TestStageScopedLineNumbersAreAbsolute(t *testing.T) {
	var r = FromLines("demo", demoLog)

	var disks = r.DiskLayouts()
	if len(disks) != 1 {
		t.Fatalf("Expected 1 disk layout, got %d", len(disks))
	}

	// "BYT;" sits at line 5 of the whole run, line 2 of its stage
	if disks[0].LineNumber != 5 {
		t.Errorf("Expected disk layout at line 5, got %d", disks[0].LineNumber)
	}

	var kernels = r.Kernels()
	if len(kernels) != 1 {
		t.Fatalf("Expected 1 kernel, got %d", len(kernels))
	}

	if kernels[0].LineNumber != 10 {
		t.Errorf("Expected kernel at line 10, got %d", kernels[0].LineNumber)
	}
}

func TestDerivedRecordsAreMemoized(t *testing.T) {
	var r = FromLines("demo", demoLog)

	var s1, s2 = r.Stages(), r.Stages()
	if &s1[0] != &s2[0] {
		t.Error("Stage records recomputed on second call")
	}

	var d1, d2 = r.DiskLayouts(), r.DiskLayouts()
	if &d1[0] != &d2[0] {
		t.Error("Disk layouts recomputed on second call")
	}

	if r.Forest() != r.Forest() {
		t.Error("Forest recomputed on second call")
	}
}

func TestExtractionWithoutStageMarkers(t *testing.T) {
	var r = FromLines("bare", []string{
		"commandrvf: parted -m -s -- /dev/sda unit b print",
		"BYT;",
		"/dev/sda:1000000000B:scsi:512:512:gpt:Model;",
		"1:1048576B:2097151B:1048576B:vfat:EFI:boot, esp;",
		"done",
	})

	var recs = r.Stages()
	if len(recs) != 1 || recs[0].StartLine != 0 || recs[0].EndLine != 4 {
		t.Fatalf("Expected one whole-run stage, got %+v", recs)
	}

	// Whole-run fallback keeps line numbers absolute with no offset
	var disks = r.DiskLayouts()
	if len(disks) != 1 || disks[0].LineNumber != 1 {
		t.Fatalf("Expected layout at line 1, got %+v", disks)
	}
}

func TestTraceRecordsFlowIntoForest(t *testing.T) {
	var r = FromLines("traced", []string{
		`libguestfs: trace: v2v: mount "/dev/sda2" "/"`,
		`libguestfs: trace: v2v: mount = 0`,
		`libguestfs: trace: v2v: is_file "/etc/fstab"`,
		`libguestfs: trace: v2v: is_file = 1`,
		`libguestfs: trace: v2v: write "/etc/v2v.conf" "x"`,
		`libguestfs: trace: v2v: write = 0`,
		`libguestfs: trace: v2v: umount_all`,
		`libguestfs: trace: v2v: umount_all = 0`,
	})

	if len(r.Calls()) != 4 || len(r.Copies()) != 1 {
		t.Fatalf("Unexpected trace records: %d calls, %d copies", len(r.Calls()), len(r.Copies()))
	}

	var forest = r.Forest()
	if len(forest.Groups) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(forest.Groups))
	}

	if forest.Groups[0].Device != "/dev/sda2" || forest.Groups[0].Root.Totals.Copies != 1 {
		t.Errorf("Unexpected group: %+v", forest.Groups[0])
	}
}
