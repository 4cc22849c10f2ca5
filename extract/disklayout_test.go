package extract

import (
	"reflect"
	"testing"
)

func TestExtractDiskLayoutsParted(t *testing.T) {
	var layouts = ExtractDiskLayouts([]string{
		"commandrvf: parted -m -s -- /dev/sda unit b print",
		"BYT;",
		"/dev/sda:1000000000B:scsi:512:512:gpt:Model;",
		"1:1048576B:2097151B:1048576B:vfat:EFI:boot, esp;",
		"2:2097152B:999999999B:997902848B:xfs:root:;",
		"trailing line ends the block",
	})

	if len(layouts) != 1 {
		t.Fatalf("Expected 1 layout, got %d", len(layouts))
	}

	var layout = layouts[0]
	if layout.Device != "/dev/sda" || layout.TableType != "gpt" {
		t.Errorf("Unexpected device/table: %q %q", layout.Device, layout.TableType)
	}

	if layout.SizeBytes != 1000000000 {
		t.Errorf("Expected 1000000000 bytes, got %d", layout.SizeBytes)
	}

	if layout.Transport != "scsi" || layout.LogicalSectorSize != 512 || layout.Model != "Model" {
		t.Errorf("Unexpected device metadata: %+v", layout)
	}

	if layout.LineNumber != 1 {
		t.Errorf("Expected layout at line 1, got %d", layout.LineNumber)
	}

	if len(layout.Partitions) != 2 {
		t.Fatalf("Expected 2 partitions, got %d", len(layout.Partitions))
	}

	var first = layout.Partitions[0]
	if first.Number != 1 || first.FsType != "vfat" || first.Flags != "boot, esp" {
		t.Errorf("Unexpected first partition: %+v", first)
	}

	if first.StartBytes != 1048576 || first.EndBytes != 2097151 || first.SizeBytes != 1048576 {
		t.Errorf("Unexpected first partition geometry: %+v", first)
	}

	if layout.Partitions[1].Name != "root" {
		t.Errorf("Unexpected second partition name %q", layout.Partitions[1].Name)
	}
}

func TestExtractDiskLayoutsSfdisk(t *testing.T) {
	var layouts = ExtractDiskLayouts([]string{
		"label: gpt",
		"label-id: 0FD158AF-0001-4F44-BC44-13EE089B2B4B",
		"device: /dev/sdb",
		"unit: sectors",
		"",
		"/dev/sdb1 : start=2048, size=2048, type=C12A7328-F81F-11D2-BA4B-00A0C93EC93B, name=\"EFI\", bootable",
		"/dev/sdb2 : start=4096, size=8192, type=0FC63DAF-8483-4772-8E79-3D69D8477DE4",
		"end of dump",
	})

	if len(layouts) != 1 {
		t.Fatalf("Expected 1 layout, got %d", len(layouts))
	}

	var layout = layouts[0]
	if layout.Device != "/dev/sdb" || layout.TableType != "gpt" {
		t.Errorf("Unexpected device/table: %q %q", layout.Device, layout.TableType)
	}

	if len(layout.Partitions) != 2 {
		t.Fatalf("Expected 2 partitions, got %d", len(layout.Partitions))
	}

	var first = layout.Partitions[0]
	if first.StartBytes != 2048*512 || first.SizeBytes != 2048*512 {
		t.Errorf("Expected 512-byte sector scaling, got %+v", first)
	}

	if first.EndBytes != first.StartBytes+first.SizeBytes-1 {
		t.Errorf("Unexpected end: %+v", first)
	}

	if first.TypeLabel != "EFI System" || first.Name != "EFI" || first.Flags != "boot" {
		t.Errorf("Unexpected first partition: %+v", first)
	}

	if layout.Partitions[1].TypeLabel != "Linux filesystem" {
		t.Errorf("Unexpected second partition label %q", layout.Partitions[1].TypeLabel)
	}
}

func TestExtractDiskLayoutsPartialBlockKept(t *testing.T) {
	var layouts = ExtractDiskLayouts([]string{
		"BYT;",
		"/dev/sda:100M:scsi:512:512:gpt:Disk;",
		"1:1M:2M:1M:ext4::;",
	})

	if len(layouts) != 1 {
		t.Fatalf("Expected partial block to be kept, got %d layouts", len(layouts))
	}

	if len(layouts[0].Partitions) != 1 {
		t.Errorf("Expected 1 partition, got %d", len(layouts[0].Partitions))
	}
}

func TestExtractDiskLayoutsDedupe(t *testing.T) {
	var block = []string{
		"BYT;",
		"/dev/sda:100M:scsi:512:512:gpt:Disk;",
		"1:1M:2M:1M:ext4::;",
		"",
	}

	var lines []string
	lines = append(lines, block...)
	lines = append(lines, block...)

	var layouts = ExtractDiskLayouts(lines)
	if len(layouts) != 1 {
		t.Errorf("Expected repeated device to dedupe, got %d layouts", len(layouts))
	}
}

func TestExtractDiskLayoutsIdempotent(t *testing.T) {
	var lines = []string{
		"BYT;",
		"/dev/sda:100M:scsi:512:512:gpt:Disk;",
		"1:1M:2M:1M:ext4::;",
		"",
	}

	if !reflect.DeepEqual(ExtractDiskLayouts(lines), ExtractDiskLayouts(lines)) {
		t.Error("Extraction is not idempotent")
	}
}

func TestExtractDiskLayoutsNoEvidence(t *testing.T) {
	var layouts = ExtractDiskLayouts([]string{"nothing", "relevant", "here"})
	if layouts == nil || len(layouts) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", layouts)
	}
}
