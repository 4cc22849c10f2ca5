package stages

import (
	"testing"

	"github.com/opnlaas/v2vlens/logline"
)

func segment(raw []string) []StageRecord {
	return Segment(logline.ClassifyAll(raw))
}

func TestSegmentBasic(t *testing.T) {
	var records = segment([]string{
		"virt-v2v: virt-v2v 2.0.7 (x86_64)",
		"[   0.0] Setting up the source: -i disk guest.img",
		"nbdkit: debug: starting",
		"[   5.2] Opening the source",
		"libguestfs: trace: v2v: launch",
		"libguestfs: trace: v2v: launch = 0",
		"[  63.1] Converting Red Hat Enterprise Linux 8.5 to run on KVM",
		"commandrvf: rpm -qa",
	})

	if len(records) != 4 {
		t.Fatalf("Expected 4 stages, got %d", len(records))
	}

	if records[0].Name != "" || records[0].StartLine != 0 || records[0].EndLine != 0 {
		t.Errorf("Unexpected preamble stage: %+v", records[0])
	}

	if records[1].Name != "Setting up the source: -i disk guest.img" {
		t.Errorf("Unexpected stage 1 name: %q", records[1].Name)
	}

	if records[1].StartLine != 1 || records[1].EndLine != 2 {
		t.Errorf("Unexpected stage 1 bounds: [%d, %d]", records[1].StartLine, records[1].EndLine)
	}

	if records[2].ElapsedSeconds != 5.2 {
		t.Errorf("Expected elapsed 5.2, got %v", records[2].ElapsedSeconds)
	}

	if records[3].StartLine != 6 || records[3].EndLine != 7 {
		t.Errorf("Unexpected final stage bounds: [%d, %d]", records[3].StartLine, records[3].EndLine)
	}
}

func TestSegmentCoversEveryLine(t *testing.T) {
	var raw = []string{
		"preamble",
		"[   1.0] Setting up the source",
		"line",
		"[   2.0] Opening the source",
		"line",
		"line",
		"[   3.0] Converting guest",
		"line",
	}

	var (
		records = segment(raw)
		next    int
	)

	for _, record := range records {
		if record.StartLine != next {
			t.Fatalf("Stage %q starts at %d, expected %d", record.Name, record.StartLine, next)
		}

		if record.EndLine < record.StartLine {
			t.Fatalf("Stage %q has inverted bounds [%d, %d]", record.Name, record.StartLine, record.EndLine)
		}

		if len(record.Lines) != record.EndLine-record.StartLine+1 {
			t.Fatalf("Stage %q holds %d lines for bounds [%d, %d]", record.Name, len(record.Lines), record.StartLine, record.EndLine)
		}

		next = record.EndLine + 1
	}

	if next != len(raw) {
		t.Errorf("Stages cover up to line %d, input has %d lines", next, len(raw))
	}
}

func TestSegmentNoMarkers(t *testing.T) {
	var records = segment([]string{"a", "b", "c"})
	if len(records) != 1 {
		t.Fatalf("Expected 1 stage, got %d", len(records))
	}

	if records[0].Name != "" || records[0].StartLine != 0 || records[0].EndLine != 2 {
		t.Errorf("Unexpected stage: %+v", records[0])
	}
}

func TestSegmentMarkerOnFirstLine(t *testing.T) {
	var records = segment([]string{
		"[   0.0] Setting up the source",
		"line",
	})

	if len(records) != 1 {
		t.Fatalf("Expected no empty preamble, got %d stages", len(records))
	}

	if records[0].Name != "Setting up the source" {
		t.Errorf("Unexpected name %q", records[0].Name)
	}
}

func TestSegmentEmptyInput(t *testing.T) {
	if records := Segment(nil); len(records) != 0 {
		t.Errorf("Expected no stages for empty input, got %d", len(records))
	}
}

func TestFind(t *testing.T) {
	var records = segment([]string{
		"[   0.0] Setting up the source: -i disk",
		"[   9.9] Converting Fedora 35 to run on KVM",
	})

	var found = Find(records, AnchorConverting)
	if found == nil {
		t.Fatal("Expected to find the Converting stage")
	}

	if found.StartLine != 1 {
		t.Errorf("Expected StartLine 1, got %d", found.StartLine)
	}

	if Find(records, AnchorCopying) != nil {
		t.Error("Expected nil for a stage that never ran")
	}
}
