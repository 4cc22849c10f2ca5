package extract

import "testing"

func TestExtractFsChecksE2fsck(t *testing.T) {
	var checks = ExtractFsChecks([]string{
		"commandrvf: e2fsck -fy /dev/sda2",
		"Pass 1: Checking inodes, blocks, and sizes",
		"Pass 2: Checking directory structure",
		"Pass 5: Checking group summary information",
		"command e2fsck returned 1",
	})

	if len(checks) != 1 {
		t.Fatalf("Expected 1 check, got %d", len(checks))
	}

	var check = checks[0]
	if check.Tool != "e2fsck" || check.Device != "/dev/sda2" {
		t.Errorf("Unexpected tool/device: %q %q", check.Tool, check.Device)
	}

	if len(check.Phases) != 3 {
		t.Errorf("Expected 3 phases, got %v", check.Phases)
	}

	if check.ExitCode != 1 {
		t.Errorf("Expected exit code 1, got %d", check.ExitCode)
	}
}

func TestExtractFsChecksXfsRepair(t *testing.T) {
	var checks = ExtractFsChecks([]string{
		"commandrvf: xfs_repair -n /dev/mapper/rhel-root",
		"Phase 1 - find and verify superblock...",
		"Phase 2 - using internal log",
	})

	if len(checks) != 1 {
		t.Fatalf("Expected 1 check, got %d", len(checks))
	}

	if checks[0].Device != "/dev/mapper/rhel-root" || len(checks[0].Phases) != 2 {
		t.Errorf("Unexpected check: %+v", checks[0])
	}

	// No exit line seen: the neutral code 0 stands
	if checks[0].ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", checks[0].ExitCode)
	}
}

func TestExtractFsChecksResultWindow(t *testing.T) {
	var lines = []string{"commandrvf: e2fsck -fy /dev/sda1"}
	for range fsckResultWindow + 1 {
		lines = append(lines, "noise")
	}
	lines = append(lines, "command e2fsck exited with status 4")

	var checks = ExtractFsChecks(lines)
	if len(checks) != 1 {
		t.Fatalf("Expected 1 check, got %d", len(checks))
	}

	if checks[0].ExitCode != 0 {
		t.Error("Exit line beyond the result window should not attach")
	}
}

func TestExtractFsChecksTwoDevices(t *testing.T) {
	var checks = ExtractFsChecks([]string{
		"commandrvf: e2fsck -fy /dev/sda1",
		"command e2fsck returned 0",
		"commandrvf: e2fsck -fy /dev/sda2",
		"command e2fsck returned 2",
	})

	if len(checks) != 2 {
		t.Fatalf("Expected 2 checks, got %d", len(checks))
	}

	if checks[1].Device != "/dev/sda2" || checks[1].ExitCode != 2 {
		t.Errorf("Unexpected second check: %+v", checks[1])
	}
}
