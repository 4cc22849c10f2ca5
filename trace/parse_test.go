package trace

import (
	"reflect"
	"testing"
)

func TestParseCallWithResult(t *testing.T) {
	var calls, _ = Parse([]string{
		`libguestfs: trace: v2v: is_file "/etc/fstab" followsymlinks:true`,
		"unrelated noise",
		`libguestfs: trace: v2v: is_file = 1 (0.0012s)`,
	})

	if len(calls) != 1 {
		t.Fatalf("Expected 1 call, got %d", len(calls))
	}

	var call = calls[0]
	if call.Name != "is_file" || call.Handle != "" {
		t.Errorf("Unexpected identity: %+v", call)
	}

	if len(call.Args) != 2 || call.Args[0] != "/etc/fstab" || call.Args[1] != "followsymlinks:true" {
		t.Errorf("Unexpected args: %v", call.Args)
	}

	if call.Result != "1" {
		t.Errorf("Unexpected result %q", call.Result)
	}

	if call.DurationSecs != 0.0012 {
		t.Errorf("Unexpected duration %v", call.DurationSecs)
	}

	if call.LineNumber != 0 {
		t.Errorf("Unexpected line %d", call.LineNumber)
	}
}

func TestParseHandleNormalization(t *testing.T) {
	var calls, _ = Parse([]string{
		`libguestfs: trace: v2v: mount "/dev/sda2" "/"`,
		`libguestfs: trace: g: mount = 0`,
		`libguestfs: trace: winiso: is_file "/viostor.sys"`,
		`libguestfs: trace: winiso: is_file = 1`,
	})

	if len(calls) != 2 {
		t.Fatalf("Expected 2 calls, got %d", len(calls))
	}

	// v2v and g both normalize to the primary handle
	if calls[0].Handle != "" || calls[0].Result != "0" {
		t.Errorf("Primary-handle call not resolved: %+v", calls[0])
	}

	if calls[1].Handle != "winiso" || calls[1].Result != "1" {
		t.Errorf("Auxiliary-handle call mishandled: %+v", calls[1])
	}
}

func TestParseInterleavedSameName(t *testing.T) {
	var calls, _ = Parse([]string{
		`libguestfs: trace: v2v: aug_get "/files/etc/fstab/1/spec"`,
		`libguestfs: trace: v2v: aug_get "/files/etc/fstab/2/spec"`,
		`libguestfs: trace: v2v: aug_get = "/dev/sda1"`,
		`libguestfs: trace: v2v: aug_get = "/dev/sda2"`,
	})

	if len(calls) != 2 {
		t.Fatalf("Expected 2 calls, got %d", len(calls))
	}

	// Results pop the oldest open request for their key
	if calls[0].Result != "/dev/sda1" || calls[1].Result != "/dev/sda2" {
		t.Errorf("FIFO pairing broken: %q, %q", calls[0].Result, calls[1].Result)
	}
}

func TestParseResultWindow(t *testing.T) {
	var lines = []string{`libguestfs: trace: v2v: is_dir "/boot"`}
	for range resultWindow + 1 {
		lines = append(lines, "noise")
	}
	lines = append(lines, `libguestfs: trace: v2v: is_dir = 1`)

	var calls, _ = Parse(lines)
	if len(calls) != 1 {
		t.Fatalf("Expected 1 call, got %d", len(calls))
	}

	if calls[0].Result != "" {
		t.Error("Result beyond the window should leave the call unresolved")
	}
}

func TestParseGuestCommandAttachment(t *testing.T) {
	var calls, _ = Parse([]string{
		`libguestfs: trace: v2v: sh "grub2-mkconfig -o /boot/grub2/grub.cfg"`,
		`commandrvf: grub2-mkconfig -o /boot/grub2/grub.cfg`,
		`libguestfs: trace: v2v: sh = ""`,
	})

	if len(calls) != 1 {
		t.Fatalf("Expected 1 call, got %d", len(calls))
	}

	if len(calls[0].GuestCommands) != 1 {
		t.Fatalf("Expected 1 guest command, got %d", len(calls[0].GuestCommands))
	}

	if calls[0].GuestCommands[0].Command != "grub2-mkconfig -o /boot/grub2/grub.cfg" {
		t.Errorf("Unexpected command %q", calls[0].GuestCommands[0].Command)
	}
}

func TestParseCopies(t *testing.T) {
	var _, copies = Parse([]string{
		`libguestfs: trace: v2v: write "/etc/modprobe.d/v2v.conf" "alias scsi_hostadapter virtio_blk"`,
		`libguestfs: trace: v2v: write = 0`,
		`libguestfs: trace: v2v: download "/boot/grub2/grub.cfg" "/tmp/grub.cfg"`,
		`libguestfs: trace: v2v: download = 0`,
		`libguestfs: trace: winiso: cp "/viostor/2k19/amd64/viostor.sys" "/windows/system32/drivers/viostor.sys"`,
		`libguestfs: trace: winiso: cp = 0`,
	})

	if len(copies) != 3 {
		t.Fatalf("Expected 3 copies, got %d", len(copies))
	}

	var write = copies[0]
	if write.Origin != OriginWrite || write.Destination != "/etc/modprobe.d/v2v.conf" {
		t.Errorf("Unexpected write copy: %+v", write)
	}

	if write.Content != "alias scsi_hostadapter virtio_blk" || write.SizeBytes != int64(len(write.Content)) {
		t.Errorf("Unexpected write payload: %+v", write)
	}

	var download = copies[1]
	if download.Origin != OriginDownload || download.Source != "/boot/grub2/grub.cfg" || download.Destination != "/tmp/grub.cfg" {
		t.Errorf("Unexpected download copy: %+v", download)
	}

	var cp = copies[2]
	if cp.Origin != OriginCopy || cp.SourceHandle != "winiso" {
		t.Errorf("Unexpected cp copy: %+v", cp)
	}

	if cp.Source != "/viostor/2k19/amd64/viostor.sys" || cp.Destination != "/windows/system32/drivers/viostor.sys" {
		t.Errorf("Unexpected cp paths: %+v", cp)
	}
}

func TestParseNoiseInsensitive(t *testing.T) {
	var base = []string{
		`libguestfs: trace: v2v: is_file "/etc/fstab"`,
		`libguestfs: trace: v2v: is_file = 1`,
	}

	var noisy = []string{
		"random output",
		base[0],
		"guestfsd: <= is_file (0x5) request length 52 bytes",
		base[1],
		"more output",
	}

	var calls, _ = Parse(base)
	var noisyCalls, _ = Parse(noisy)

	if len(calls) != 1 || len(noisyCalls) != 1 {
		t.Fatalf("Expected 1 call each, got %d and %d", len(calls), len(noisyCalls))
	}

	// Line numbers shift with the noise; everything else must not
	noisyCalls[0].LineNumber = calls[0].LineNumber
	if !reflect.DeepEqual(calls[0], noisyCalls[0]) {
		t.Errorf("Noise changed the record:\n%+v\n%+v", calls[0], noisyCalls[0])
	}
}

func TestParseEscapedContent(t *testing.T) {
	var calls, _ = Parse([]string{
		`libguestfs: trace: v2v: cat "/etc/fstab"`,
		`libguestfs: trace: v2v: cat = "/dev/sda1 / xfs defaults 0 0\n/dev/sda2 /boot ext4 defaults 0 0\n"`,
	})

	if len(calls) != 1 {
		t.Fatalf("Expected 1 call, got %d", len(calls))
	}

	var want = "/dev/sda1 / xfs defaults 0 0\n/dev/sda2 /boot ext4 defaults 0 0\n"
	if calls[0].Result != want {
		t.Errorf("Unexpected unescaped result %q", calls[0].Result)
	}
}
