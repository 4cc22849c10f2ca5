package extract

import "testing"

func TestExtractBootloaderConfigGrub2(t *testing.T) {
	var out = ExtractBootloaderConfig([]string{
		"commandrvf: grub2-mkconfig -o /boot/grub2/grub.cfg",
		"commandrvf: grubby --set-default=/boot/vmlinuz-5.14.0-1.x86_64",
		"commandrvf: grubby --update-kernel=ALL --args=\"console=ttyS0 net.ifnames=0\"",
		"fstab: replacing \"/dev/hda1\" with \"/dev/sda1\" (mountpoint /boot)",
		"fstab: adding \"/dev/mapper/osprober\" at \"/mnt/extra\"",
	})

	if out.Tool != "grub2" || out.ConfigPath != "/boot/grub2/grub.cfg" {
		t.Errorf("Unexpected tool/config: %q %q", out.Tool, out.ConfigPath)
	}

	if out.DefaultKernel != "/boot/vmlinuz-5.14.0-1.x86_64" {
		t.Errorf("Unexpected default kernel %q", out.DefaultKernel)
	}

	if len(out.KernelArgs) != 2 || out.KernelArgs[0] != "console=ttyS0" {
		t.Errorf("Unexpected kernel args: %v", out.KernelArgs)
	}

	if len(out.FstabEdits) != 2 {
		t.Fatalf("Expected 2 fstab edits, got %d", len(out.FstabEdits))
	}

	var replace = out.FstabEdits[0]
	if replace.Spec != "/dev/sda1" || replace.Replaces != "/dev/hda1" || replace.Mountpoint != "/boot" {
		t.Errorf("Unexpected replace edit: %+v", replace)
	}

	var add = out.FstabEdits[1]
	if add.Spec != "/dev/mapper/osprober" || add.Mountpoint != "/mnt/extra" || add.Replaces != "" {
		t.Errorf("Unexpected add edit: %+v", add)
	}

	if out.LineNumber != 0 {
		t.Errorf("Expected first evidence line 0, got %d", out.LineNumber)
	}
}

func TestExtractBootloaderConfigNoEvidence(t *testing.T) {
	var out = ExtractBootloaderConfig([]string{"nothing here"})
	if out.Tool != "" || len(out.FstabEdits) != 0 || len(out.KernelArgs) != 0 {
		t.Errorf("Expected zero-value record, got %+v", out)
	}

	if out.LineNumber != -1 {
		t.Errorf("Expected -1 sentinel, got %d", out.LineNumber)
	}
}

func TestBootloaderToolName(t *testing.T) {
	var cases = map[string]string{
		"grub2-mkconfig": "grub2",
		"grub-mkconfig":  "grub-mkconfig",
		"update-grub":    "grub",
		"zipl":           "zipl",
		"bootctl":        "systemd-boot",
	}

	for in, want := range cases {
		if got := bootloaderToolName(in); got != want {
			t.Errorf("bootloaderToolName(%q) = %q, want %q", in, got, want)
		}
	}
}
