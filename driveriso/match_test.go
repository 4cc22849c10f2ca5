package driveriso

import (
	"testing"

	"github.com/opnlaas/v2vlens/db"
)

func TestIsDriverFile(t *testing.T) {
	var cases = []struct {
		path string
		want bool
	}{
		{"/windows/system32/drivers/viostor.sys", true},
		{"/Temp/netkvm.INF", true},
		{"/Temp/qemu-ga-x86_64.msi", true},
		{"/etc/fstab", false},
		{"/boot/vmlinuz-5.14.0", false},
		{"", false},
	}

	for _, c := range cases {
		if got := IsDriverFile(c.path); got != c.want {
			t.Errorf("IsDriverFile(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestMatchFile(t *testing.T) {
	var image = &db.DriverImage{
		Name: "virtio-win",
		Files: []string{
			"/netkvm/2k19/amd64/netkvm.sys",
			"/viostor/2k19/amd64/viostor.sys",
			"/viostor/2k22/amd64/viostor.sys",
			"/viostor/viostor.txt",
		},
	}

	var matches = MatchFile(image, `C:\Windows\System32\drivers\VIOSTOR.SYS`)
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}

	for i, want := range []DriverMatch{
		{Driver: "viostor", GuestOS: "2k19", Arch: "amd64", Path: "/viostor/2k19/amd64/viostor.sys"},
		{Driver: "viostor", GuestOS: "2k22", Arch: "amd64", Path: "/viostor/2k22/amd64/viostor.sys"},
	} {
		if matches[i] != want {
			t.Errorf("Match %d = %+v, want %+v", i, matches[i], want)
		}
	}

	if got := MatchFile(image, "/tmp/nothere.sys"); len(got) != 0 {
		t.Errorf("Expected no matches, got %+v", got)
	}

	if got := MatchFile(nil, "viostor.sys"); got != nil {
		t.Errorf("Expected nil for a nil image, got %+v", got)
	}
}

func TestParseEntryShortPaths(t *testing.T) {
	var short = parseEntry("/viostor/viostor.txt")
	if short.Driver != "viostor" || short.GuestOS != "" || short.Arch != "" {
		t.Errorf("Unexpected short-path parse: %+v", short)
	}

	var bare = parseEntry("/readme.txt")
	if bare.Driver != "" || bare.Path != "/readme.txt" {
		t.Errorf("Unexpected bare-path parse: %+v", bare)
	}
}

func TestHasFile(t *testing.T) {
	var image = &db.DriverImage{
		Files: []string{"/netkvm/2k19/amd64/netkvm.sys", "/viostor/2k19/amd64/viostor.sys"},
	}

	if !HasFile(image, "/viostor/2k19/amd64/viostor.sys") {
		t.Error("Expected exact path to be present")
	}

	if !HasFile(image, "viostor/2k19/amd64/viostor.sys") {
		t.Error("Expected leading slash to be implied")
	}

	if HasFile(image, "/viostor/2k19/amd64/vioscsi.sys") {
		t.Error("Expected absent path to miss")
	}

	if HasFile(nil, "/anything") {
		t.Error("Expected nil image to miss")
	}
}
