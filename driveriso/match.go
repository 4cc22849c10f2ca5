package driveriso

import (
	"path"
	"strings"

	"github.com/opnlaas/v2vlens/db"
)

// DriverMatch is one file on the driver ISO that shares a basename with a
// file copied into a guest. Virtio-win lays drivers out as
// /<driver>/<osver>/<arch>/<file>, e.g. /viostor/2k19/amd64/viostor.sys.
type DriverMatch struct {
	Driver  string `json:"driver"`
	GuestOS string `json:"guest_os"`
	Arch    string `json:"arch"`
	Path    string `json:"path"`
}

var driverFileExtensions = map[string]bool{
	".sys": true,
	".inf": true,
	".cat": true,
	".dll": true,
	".exe": true,
	".msi": true,
}

// IsDriverFile reports whether a copied guest path looks like a Windows
// driver payload worth matching against the ISO index.
func IsDriverFile(copiedPath string) bool {
	return driverFileExtensions[strings.ToLower(path.Ext(copiedPath))]
}

// MatchFile finds every entry on the indexed ISO whose basename matches the
// copied file. Guest paths use either separator, so both are handled.
func MatchFile(image *db.DriverImage, copiedPath string) (matches []DriverMatch) {
	if image == nil || copiedPath == "" {
		return
	}

	var base string = strings.ToLower(path.Base(strings.ReplaceAll(copiedPath, "\\", "/")))
	if base == "" || base == "/" || base == "." {
		return
	}

	for _, entry := range image.Files {
		if path.Base(entry) != base {
			continue
		}

		matches = append(matches, parseEntry(entry))
	}

	return
}

// HasFile reports whether an exact ISO path exists on the image.
func HasFile(image *db.DriverImage, isoPath string) bool {
	if image == nil {
		return false
	}

	if !strings.HasPrefix(isoPath, "/") {
		isoPath = "/" + isoPath
	}

	return indexContains(image.Files, isoPath)
}

func parseEntry(entry string) (match DriverMatch) {
	match.Path = entry

	var parts []string
	for _, part := range strings.Split(entry, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}

	// /<driver>/<osver>/<arch>/<file> is the common shape; shorter paths
	// fill what they can.
	switch {
	case len(parts) >= 4:
		match.Driver, match.GuestOS, match.Arch = parts[0], parts[1], parts[2]
	case len(parts) == 3:
		match.Driver, match.GuestOS = parts[0], parts[1]
	case len(parts) == 2:
		match.Driver = parts[0]
	}

	return
}
