package logline

import (
	"regexp"
	"strings"
)

// stageMarkerPattern matches the dispatcher's stage boundary lines, e.g.
// "[  63.1] Converting Red Hat Enterprise Linux 8.5 to run on KVM".
var stageMarkerPattern *regexp.Regexp = regexp.MustCompile(`^\[\s*(\d+(?:\.\d+)?)\]\s+(.+)$`)

// Literal stage names the dispatcher is known to emit. A bracketed
// elapsed-time line only counts as a stage boundary when its text starts
// with one of these.
const (
	AnchorSettingUp     string = "Setting up the source"
	AnchorOpening       string = "Opening the source"
	AnchorInspecting    string = "Inspecting the source"
	AnchorFreeSpace     string = "Checking for sufficient free disk space"
	AnchorFirmwareCheck string = "Checking if the guest needs BIOS or UEFI"
	AnchorConverting    string = "Converting"
	AnchorMapping       string = "Mapping filesystem data"
	AnchorClosing       string = "Closing the overlay"
	AnchorAssigning     string = "Assigning disks"
	AnchorCopying       string = "Copying disk"
	AnchorMetadata      string = "Creating output metadata"
	AnchorFinishing     string = "Finishing off"
)

var stageAnchors []string = []string{
	AnchorSettingUp,
	AnchorOpening,
	AnchorInspecting,
	AnchorFreeSpace,
	AnchorFirmwareCheck,
	AnchorConverting,
	AnchorMapping,
	AnchorClosing,
	AnchorAssigning,
	AnchorCopying,
	AnchorMetadata,
	AnchorFinishing,
}

// IsStageMarker reports whether text is a stage boundary line and, if so,
// returns the elapsed-seconds token and the stage name.
func IsStageMarker(text string) (elapsed string, name string, ok bool) {
	var match []string = stageMarkerPattern.FindStringSubmatch(text)
	if match == nil {
		return
	}

	for _, anchor := range stageAnchors {
		if strings.HasPrefix(match[2], anchor) {
			return match[1], match[2], true
		}
	}

	return
}

// Classify assigns exactly one category to a raw line. It is stateless and
// total: any input yields a category, defaulting to CategoryOther.
func Classify(text string) Category {
	if _, _, ok := IsStageMarker(text); ok {
		return CategoryStage
	}

	switch {
	case strings.HasPrefix(text, "virt-v2v: error:"), strings.HasPrefix(text, "nbdkit: error:"),
		strings.Contains(text, "libguestfs: error:"):
		return CategoryError
	case strings.HasPrefix(text, "virt-v2v: warning:"), strings.Contains(text, ": warning:"):
		return CategoryWarning
	case strings.HasPrefix(text, "virt-v2v:"), strings.HasPrefix(text, "info:"):
		return CategoryDispatcher
	case strings.HasPrefix(text, "nbdkit:"):
		return CategoryNBDKit
	case strings.HasPrefix(text, "libguestfs:"):
		return CategoryLibguestfs
	case strings.HasPrefix(text, "guestfsd:"):
		return CategoryGuestfsd
	case strings.HasPrefix(text, "commandrvf:"), strings.HasPrefix(text, "command:"):
		return CategoryCommand
	}

	return CategoryOther
}

// ClassifyAll maps a raw line array to classified LogLines. Line indexes are
// 0-based and assigned from slice position, matching the loader contract.
func ClassifyAll(lines []string) (out []LogLine) {
	out = make([]LogLine, len(lines))

	for i, text := range lines {
		out[i] = LogLine{
			Index:    i,
			Text:     text,
			Category: Classify(text),
		}
	}

	return
}

// SplitBlob splits one raw UTF-8 log blob into lines. Both LF and CRLF
// endings are accepted; a trailing newline does not produce an empty line.
func SplitBlob(blob string) (lines []string) {
	blob = strings.ReplaceAll(blob, "\r\n", "\n")
	blob = strings.TrimSuffix(blob, "\n")

	if blob == "" {
		return []string{}
	}

	return strings.Split(blob, "\n")
}
