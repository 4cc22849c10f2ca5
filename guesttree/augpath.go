package guesttree

import (
	"regexp"
	"strings"
)

// AugPrefix is the configuration-engine prefix every key path starts with.
const AugPrefix string = "/files"

type (
	// DecomposedPath is an augeas key path split into the config file it
	// addresses and the key inside that file.
	DecomposedPath struct {
		FilePath string `json:"file_path"`
		Key      string `json:"key"`
	}
)

// configFileExtensions are file-name extensions that mark a segment as the
// config file itself.
var configFileExtensions map[string]bool = map[string]bool{
	"conf":  true,
	"cfg":   true,
	"cnf":   true,
	"ini":   true,
	"repo":  true,
	"rules": true,
	"list":  true,
}

// wellKnownFiles are extensionless file names that end the file portion of
// a key path.
var wellKnownFiles map[string]bool = map[string]bool{
	"fstab":       true,
	"hosts":       true,
	"hostname":    true,
	"passwd":      true,
	"group":       true,
	"shadow":      true,
	"gshadow":     true,
	"crypttab":    true,
	"mtab":        true,
	"exports":     true,
	"inittab":     true,
	"sudoers":     true,
	"environment": true,
	"grub":        true,
}

var (
	numericSegment *regexp.Regexp = regexp.MustCompile(`^\d+$`)
	bracketSegment *regexp.Regexp = regexp.MustCompile(`^.+\[\d+\]$`)
	upperSegment   *regexp.Regexp = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
)

// DecomposeAugPath splits a configuration-engine key path into the file
// path and the in-file key. It is pure and total over its domain; a
// malformed path without a "/" yields nil. Scanning left to right, the
// first rule to match wins: a numeric or array-bracket segment ends the
// file at the previous segment, a known config extension or well-known
// file name ends it at the current segment, an all-uppercase segment
// (key-name convention) ends it at the previous segment. When no rule
// matches, the whole path is the file and the key is empty.
func DecomposeAugPath(path string) *DecomposedPath {
	if !strings.Contains(path, "/") {
		return nil
	}

	var stripped string = strings.TrimPrefix(path, AugPrefix)
	if stripped == "" {
		return &DecomposedPath{FilePath: "/", Key: ""}
	}

	var segments []string = strings.Split(strings.TrimPrefix(stripped, "/"), "/")

	for i, segment := range segments {
		switch {
		case numericSegment.MatchString(segment), bracketSegment.MatchString(segment):
			return splitAt(segments, i)

		case configFileExtensions[extensionOf(segment)], wellKnownFiles[segment]:
			return splitAt(segments, i+1)

		case upperSegment.MatchString(segment):
			return splitAt(segments, i)
		}
	}

	return &DecomposedPath{FilePath: "/" + strings.Join(segments, "/"), Key: ""}
}

// splitAt ends the file portion before segment index at, the remainder
// becoming the key.
func splitAt(segments []string, at int) *DecomposedPath {
	return &DecomposedPath{
		FilePath: "/" + strings.Join(segments[:at], "/"),
		Key:      strings.Join(segments[at:], "/"),
	}
}

func extensionOf(segment string) string {
	var dot int = strings.LastIndexByte(segment, '.')
	if dot < 0 || dot == len(segment)-1 {
		return ""
	}

	return strings.ToLower(segment[dot+1:])
}
