package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// fsTypeAliases maps low-level tool names for filesystems to the kernel
// names the rest of the model uses.
var fsTypeAliases map[string]string = map[string]string{
	"fat16":          "vfat",
	"fat32":          "vfat",
	"hfs+":           "hfsplus",
	"linux-swap":     "swap",
	"linux-swap(v0)": "swap",
	"linux-swap(v1)": "swap",
	"ntfs-3g":        "ntfs",
}

// NormalizeFsType canonicalizes a filesystem type name. Unknown names pass
// through unchanged.
func NormalizeFsType(name string) string {
	var lowered string = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := fsTypeAliases[lowered]; ok {
		return canonical
	}

	return lowered
}

var sizePattern *regexp.Regexp = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)\s*([KMGTP]i?B?|B)?$`)

// ParseSizeBytes normalizes a size token ("1048576B", "55 M", "2.5GiB",
// "512 KiB") to integer bytes. Decimal suffixes without an "i" are treated
// as binary multiples, matching how the package tools report them. A token
// that fails to parse yields 0.
func ParseSizeBytes(token string) int64 {
	var match []string = sizePattern.FindStringSubmatch(strings.TrimSpace(token))
	if match == nil {
		return 0
	}

	var value float64
	var err error
	if value, err = strconv.ParseFloat(match[1], 64); err != nil {
		return 0
	}

	var mult float64 = 1
	switch strings.ToUpper(strings.TrimSuffix(strings.TrimSuffix(match[2], "B"), "i")) {
	case "K":
		mult = 1 << 10
	case "M":
		mult = 1 << 20
	case "G":
		mult = 1 << 30
	case "T":
		mult = 1 << 40
	case "P":
		mult = 1 << 50
	}

	return int64(value * mult)
}

// parseInt is strconv.Atoi with a neutral default, the standard fallback
// for malformed numeric payloads.
func parseInt(token string) int {
	var n, err = strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return 0
	}

	return n
}

func parseFloat(token string) float64 {
	var f, err = strconv.ParseFloat(strings.TrimSpace(token), 64)
	if err != nil {
		return 0
	}

	return f
}
