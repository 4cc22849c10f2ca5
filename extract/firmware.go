package extract

import (
	"regexp"
	"strings"
)

var (
	espFoundPattern     *regexp.Regexp = regexp.MustCompile(`(?i)EFI system partition(?: found)? (?:on|at)\s+(/dev/\S+)`)
	firmwareTypePattern *regexp.Regexp = regexp.MustCompile(`(?i)(?:guest )?firmware(?: type)?[:= ]+\s*(bios|uefi|unknown)`)
)

// ExtractFirmwareDetection scans one stage's lines for the BIOS/UEFI
// decision. An explicit decision line wins; otherwise the presence of an
// EFI system partition implies uefi. With no evidence at all the firmware
// field stays empty.
func ExtractFirmwareDetection(lines []string) (out FirmwareDetection) {
	out = FirmwareDetection{ESPDevices: []string{}, LineNumber: -1}

	for i, line := range lines {
		if match := espFoundPattern.FindStringSubmatch(line); match != nil {
			out.ESPDevices = append(out.ESPDevices, match[1])
			if out.LineNumber < 0 {
				out.LineNumber = i
			}
		}

		if match := firmwareTypePattern.FindStringSubmatch(line); match != nil && out.Firmware == "" {
			out.Firmware = strings.ToLower(match[1])
			out.LineNumber = i
		}
	}

	out.ESPDevices = dedupe(out.ESPDevices, func(s string) string { return s })
	if out.Firmware == "" && len(out.ESPDevices) > 0 {
		out.Firmware = "uefi"
	}

	return
}
