package extract

import "strings"

// gptTypeLabels resolves GPT partition-type GUIDs to human-readable labels.
var gptTypeLabels map[string]string = map[string]string{
	"C12A7328-F81F-11D2-BA4B-00A0C93EC93B": "EFI System",
	"21686148-6449-6E6F-744E-656564454649": "BIOS boot",
	"0FC63DAF-8483-4772-8E79-3D69D8477DE4": "Linux filesystem",
	"0657FD6D-A4AB-43C4-84E5-0933C84B4F4F": "Linux swap",
	"E6D6D379-F507-44C2-A23C-238F2A3DF928": "Linux LVM",
	"A19D880F-05FC-4D3B-A006-743F0F84911E": "Linux RAID",
	"933AC7E1-2EB4-4F13-B844-0E14E2AEF915": "Linux /home",
	"44479540-F297-41B2-9AF7-D131D5F0458A": "Linux root (x86-64)",
	"EBD0A0A2-B9E5-4433-87C0-68B6B72699C7": "Microsoft basic data",
	"E3C9E316-0B5C-4DB8-817D-F92DF00215AE": "Microsoft reserved",
	"DE94BBA4-06D1-4D40-A16A-BFD50179D6AC": "Windows recovery",
}

// mbrTypeLabels resolves MBR partition type bytes.
var mbrTypeLabels map[string]string = map[string]string{
	"0x05": "Extended",
	"0x07": "NTFS/exFAT",
	"0x0b": "W95 FAT32",
	"0x0c": "W95 FAT32 (LBA)",
	"0x0e": "W95 FAT16 (LBA)",
	"0x82": "Linux swap",
	"0x83": "Linux",
	"0x8e": "Linux LVM",
	"0xef": "EFI System",
	"0xee": "GPT protective",
	"0xfd": "Linux RAID autodetect",
}

// LookupTypeCode resolves a GPT GUID or MBR type byte to a label. Unknown
// codes are passed through verbatim rather than rejected.
func LookupTypeCode(code string) string {
	var trimmed string = strings.TrimSpace(code)

	if label, ok := gptTypeLabels[strings.ToUpper(trimmed)]; ok {
		return label
	}

	var normalized string = strings.ToLower(trimmed)
	if !strings.HasPrefix(normalized, "0x") && len(normalized) <= 2 {
		normalized = "0x" + normalized
	}
	if len(normalized) == 3 {
		normalized = "0x0" + normalized[2:]
	}
	if label, ok := mbrTypeLabels[normalized]; ok {
		return label
	}

	return trimmed
}
