package extract

import (
	"regexp"
	"strings"
)

// diskLayoutState is the scanner state for the disk-layout extractor.
type diskLayoutState int

const (
	diskIdle diskLayoutState = iota
	diskInPartedBlock
	diskInSfdiskDump
)

// diskLayoutExtractor parses partition tables from the inspection stage.
// Two historical formats are tolerated: parted machine-readable blocks
// ("BYT;" delimited) and sfdisk dump blocks ("label: gpt" headed).
type diskLayoutExtractor struct {
	state   diskLayoutState
	current *DiskLayout
	out     []DiskLayout
}

var sfdiskPartPattern *regexp.Regexp = regexp.MustCompile(`^(/dev/\S+?)(\d+)\s*:\s*(.+)$`)

// ExtractDiskLayouts scans one stage's lines and returns every partition
// table found, in first-seen order. Absence of evidence yields an empty
// slice, never an error.
func ExtractDiskLayouts(lines []string) []DiskLayout {
	var ex diskLayoutExtractor = diskLayoutExtractor{out: []DiskLayout{}}

	for i, line := range lines {
		ex.step(i, line)
	}

	ex.flush()
	return dedupe(ex.out, func(d DiskLayout) string { return d.Device })
}

func (ex *diskLayoutExtractor) step(index int, line string) {
	var trimmed string = strings.TrimSpace(line)

	switch ex.state {
	case diskIdle:
		if trimmed == "BYT;" {
			ex.state = diskInPartedBlock
			ex.current = &DiskLayout{Partitions: []PartitionEntry{}, LineNumber: index}
			return
		}

		if strings.HasPrefix(trimmed, "label:") {
			ex.state = diskInSfdiskDump
			ex.current = &DiskLayout{
				TableType:  strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, "label:"))),
				Partitions: []PartitionEntry{},
				LineNumber: index,
			}
			return
		}

	case diskInPartedBlock:
		if !strings.HasSuffix(trimmed, ";") {
			ex.flush()
			return
		}

		ex.partedLine(strings.TrimSuffix(trimmed, ";"))

	case diskInSfdiskDump:
		switch {
		case strings.HasPrefix(trimmed, "device:"):
			ex.current.Device = strings.TrimSpace(strings.TrimPrefix(trimmed, "device:"))
		case strings.HasPrefix(trimmed, "unit:"), strings.HasPrefix(trimmed, "label-id:"), trimmed == "":
			// Headers carry nothing the model needs.
		case sfdiskPartPattern.MatchString(trimmed):
			ex.sfdiskLine(trimmed)
		default:
			ex.flush()
		}
	}
}

// partedLine handles one record of a parted machine block. The first record
// is the device (path:size:transport:lsec:psec:table:model), the rest are
// partitions (num:start:end:size:fstype:name:flags).
func (ex *diskLayoutExtractor) partedLine(record string) {
	var fields []string = strings.Split(record, ":")

	if ex.current.Device == "" && strings.HasPrefix(fields[0], "/") {
		ex.current.Device = fields[0]
		if len(fields) > 1 {
			ex.current.SizeBytes = ParseSizeBytes(fields[1])
		}
		if len(fields) > 2 {
			ex.current.Transport = fields[2]
		}
		if len(fields) > 4 {
			ex.current.LogicalSectorSize = parseInt(fields[3])
			ex.current.PhysicalSectorSize = parseInt(fields[4])
		}
		if len(fields) > 5 {
			ex.current.TableType = fields[5]
		}
		if len(fields) > 6 {
			ex.current.Model = fields[6]
		}
		return
	}

	var entry PartitionEntry = PartitionEntry{Number: parseInt(fields[0])}
	if entry.Number == 0 {
		return
	}

	if len(fields) > 1 {
		entry.StartBytes = ParseSizeBytes(fields[1])
	}
	if len(fields) > 2 {
		entry.EndBytes = ParseSizeBytes(fields[2])
	}
	if len(fields) > 3 {
		entry.SizeBytes = ParseSizeBytes(fields[3])
	}
	if len(fields) > 4 {
		entry.FsType = NormalizeFsType(fields[4])
	}
	if len(fields) > 5 {
		entry.Name = fields[5]
	}
	if len(fields) > 6 {
		entry.Flags = fields[6]
	}

	ex.current.Partitions = append(ex.current.Partitions, entry)
}

// sfdiskLine handles one "/dev/sdaN : start=..., size=..., type=..." record
// of an sfdisk dump. Sector counts are normalized to bytes assuming 512-byte
// sectors, which is what sfdisk dumps use.
func (ex *diskLayoutExtractor) sfdiskLine(record string) {
	var match []string = sfdiskPartPattern.FindStringSubmatch(record)
	if match == nil {
		return
	}

	if ex.current.Device == "" {
		ex.current.Device = match[1]
	}

	var entry PartitionEntry = PartitionEntry{Number: parseInt(match[2])}

	const sectorSize int64 = 512
	for _, field := range strings.Split(match[3], ",") {
		if strings.TrimSpace(field) == "bootable" {
			entry.Flags = "boot"
			continue
		}

		var key, value, found = strings.Cut(field, "=")
		if !found {
			continue
		}

		key, value = strings.TrimSpace(key), unquote(strings.TrimSpace(value))
		switch key {
		case "start":
			entry.StartBytes = int64(parseInt(value)) * sectorSize
		case "size":
			entry.SizeBytes = int64(parseInt(value)) * sectorSize
		case "type":
			entry.TypeGUID = value
			entry.TypeLabel = LookupTypeCode(value)
		case "name":
			entry.Name = value
		}
	}

	if entry.SizeBytes > 0 {
		entry.EndBytes = entry.StartBytes + entry.SizeBytes - 1
	}

	ex.current.Partitions = append(ex.current.Partitions, entry)
}

// flush closes the open block, keeping partial data when the terminator
// never appeared.
func (ex *diskLayoutExtractor) flush() {
	if ex.current != nil && ex.current.Device != "" {
		ex.out = append(ex.out, *ex.current)
	}

	ex.state, ex.current = diskIdle, nil
}
