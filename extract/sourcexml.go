package extract

import (
	"encoding/xml"
	"strings"
)

// domainXML mirrors the subset of the libvirt domain document the model
// needs. Unknown elements are ignored by the decoder.
type domainXML struct {
	Type   string `xml:"type,attr"`
	Name   string `xml:"name"`
	Memory struct {
		Unit  string `xml:"unit,attr"`
		Value string `xml:",chardata"`
	} `xml:"memory"`
	VCPU struct {
		Value string `xml:",chardata"`
	} `xml:"vcpu"`
	OS struct {
		Firmware string `xml:"firmware,attr"`
		Loader   struct {
			Type string `xml:"type,attr"`
		} `xml:"loader"`
	} `xml:"os"`
	Devices struct {
		Disks []struct {
			Device string `xml:"device,attr"`
			Source struct {
				File string `xml:"file,attr"`
				Dev  string `xml:"dev,attr"`
			} `xml:"source"`
			Target struct {
				Bus string `xml:"bus,attr"`
			} `xml:"target"`
			Driver struct {
				Type string `xml:"type,attr"`
			} `xml:"driver"`
		} `xml:"disk"`
		Interfaces []struct {
			MAC struct {
				Address string `xml:"address,attr"`
			} `xml:"mac"`
			Source struct {
				Bridge  string `xml:"bridge,attr"`
				Network string `xml:"network,attr"`
			} `xml:"source"`
			Model struct {
				Type string `xml:"type,attr"`
			} `xml:"model"`
		} `xml:"interface"`
	} `xml:"devices"`
}

// ExtractSourceInfo recovers the source guest topology from the libvirt
// XML document the dispatcher dumps into the log. The document is buffered
// from "<domain" to "</domain>"; when the closing tag never appears the
// partial buffer is parsed as-is, and a buffer the decoder rejects yields
// a record carrying only the raw text.
func ExtractSourceInfo(lines []string) (out SourceInfo) {
	out = SourceInfo{Disks: []SourceDisk{}, Removables: []SourceDisk{}, NICs: []SourceNIC{}, LineNumber: -1}

	var (
		buf       []string
		buffering bool
	)

	for i, line := range lines {
		var trimmed string = strings.TrimSpace(line)

		if !buffering {
			if strings.HasPrefix(trimmed, "<domain") {
				buffering = true
				out.LineNumber = i
				buf = append(buf, line)
			}

			continue
		}

		buf = append(buf, line)
		if strings.HasPrefix(trimmed, "</domain>") {
			break
		}
	}

	if len(buf) == 0 {
		return
	}

	out.RawXML = strings.Join(buf, "\n")

	var doc domainXML
	if err := xml.Unmarshal([]byte(out.RawXML), &doc); err != nil {
		return
	}

	out.Name = doc.Name
	out.Hypervisor = doc.Type
	out.VCPUs = parseInt(doc.VCPU.Value)
	out.MemoryBytes = memoryToBytes(doc.Memory.Value, doc.Memory.Unit)

	out.Firmware = doc.OS.Firmware
	if out.Firmware == "" && strings.Contains(strings.ToLower(doc.OS.Loader.Type), "pflash") {
		out.Firmware = "efi"
	}

	for _, disk := range doc.Devices.Disks {
		var entry SourceDisk = SourceDisk{
			Path:       disk.Source.File,
			Format:     disk.Driver.Type,
			Controller: disk.Target.Bus,
		}
		if entry.Path == "" {
			entry.Path = disk.Source.Dev
		}

		if disk.Device == "cdrom" || disk.Device == "floppy" {
			out.Removables = append(out.Removables, entry)
		} else {
			out.Disks = append(out.Disks, entry)
		}
	}

	for _, iface := range doc.Devices.Interfaces {
		var vnet string = iface.Source.Bridge
		if vnet == "" {
			vnet = iface.Source.Network
		}

		out.NICs = append(out.NICs, SourceNIC{
			MAC:   iface.MAC.Address,
			Vnet:  vnet,
			Model: iface.Model.Type,
		})
	}

	return
}

// memoryToBytes normalizes libvirt's unit-attributed memory value. The
// attribute defaults to KiB when absent.
func memoryToBytes(value string, unit string) int64 {
	var n int64 = int64(parseInt(value))
	if n == 0 {
		return 0
	}

	switch strings.ToUpper(strings.TrimSpace(unit)) {
	case "", "KIB", "K":
		return n << 10
	case "B", "BYTES":
		return n
	case "MIB", "M":
		return n << 20
	case "GIB", "G":
		return n << 30
	case "TIB", "T":
		return n << 40
	}

	return n << 10
}
