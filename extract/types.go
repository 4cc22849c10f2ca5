package extract

type (
	// DiskLayout is one block device's partition table as reported by the
	// inspection stage. Sizes are normalized to bytes at parse time.
	DiskLayout struct {
		Device              string           `json:"device"`
		SizeBytes           int64            `json:"size_bytes"`
		Transport           string           `json:"transport,omitempty"`
		LogicalSectorSize   int              `json:"logical_sector_size,omitempty"`
		PhysicalSectorSize  int              `json:"physical_sector_size,omitempty"`
		TableType           string           `json:"table_type"`
		Model               string           `json:"model,omitempty"`
		Partitions          []PartitionEntry `json:"partitions"`
		LineNumber          int              `json:"line_number"`
	}

	PartitionEntry struct {
		Number     int    `json:"number"`
		StartBytes int64  `json:"start_bytes"`
		EndBytes   int64  `json:"end_bytes"`
		SizeBytes  int64  `json:"size_bytes"`
		FsType     string `json:"fs_type"`
		Name       string `json:"name,omitempty"`
		Flags      string `json:"flags,omitempty"`
		TypeGUID   string `json:"type_guid,omitempty"`
		TypeLabel  string `json:"type_label,omitempty"`
	}

	// KernelInfo is one guest kernel discovered during conversion.
	KernelInfo struct {
		Name         string          `json:"name"`
		Version      string          `json:"version"`
		Arch         string          `json:"arch"`
		VmlinuzPath  string          `json:"vmlinuz_path,omitempty"`
		InitrdPath   string          `json:"initrd_path,omitempty"`
		ModulesPath  string          `json:"modules_path,omitempty"`
		ModulesCount int             `json:"modules_count"`
		Virtio       map[string]bool `json:"virtio"`
		IsBest       bool            `json:"is_best"`
		IsDefault    bool            `json:"is_default"`
		LineNumber   int             `json:"line_number"`
	}

	RemovedPackage struct {
		Name    string `json:"name"`
		Version string `json:"version,omitempty"`
		Arch    string `json:"arch,omitempty"`
	}

	// PackageOperation is one package-manager transaction observed in the
	// conversion stage, typically removal of unbootable kernels.
	PackageOperation struct {
		Manager      string           `json:"manager"`
		Command      string           `json:"command"`
		Packages     []RemovedPackage `json:"packages"`
		FreedBytes   int64            `json:"freed_bytes"`
		DurationSecs float64          `json:"duration_secs,omitempty"`
		LineNumber   int              `json:"line_number"`
	}

	// InitramfsRebuild captures one initramfs regeneration run.
	InitramfsRebuild struct {
		Tool            string   `json:"tool"`
		OutputPath      string   `json:"output_path,omitempty"`
		KernelVersion   string   `json:"kernel_version,omitempty"`
		IncludedModules []string `json:"included_modules"`
		Binaries        []string `json:"binaries"`
		Firmware        []string `json:"firmware"`
		Configs         []string `json:"configs"`
		Hooks           []string `json:"hooks"`
		CopyDirs        []string `json:"copy_dirs"`
		LineNumber      int      `json:"line_number"`
	}

	FstabEdit struct {
		Spec       string `json:"spec"`
		Mountpoint string `json:"mountpoint,omitempty"`
		Replaces   string `json:"replaces,omitempty"`
		LineNumber int    `json:"line_number"`
	}

	// BootloaderConfig describes bootloader and fstab rewrites.
	BootloaderConfig struct {
		Tool          string      `json:"tool"`
		ConfigPath    string      `json:"config_path,omitempty"`
		DefaultKernel string      `json:"default_kernel,omitempty"`
		KernelArgs    []string    `json:"kernel_args"`
		FstabEdits    []FstabEdit `json:"fstab_edits"`
		LineNumber    int         `json:"line_number"`
	}

	// FsCheckResult is one filesystem integrity check run against a device.
	FsCheckResult struct {
		Device     string   `json:"device"`
		Tool       string   `json:"tool"`
		ExitCode   int      `json:"exit_code"`
		Phases     []string `json:"phases"`
		LineNumber int      `json:"line_number"`
	}

	SELinuxConfig struct {
		Mode             string `json:"mode"`
		Type             string `json:"type"`
		FileContextsPath string `json:"file_contexts_path,omitempty"`
	}

	RelabeledFile struct {
		Path        string `json:"path"`
		FromContext string `json:"from_context,omitempty"`
		ToContext   string `json:"to_context"`
		LineNumber  int    `json:"line_number"`
	}

	// SELinuxRelabel aggregates the relabel pass of the conversion stage.
	SELinuxRelabel struct {
		Config     SELinuxConfig   `json:"config"`
		Relabeled  []RelabeledFile `json:"relabeled"`
		LineNumber int             `json:"line_number"`
	}

	SourceDisk struct {
		Path       string `json:"path"`
		Format     string `json:"format,omitempty"`
		Controller string `json:"controller,omitempty"`
	}

	SourceNIC struct {
		MAC   string `json:"mac,omitempty"`
		Vnet  string `json:"vnet,omitempty"`
		Model string `json:"model,omitempty"`
	}

	// SourceInfo is the source guest topology recovered from the libvirt
	// XML dump embedded in the log.
	SourceInfo struct {
		Name        string       `json:"name"`
		Hypervisor  string       `json:"hypervisor,omitempty"`
		MemoryBytes int64        `json:"memory_bytes"`
		VCPUs       int          `json:"vcpus"`
		Firmware    string       `json:"firmware,omitempty"`
		Disks       []SourceDisk `json:"disks"`
		Removables  []SourceDisk `json:"removables"`
		NICs        []SourceNIC  `json:"nics"`
		RawXML      string       `json:"raw_xml,omitempty"`
		LineNumber  int          `json:"line_number"`
	}

	// NBDConnection describes one nbdkit endpoint set up for disk access.
	NBDConnection struct {
		Plugin     string            `json:"plugin"`
		Server     string            `json:"server,omitempty"`
		ExportName string            `json:"export_name,omitempty"`
		VddkLibdir string            `json:"vddk_libdir,omitempty"`
		Thumbprint string            `json:"thumbprint,omitempty"`
		SocketPath string            `json:"socket_path,omitempty"`
		Filters    []string          `json:"filters"`
		PluginArgs map[string]string `json:"plugin_args"`
		LineNumber int               `json:"line_number"`
	}

	// FirmwareDetection is the BIOS/UEFI decision for the guest.
	FirmwareDetection struct {
		Firmware   string   `json:"firmware"`
		ESPDevices []string `json:"esp_devices"`
		LineNumber int      `json:"line_number"`
	}
)
