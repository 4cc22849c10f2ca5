package db

import (
	"time"
)

type (
	RunStatus int

	// StageSummary is the per-stage slice of a ConversionRun that the API
	// serves without re-parsing the log.
	StageSummary struct {
		Name           string  `json:"name"`
		StartLine      int     `json:"start_line"`
		EndLine        int     `json:"end_line"`
		ElapsedSeconds float64 `json:"elapsed_seconds"`
	}

	// ConversionRun is one ingested virt-v2v log file. The raw log lives on
	// disk at SourcePath; only derived metadata is persisted here.
	ConversionRun struct {
		Name          string         `gomysql:"name,primary,unique" json:"name"`
		SourcePath    string         `gomysql:"source_path" json:"source_path"`
		SourceHost    string         `gomysql:"source_host" json:"source_host"`
		IngestedAt    time.Time      `gomysql:"ingested_at" json:"ingested_at"`
		SizeBytes     int64          `gomysql:"size_bytes" json:"size_bytes"`
		TotalLines    int            `gomysql:"total_lines" json:"total_lines"`
		Status        RunStatus      `gomysql:"status" json:"status"`
		GuestName     string         `gomysql:"guest_name" json:"guest_name"`
		GuestOS       string         `gomysql:"guest_os" json:"guest_os"`
		Firmware      string         `gomysql:"firmware" json:"firmware"`
		ErrorCount    int            `gomysql:"error_count" json:"error_count"`
		WarningCount  int            `gomysql:"warning_count" json:"warning_count"`
		ApiCallCount  int            `gomysql:"api_call_count" json:"api_call_count"`
		FileCopyCount int            `gomysql:"file_copy_count" json:"file_copy_count"`
		Stages        []StageSummary `gomysql:"stages,json" json:"stages"`
	}

	// DriverImage is an indexed virtio-win driver ISO. Files holds every
	// path on the ISO so copies seen in conversion logs can be matched back
	// to the driver they came from.
	DriverImage struct {
		Name      string    `gomysql:"name,primary,unique" json:"name"`
		ISOPath   string    `gomysql:"iso_path" json:"iso_path"`
		Size      int64     `gomysql:"size" json:"size"`
		IndexedAt time.Time `gomysql:"indexed_at" json:"indexed_at"`
		FileCount int       `gomysql:"file_count" json:"file_count"`
		Files     []string  `gomysql:"files,json" json:"files"`
	}
)

const (
	RunStatusUnknown RunStatus = iota
	RunStatusCompleted
	RunStatusFailed
)

func (s RunStatus) String() string {
	switch s {
	case RunStatusCompleted:
		return "completed"
	case RunStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
