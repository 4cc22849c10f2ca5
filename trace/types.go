package trace

type CopyOrigin string

const (
	OriginUpload   CopyOrigin = "upload"
	OriginWrite    CopyOrigin = "write"
	OriginDownload CopyOrigin = "download"
	OriginCopy     CopyOrigin = "copy"
	OriginTarIn    CopyOrigin = "tar-in"
)

type (
	// GuestCommand is one external command the appliance ran while serving
	// an API call.
	GuestCommand struct {
		Command    string `json:"command"`
		Output     string `json:"output,omitempty"`
		LineNumber int    `json:"line_number"`
	}

	// ApiCallRecord is one probe/config/copy operation observed against the
	// guest or an auxiliary data source. Handle identifies which open data
	// source the call targets; the empty handle is the primary guest.
	ApiCallRecord struct {
		Name          string         `json:"name"`
		Handle        string         `json:"handle,omitempty"`
		Args          []string       `json:"args"`
		Result        string         `json:"result,omitempty"`
		LineNumber    int            `json:"line_number"`
		DurationSecs  float64        `json:"duration_secs,omitempty"`
		GuestCommands []GuestCommand `json:"guest_commands,omitempty"`
	}

	// FileCopyRecord is one file transferred into, out of, or within the
	// guest. SourceHandle is set when the source lives on a non-primary
	// data source such as a driver-distribution image.
	FileCopyRecord struct {
		Origin       CopyOrigin `json:"origin"`
		Source       string     `json:"source,omitempty"`
		Destination  string     `json:"destination"`
		SizeBytes    int64      `json:"size_bytes,omitempty"`
		Content      string     `json:"content,omitempty"`
		SourceHandle string     `json:"source_handle,omitempty"`
		LineNumber   int        `json:"line_number"`
	}
)
