package logline

type Category int

const (
	CategoryOther Category = iota
	CategoryStage
	CategoryDispatcher
	CategoryNBDKit
	CategoryLibguestfs
	CategoryGuestfsd
	CategoryCommand
	CategoryError
	CategoryWarning
)

var categoryNames map[Category]string = map[Category]string{
	CategoryOther:      "other",
	CategoryStage:      "stage",
	CategoryDispatcher: "dispatcher",
	CategoryNBDKit:     "nbdkit",
	CategoryLibguestfs: "libguestfs",
	CategoryGuestfsd:   "guestfsd",
	CategoryCommand:    "command",
	CategoryError:      "error",
	CategoryWarning:    "warning",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}

	return "other"
}

type (
	// LogLine is one classified line of a conversion log. Immutable once built.
	LogLine struct {
		Index    int      `json:"index"`
		Text     string   `json:"text"`
		Category Category `json:"category"`
	}
)
