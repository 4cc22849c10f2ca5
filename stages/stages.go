package stages

import (
	"strconv"

	"github.com/opnlaas/v2vlens/logline"
)

type (
	// StageRecord is one contiguous phase of a conversion run. Stages are
	// non-overlapping and ordered by StartLine; together they cover the
	// whole input line array.
	StageRecord struct {
		Name           string            `json:"name"`
		StartLine      int               `json:"start_line"`
		EndLine        int               `json:"end_line"`
		ElapsedSeconds float64           `json:"elapsed_seconds"`
		Lines          []logline.LogLine `json:"-"`
	}
)

// Texts returns the raw text of the stage's lines, the form the content
// extractors consume.
func (s *StageRecord) Texts() (out []string) {
	out = make([]string, len(s.Lines))
	for i, line := range s.Lines {
		out[i] = line.Text
	}

	return
}

// Segment partitions a classified line array into ordered stages. Every
// boundary marker closes the previous stage at the line preceding it. Lines
// before the first marker form an unnamed preamble stage; a run with no
// markers at all yields exactly one stage spanning the whole input. A
// marker whose elapsed token fails to parse inherits the previous stage's
// elapsed value.
func Segment(lines []logline.LogLine) (out []StageRecord) {
	out = []StageRecord{}
	if len(lines) == 0 {
		return
	}

	var (
		current StageRecord = StageRecord{Name: "", StartLine: 0, ElapsedSeconds: 0}
		elapsed float64
	)

	for _, line := range lines {
		if line.Category != logline.CategoryStage {
			continue
		}

		var token, name string
		var ok bool
		if token, name, ok = logline.IsStageMarker(line.Text); !ok {
			continue
		}

		if line.Index > current.StartLine || current.Name != "" {
			current.EndLine = line.Index - 1
			current.Lines = lines[current.StartLine:line.Index]
			out = append(out, current)
		}

		if parsed, err := strconv.ParseFloat(token, 64); err == nil {
			elapsed = parsed
		}

		current = StageRecord{
			Name:           name,
			StartLine:      line.Index,
			ElapsedSeconds: elapsed,
		}
	}

	current.EndLine = len(lines) - 1
	current.Lines = lines[current.StartLine:]
	out = append(out, current)

	return
}

// Stage-name anchors re-exported for callers that segment first and pick
// extraction scopes second.
const (
	AnchorSettingUp     string = logline.AnchorSettingUp
	AnchorOpening       string = logline.AnchorOpening
	AnchorInspecting    string = logline.AnchorInspecting
	AnchorFirmwareCheck string = logline.AnchorFirmwareCheck
	AnchorConverting    string = logline.AnchorConverting
	AnchorMapping       string = logline.AnchorMapping
	AnchorCopying       string = logline.AnchorCopying
)

// Find returns the first stage whose name starts with anchor, or nil.
func Find(records []StageRecord, anchor string) *StageRecord {
	for i := range records {
		if len(records[i].Name) >= len(anchor) && records[i].Name[:len(anchor)] == anchor {
			return &records[i]
		}
	}

	return nil
}
