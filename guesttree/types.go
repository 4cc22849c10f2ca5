package guesttree

import "github.com/opnlaas/v2vlens/trace"

type OpKind string

const (
	OpCopy      OpKind = "copy"
	OpAugGet    OpKind = "aug-get"
	OpAugSet    OpKind = "aug-set"
	OpAugRemove OpKind = "aug-rm"
	OpAugMatch  OpKind = "aug-match"
)

type (
	// FileCheck is one probe call recorded against a node.
	FileCheck struct {
		Name       string `json:"name"`
		Result     string `json:"result,omitempty"`
		Found      bool   `json:"found"`
		LineNumber int    `json:"line_number"`
	}

	// FileOp is a copy or configuration operation recorded against a node.
	// For augeas ops Key is the in-file key, not a path segment.
	FileOp struct {
		Kind         OpKind           `json:"kind"`
		Key          string           `json:"key,omitempty"`
		Value        string           `json:"value,omitempty"`
		Origin       trace.CopyOrigin `json:"origin,omitempty"`
		Source       string           `json:"source,omitempty"`
		SourceHandle string           `json:"source_handle,omitempty"`
		SizeBytes    int64            `json:"size_bytes,omitempty"`
		LineNumber   int              `json:"line_number"`
	}

	// NodeTotals are recursively aggregated counts, computed once at build
	// time so summaries never re-walk the tree.
	NodeTotals struct {
		Entries    int `json:"entries"`
		Found      int `json:"found"`
		NotFound   int `json:"not_found"`
		Copies     int `json:"copies"`
		AugGets    int `json:"aug_gets"`
		AugSets    int `json:"aug_sets"`
		AugRemoves int `json:"aug_removes"`
	}

	// TreeNode is one path segment of a device's file-operation tree. A
	// node is a directory iff it has children. Trees are built fresh per
	// input and never mutated afterwards.
	TreeNode struct {
		Name     string               `json:"name"`
		Path     string               `json:"path"`
		Children map[string]*TreeNode `json:"children,omitempty"`
		Checks   []FileCheck          `json:"checks,omitempty"`
		Ops      []FileOp             `json:"ops,omitempty"`
		Totals   NodeTotals           `json:"totals"`
	}

	// Pass is one contiguous interval during which a device was mounted at
	// a mountpoint.
	Pass struct {
		Number     int    `json:"number"`
		Device     string `json:"device"`
		Mountpoint string `json:"mountpoint"`
		StartLine  int    `json:"start_line"`
		EndLine    int    `json:"end_line"`
		CallCount  int    `json:"call_count"`
	}

	// DeviceGroup merges every pass of one device (or one synthetic
	// handle context) into a single display group.
	DeviceGroup struct {
		Device     string                `json:"device"`
		Mountpoint string                `json:"mountpoint"`
		Handle     string                `json:"handle,omitempty"`
		Synthetic  bool                  `json:"synthetic"`
		Passes     []Pass                `json:"passes"`
		AllChecks  []trace.ApiCallRecord `json:"all_checks"`
		Root       *TreeNode             `json:"root"`
	}

	// Forest is the complete reconstruction for one run: one group per
	// physical device plus one per auxiliary data source.
	Forest struct {
		Groups []*DeviceGroup `json:"groups"`
	}
)
