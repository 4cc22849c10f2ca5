package guesttree

import (
	"sort"
	"strings"

	"github.com/opnlaas/v2vlens/trace"
)

// mountCalls maps mount-establishing call names to the argument positions
// of (device, mountpoint).
var mountCalls map[string][2]int = map[string][2]int{
	"mount":         {0, 1},
	"mount_ro":      {0, 1},
	"mount_options": {1, 2},
	"mount_vfs":     {2, 3},
}

var unmountCalls map[string]bool = map[string]bool{
	"umount":       true,
	"umount_all":   true,
	"umount_local": true,
}

var augCallKinds map[string]OpKind = map[string]OpKind{
	"aug_get":   OpAugGet,
	"aug_set":   OpAugSet,
	"aug_rm":    OpAugRemove,
	"aug_match": OpAugMatch,
}

// CopyAttachPolicy resolves a file copy that matched no mount group. It is
// exposed as a named policy so alternate resolution strategies can be
// substituted in tests.
type CopyAttachPolicy func(forest *Forest) *DeviceGroup

// AttachRootFallback attaches unattributable copies to the primary group:
// the first real device group, else the synthetic primary-handle group.
// This convention is inherited behavior; nothing in the log itself proves
// it is the right owner, which is exactly why the policy is swappable.
var AttachRootFallback CopyAttachPolicy = func(forest *Forest) *DeviceGroup {
	for _, group := range forest.Groups {
		if !group.Synthetic {
			return group
		}
	}

	for _, group := range forest.Groups {
		if group.Handle == "" {
			return group
		}
	}

	return nil
}

// passBucket is one mount pass being assembled, before grouping.
type passBucket struct {
	device     string
	mountpoint string
	handle     string
	synthetic  bool
	startLine  int
	endLine    int // -1 while open; stays -1 when input ends mid-pass
	calls      []trace.ApiCallRecord
}

// Build reconstructs the per-device file-operation forest from the flat,
// line-ordered call and copy lists. Mount-family calls drive the context
// state machine and do not appear in any group's checks; every other call
// and every copy lands in exactly one node of exactly one group.
func Build(calls []trace.ApiCallRecord, copies []trace.FileCopyRecord) *Forest {
	return BuildWithPolicy(calls, copies, AttachRootFallback)
}

func BuildWithPolicy(calls []trace.ApiCallRecord, copies []trace.FileCopyRecord, fallback CopyAttachPolicy) (forest *Forest) {
	var (
		buckets   []*passBucket
		current   *passBucket
		synthetic map[string]*passBucket = map[string]*passBucket{}
	)

	var closeCurrent = func(at int) {
		if current != nil {
			current.endLine = at
			current = nil
		}
	}

	for _, call := range calls {
		if positions, ok := mountCalls[call.Name]; ok {
			closeCurrent(call.LineNumber - 1)
			current = &passBucket{
				device:     argAt(call, positions[0]),
				mountpoint: argAt(call, positions[1]),
				startLine:  call.LineNumber,
				endLine:    -1,
				handle:     call.Handle,
			}
			buckets = append(buckets, current)
			continue
		}

		if unmountCalls[call.Name] {
			closeCurrent(call.LineNumber)
			continue
		}

		if current != nil {
			current.calls = append(current.calls, call)
			continue
		}

		// No active context: attribute to a synthetic per-handle bucket.
		var bucket *passBucket = synthetic[call.Handle]
		if bucket == nil {
			bucket = &passBucket{
				device:    handleLabel(call.Handle),
				handle:    call.Handle,
				synthetic: true,
				startLine: call.LineNumber,
				endLine:   -1,
			}
			synthetic[call.Handle] = bucket
			buckets = append(buckets, bucket)
		}

		bucket.calls = append(bucket.calls, call)
	}

	forest = assembleGroups(buckets)

	for _, copy := range copies {
		attachCopy(forest, copy, fallback)
	}

	for _, group := range forest.Groups {
		aggregate(group.Root)
	}

	return
}

// assembleGroups merges every pass of the same device into one group,
// keeping per-pass line ranges, and builds each group's tree.
func assembleGroups(buckets []*passBucket) (forest *Forest) {
	forest = &Forest{Groups: []*DeviceGroup{}}

	var byKey map[string]*DeviceGroup = map[string]*DeviceGroup{}

	for _, bucket := range buckets {
		var key string = bucket.device
		if bucket.synthetic {
			key = "\x00" + bucket.handle
		}

		var group *DeviceGroup = byKey[key]
		if group == nil {
			group = &DeviceGroup{
				Device:     bucket.device,
				Mountpoint: bucket.mountpoint,
				Handle:     bucket.handle,
				Synthetic:  bucket.synthetic,
				Passes:     []Pass{},
				AllChecks:  []trace.ApiCallRecord{},
				Root:       newNode("", "/"),
			}
			byKey[key] = group
			forest.Groups = append(forest.Groups, group)
		}

		group.Passes = append(group.Passes, Pass{
			Number:     len(group.Passes) + 1,
			Device:     bucket.device,
			Mountpoint: bucket.mountpoint,
			StartLine:  bucket.startLine,
			EndLine:    bucket.endLine,
			CallCount:  len(bucket.calls),
		})

		for _, call := range bucket.calls {
			group.AllChecks = append(group.AllChecks, call)
			insertCall(group.Root, call)
		}
	}

	for _, group := range forest.Groups {
		sort.SliceStable(group.Passes, func(i, j int) bool { return group.Passes[i].StartLine < group.Passes[j].StartLine })
		for i := range group.Passes {
			group.Passes[i].Number = i + 1
		}
	}

	return
}

// insertCall places one call in the group's tree: augeas calls are routed
// through the path decomposer and recorded as ops on the file node; calls
// with a path argument become checks on that path; everything else is a
// check on the root so no event is dropped.
func insertCall(root *TreeNode, call trace.ApiCallRecord) {
	if kind, ok := augCallKinds[call.Name]; ok && len(call.Args) > 0 {
		if decomposed := DecomposeAugPath(call.Args[0]); decomposed != nil {
			var op FileOp = FileOp{
				Kind:       kind,
				Key:        decomposed.Key,
				LineNumber: call.LineNumber,
			}

			switch kind {
			case OpAugSet:
				if len(call.Args) > 1 {
					op.Value = call.Args[1]
				}
			default:
				op.Value = call.Result
			}

			var node *TreeNode = ensurePath(root, decomposed.FilePath)
			node.Ops = append(node.Ops, op)
			return
		}
	}

	var target *TreeNode = root
	if len(call.Args) > 0 && strings.HasPrefix(call.Args[0], "/") {
		target = ensurePath(root, call.Args[0])
	}

	target.Checks = append(target.Checks, FileCheck{
		Name:       call.Name,
		Result:     call.Result,
		Found:      callFound(call),
		LineNumber: call.LineNumber,
	})
}

// callFound interprets a probe result: boolean probes answer "1"/"true",
// anything else counts as found when a result landed at all.
func callFound(call trace.ApiCallRecord) bool {
	switch call.Result {
	case "", "0", "false", "NULL", "-1":
		return false
	}

	return true
}

// attachCopy finds the owning group by longest mountpoint prefix of the
// destination, restricted to passes whose line range contains the copy.
func attachCopy(forest *Forest, copy trace.FileCopyRecord, fallback CopyAttachPolicy) {
	var (
		best    *DeviceGroup
		bestLen int = -1
	)

	for _, group := range forest.Groups {
		if group.Synthetic || group.Mountpoint == "" {
			continue
		}

		if !strings.HasPrefix(copy.Destination, strings.TrimSuffix(group.Mountpoint, "/")+"/") && copy.Destination != group.Mountpoint && group.Mountpoint != "/" {
			continue
		}

		for _, pass := range group.Passes {
			if copy.LineNumber < pass.StartLine {
				continue
			}
			if pass.EndLine >= 0 && copy.LineNumber > pass.EndLine {
				continue
			}

			if len(group.Mountpoint) > bestLen {
				best, bestLen = group, len(group.Mountpoint)
			}
			break
		}
	}

	if best == nil && fallback != nil {
		best = fallback(forest)
	}
	if best == nil {
		// Empty forest: keep the event anyway in a synthetic root group.
		best = &DeviceGroup{
			Synthetic: true,
			Passes:    []Pass{},
			AllChecks: []trace.ApiCallRecord{},
			Root:      newNode("", "/"),
		}
		forest.Groups = append(forest.Groups, best)
	}

	var node *TreeNode = ensurePath(best.Root, copy.Destination)
	node.Ops = append(node.Ops, FileOp{
		Kind:         OpCopy,
		Origin:       copy.Origin,
		Source:       copy.Source,
		SourceHandle: copy.SourceHandle,
		SizeBytes:    copy.SizeBytes,
		Value:        copy.Content,
		LineNumber:   copy.LineNumber,
	})
}

func newNode(name string, path string) *TreeNode {
	return &TreeNode{Name: name, Path: path, Children: map[string]*TreeNode{}}
}

// ensurePath walks the tree by path segment, creating intermediate nodes.
func ensurePath(root *TreeNode, path string) (node *TreeNode) {
	node = root

	var walked string
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		if segment == "" {
			continue
		}

		walked += "/" + segment
		var child *TreeNode = node.Children[segment]
		if child == nil {
			child = newNode(segment, walked)
			node.Children[segment] = child
		}

		node = child
	}

	return
}

// aggregate computes recursive totals bottom-up.
func aggregate(node *TreeNode) NodeTotals {
	var totals NodeTotals

	totals.Entries = len(node.Checks) + len(node.Ops)
	for _, check := range node.Checks {
		if check.Found {
			totals.Found++
		} else {
			totals.NotFound++
		}
	}

	for _, op := range node.Ops {
		switch op.Kind {
		case OpCopy:
			totals.Copies++
		case OpAugGet, OpAugMatch:
			totals.AugGets++
		case OpAugSet:
			totals.AugSets++
		case OpAugRemove:
			totals.AugRemoves++
		}
	}

	for _, child := range node.Children {
		var sub NodeTotals = aggregate(child)
		totals.Entries += sub.Entries
		totals.Found += sub.Found
		totals.NotFound += sub.NotFound
		totals.Copies += sub.Copies
		totals.AugSets += sub.AugSets
		totals.AugGets += sub.AugGets
		totals.AugRemoves += sub.AugRemoves
	}

	node.Totals = totals
	return totals
}

func argAt(call trace.ApiCallRecord, index int) string {
	if index >= 0 && index < len(call.Args) {
		return call.Args[index]
	}

	return ""
}

func handleLabel(handle string) string {
	if handle == "" {
		return "(primary)"
	}

	return handle
}
