package guesttree

import "strings"

// FindNode is a pure path lookup on one group's tree. Cross-source
// navigation (following a copy's source back into a driver image's group)
// is a consumer concern; this lookup is the only contribution the builder
// makes to it.
func FindNode(root *TreeNode, path string) *TreeNode {
	if root == nil {
		return nil
	}

	var node *TreeNode = root
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		if segment == "" {
			continue
		}

		if node = node.Children[segment]; node == nil {
			return nil
		}
	}

	return node
}

// GroupForHandle returns the forest group owning the given data-source
// handle, preferring synthetic (no-mount-context) groups.
func (f *Forest) GroupForHandle(handle string) *DeviceGroup {
	for _, group := range f.Groups {
		if group.Synthetic && group.Handle == handle {
			return group
		}
	}

	for _, group := range f.Groups {
		if group.Handle == handle {
			return group
		}
	}

	return nil
}
