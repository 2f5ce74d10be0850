package design

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/helix/pkg/thread"
)

// NodeKind enumerates the types of nodes in the design graph.
type NodeKind int

const (
	NodePart      NodeKind = iota // threaded cylinder (defpart)
	NodeTransform                 // spatial transformation (place)
	NodeGroup                     // logical grouping (assembly)
)

func (k NodeKind) String() string {
	switch k {
	case NodePart:
		return "part"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the design graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// PartData carries the complete parameter set of one thread.
type PartData struct {
	Params thread.Params `json:"params"`
}

func (PartData) nodeData() {}

// TransformData represents a spatial transformation applied to its children.
// Created by the (place ...) form.
type TransformData struct {
	Translation *v3.Vec `json:"translation,omitempty"`
	Rotation    *v3.Vec `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// GroupData represents a logical grouping. Created by the (assembly ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
