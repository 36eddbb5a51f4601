package core

import (
	"context"
	"errors"
)

var ErrControlNotFound = errors.New("no access control defined for this resource")

// ListOptions filters and pages the admin control listing.
type ListOptions struct {
	Limit  int
	Offset int

	// Search matches case-insensitively against name, resource type and id.
	Search string

	// ResourceType restricts the listing to one resource type.
	ResourceType string
}

// ControlStore provides the control/group/rule/condition graph. The engine
// itself never touches the store; callers load a consistent snapshot first
// and hand it to the engine.
type ControlStore interface {
	// Get returns the control for the resource, or ErrControlNotFound.
	Get(ctx context.Context, resourceType, resourceID string) (*AccessControl, error)

	// List returns a page of controls plus the total count before paging.
	List(ctx context.Context, opts ListOptions) ([]*AccessControl, int, error)

	// ReplaceAll atomically swaps in a new full set of definitions.
	ReplaceAll(ctx context.Context, controls []*AccessControl) error
}
