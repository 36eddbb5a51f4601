package client

import (
	"context"

	"github.com/doorman-ac/doorman/internal/api"
	"github.com/doorman-ac/doorman/internal/core"
)

type ListControlsOpts struct {
	Limit  uint
	Offset uint

	Search       string
	ResourceType string
}

// ListControls retrieves a page of access controls from the server.
func (c *Client) ListControls(ctx context.Context, opts ListControlsOpts) (*api.ListControlsResponse, string, error) {
	ub := c.url().setPath(api.ListControlsRoute)
	if opts.Limit > 0 {
		ub = ub.addQueryParam("limit", opts.Limit)
	}
	if opts.Offset > 0 {
		ub = ub.addQueryParam("offset", opts.Offset)
	}
	if opts.Search != "" {
		ub = ub.addQueryParam("search", opts.Search)
	}
	if opts.ResourceType != "" {
		ub = ub.addQueryParam("resource_type", opts.ResourceType)
	}
	var resp api.ListControlsResponse
	correlation, err := c.get(ctx, ub.build(), &resp)
	if err != nil {
		return nil, correlation, err
	}
	return &resp, correlation, nil
}

// GetControl retrieves a single access control by resource type and id.
func (c *Client) GetControl(ctx context.Context, resourceType, resourceID string) (*core.AccessControl, string, error) {
	var resp core.AccessControl
	correlation, err := c.get(ctx, c.url().
		setPath(api.GetControlRoute).
		setPathParam("type", resourceType).
		setPathParam("id", resourceID).
		build(), &resp)
	if err != nil {
		return nil, correlation, err
	}
	return &resp, correlation, nil
}

type ListAuditsOpts struct {
	Limit uint

	CorrelationID string
	ActorID       string
	ResourceType  string
	ResourceID    string
}

// ListAudits retrieves the latest audit entries from the server, limited to the specified number.
func (c *Client) ListAudits(ctx context.Context, opts ListAuditsOpts) ([]core.AuditEntry, string, error) {
	ub := c.url().setPath(api.ListAuditsRoute)
	if opts.Limit > 0 {
		ub = ub.addQueryParam("limit", opts.Limit)
	}
	if opts.CorrelationID != "" {
		ub = ub.addQueryParam("correlation_id", opts.CorrelationID)
	}
	if opts.ActorID != "" {
		ub = ub.addQueryParam("actor_id", opts.ActorID)
	}
	if opts.ResourceType != "" {
		ub = ub.addQueryParam("resource_type", opts.ResourceType)
	}
	if opts.ResourceID != "" {
		ub = ub.addQueryParam("resource_id", opts.ResourceID)
	}
	var resp []core.AuditEntry
	correlation, err := c.get(ctx, ub.build(), &resp)
	return resp, correlation, err
}
