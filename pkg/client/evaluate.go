package client

import (
	"context"

	"github.com/doorman-ac/doorman/internal/api"
	"github.com/doorman-ac/doorman/internal/core"
	"github.com/doorman-ac/doorman/internal/service"
)

// Evaluate requests an access decision from the server.
func (c *Client) Evaluate(
	ctx context.Context,
	req service.EvaluateRequest,
) (*core.EvaluationResult, string, error) {
	var result core.EvaluationResult
	correlation, err := c.post(ctx, c.url().
		setPath(api.EvaluateRoute).
		build(), req, &result)
	if err != nil {
		return nil, correlation, err
	}
	return &result, correlation, nil
}

// Explain runs an evaluation (or replays a past one) and returns the full
// trace. Requires an admin session.
func (c *Client) Explain(
	ctx context.Context,
	req service.ExplainRequest,
) (*service.ExplainResponse, string, error) {
	var resp service.ExplainResponse
	correlation, err := c.post(ctx, c.url().
		setPath(api.ExplainRoute).
		build(), req, &resp)
	if err != nil {
		return nil, correlation, err
	}
	return &resp, correlation, nil
}
