package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Profile is a usable AWS CLI profile.
type Profile struct {
	Name   string
	Region string // Empty when the profile has no default region
}

// ProfileNames lists the configured AWS CLI profiles.
func (c *Client) ProfileNames(ctx context.Context) ([]string, error) {
	out, err := c.aws(ctx, "configure", "list-profiles")
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// Profile resolves a profile, failing if its credentials cannot be exported.
func (c *Client) Profile(ctx context.Context, name string) (*Profile, error) {
	out, err := c.aws(ctx, "configure", "export-credentials", "--format", "process", "--profile", name)
	if err != nil {
		return nil, fmt.Errorf("invalid AWS CLI profile %s: %w", name, err)
	}
	var creds struct {
		Version int `json:"Version"`
	}
	if err := json.Unmarshal(out, &creds); err != nil {
		return nil, fmt.Errorf("invalid AWS CLI profile %s: %w", name, err)
	}

	// A profile without a region makes "configure get" exit non-zero.
	region, err := c.aws(ctx, "configure", "get", "region", "--profile", name)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return &Profile{Name: name, Region: strings.TrimSpace(string(region))}, nil
}
