package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jmespath/go-jmespath"
)

// instanceProjection flattens describe-instances output to one object per instance.
const instanceProjection = "Reservations[].Instances[].{" +
	"InstanceId: InstanceId, " +
	"InstanceType: InstanceType, " +
	"PrivateIpAddress: PrivateIpAddress, " +
	"PublicIpAddress: PublicIpAddress, " +
	"State: State.Name, " +
	"Name: Tags[?Key=='Name'].Value | [0]}"

var instanceQuery = jmespath.MustCompile(instanceProjection)

// Instance is an EC2 instance as shown in the selection table.
type Instance struct {
	InstanceID       string `json:"InstanceId"`
	InstanceType     string `json:"InstanceType"`
	PrivateIPAddress string `json:"PrivateIpAddress"`
	PublicIPAddress  string `json:"PublicIpAddress"`
	State            string `json:"State"`
	Name             string `json:"Name"`
}

// Field implements table.Record.
func (i *Instance) Field(name string) string {
	switch name {
	case "Name":
		return i.Name
	case "InstanceId":
		return i.InstanceID
	case "State":
		return i.State
	case "InstanceType":
		return i.InstanceType
	case "PublicIpAddress":
		return i.PublicIPAddress
	case "PrivateIpAddress":
		return i.PrivateIPAddress
	}
	return ""
}

// Instances lists the EC2 instances visible to profile in region, sorted by
// Name. An empty region uses the profile's default.
func (c *Client) Instances(ctx context.Context, profile, region string) ([]*Instance, error) {
	args := []string{"ec2", "describe-instances", "--output", "json", "--no-cli-pager", "--profile", profile}
	if region != "" {
		args = append(args, "--region", region)
	}
	out, err := c.aws(ctx, args...)
	if err != nil {
		return nil, err
	}
	return parseInstances(out)
}

func parseInstances(out []byte) ([]*Instance, error) {
	var doc any
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse describe-instances output: %w", err)
	}
	projected, err := instanceQuery.Search(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to project instances: %w", err)
	}

	// Round-trip through JSON to land the projection in typed fields.
	data, err := json.Marshal(projected)
	if err != nil {
		return nil, err
	}
	var instances []*Instance
	if err := json.Unmarshal(data, &instances); err != nil {
		return nil, fmt.Errorf("failed to decode instances: %w", err)
	}

	sort.SliceStable(instances, func(a, b int) bool {
		return instances[a].Name < instances[b].Name
	})
	return instances, nil
}
