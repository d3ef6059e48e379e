// Package ssm models saved SSM session commands and turns them into the
// aws/scp command lines that open the session.
package ssm

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type identifies the kind of session a command opens.
type Type string

const (
	TypeConnect      Type = "connect"
	TypePortForward  Type = "port-forward"
	TypeFileTransfer Type = "file-transfer"
)

// Types lists every supported command type in menu order.
var Types = []Type{TypeConnect, TypePortForward, TypeFileTransfer}

// ErrUnsupportedType is returned for a command type outside Types.
var ErrUnsupportedType = errors.New("unsupported command type")

// Options is the type-specific payload of a Command. Connect commands carry none.
type Options interface {
	commandType() Type
}

// PortForward tunnels RemoteHost:RemotePort through the instance to LocalPort.
type PortForward struct {
	RemoteHost string
	RemotePort string
	LocalPort  string
}

func (*PortForward) commandType() Type { return TypePortForward }

// FileTransfer copies files with scp over an SSM-proxied SSH connection.
type FileTransfer struct {
	SSHPort string
}

func (*FileTransfer) commandType() Type { return TypeFileTransfer }

// Command is a saved, named SSM session.
type Command struct {
	Name         string
	ProfileName  string
	Region       string
	InstanceName string
	InstanceID   string
	Type         Type
	Options      Options // nil, *PortForward or *FileTransfer according to Type
}

// PortForward returns the port-forward payload, or nil.
func (c *Command) PortForward() *PortForward {
	pf, _ := c.Options.(*PortForward)
	return pf
}

// FileTransfer returns the file-transfer payload, or nil.
func (c *Command) FileTransfer() *FileTransfer {
	ft, _ := c.Options.(*FileTransfer)
	return ft
}

// Validate checks that the payload matches the type.
func (c *Command) Validate() error {
	if c.Name == "" {
		return errors.New("command name is required")
	}
	if c.InstanceID == "" {
		return fmt.Errorf("command %q: instance id is required", c.Name)
	}
	switch c.Type {
	case TypeConnect:
		if c.Options != nil {
			return fmt.Errorf("command %q: connect takes no options", c.Name)
		}
	case TypePortForward, TypeFileTransfer:
		if c.Options == nil || c.Options.commandType() != c.Type {
			return fmt.Errorf("command %q: missing %s options", c.Name, c.Type)
		}
	default:
		return fmt.Errorf("command %q: %w: %q", c.Name, ErrUnsupportedType, c.Type)
	}
	return nil
}

// commandJSON is the flat on-disk shape shared with earlier releases.
type commandJSON struct {
	Name         string `json:"name"`
	ProfileName  string `json:"profileName"`
	Region       string `json:"region"`
	InstanceName string `json:"instanceName"`
	InstanceID   string `json:"instanceId"`
	CommandType  Type   `json:"commandType"`
	RemoteHost   string `json:"remoteHost,omitempty"`
	RemotePort   string `json:"remotePort,omitempty"`
	LocalPort    string `json:"localPort,omitempty"`
	SSHPort      string `json:"sshPort,omitempty"`
}

// MarshalJSON flattens the payload into the command object.
func (c Command) MarshalJSON() ([]byte, error) {
	out := commandJSON{
		Name:         c.Name,
		ProfileName:  c.ProfileName,
		Region:       c.Region,
		InstanceName: c.InstanceName,
		InstanceID:   c.InstanceID,
		CommandType:  c.Type,
	}
	switch o := c.Options.(type) {
	case *PortForward:
		out.RemoteHost, out.RemotePort, out.LocalPort = o.RemoteHost, o.RemotePort, o.LocalPort
	case *FileTransfer:
		out.SSHPort = o.SSHPort
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the payload from the flat fields selected by commandType.
func (c *Command) UnmarshalJSON(data []byte) error {
	var in commandJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*c = Command{
		Name:         in.Name,
		ProfileName:  in.ProfileName,
		Region:       in.Region,
		InstanceName: in.InstanceName,
		InstanceID:   in.InstanceID,
		Type:         in.CommandType,
	}
	switch in.CommandType {
	case TypePortForward:
		c.Options = &PortForward{RemoteHost: in.RemoteHost, RemotePort: in.RemotePort, LocalPort: in.LocalPort}
	case TypeFileTransfer:
		c.Options = &FileTransfer{SSHPort: in.SSHPort}
	}
	return nil
}

// Field implements table.Record so saved commands can be listed in a table.
func (c *Command) Field(name string) string {
	switch name {
	case "name":
		return c.Name
	case "profileName":
		return c.ProfileName
	case "region":
		return c.Region
	case "instanceName":
		return c.InstanceName
	case "instanceId":
		return c.InstanceID
	case "commandType":
		return string(c.Type)
	}
	return ""
}
