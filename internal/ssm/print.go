package ssm

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

// Print writes the human-readable review block for cmd.
func Print(w io.Writer, cmd *Command) {
	v := valueStyle.Render
	fmt.Fprintf(w, "✍️ Command Name:    %s\n", v(cmd.Name))
	fmt.Fprintf(w, "🤵 AWS CLI Profile: %s\n", v(cmd.ProfileName))
	fmt.Fprintf(w, "🌏 AWS Region:      %s\n", v(cmd.Region))
	fmt.Fprintf(w, "🖥️ EC2 Instance:    %s\n", v(fmt.Sprintf("%s (%s)", cmd.InstanceName, cmd.InstanceID)))
	fmt.Fprintf(w, "🚀 Command Type:    %s\n", v(string(cmd.Type)))
	switch o := cmd.Options.(type) {
	case *PortForward:
		fmt.Fprintf(w, "    👉 Remote Service: %s\n", v(fmt.Sprintf("%s (port %s)", o.RemoteHost, o.RemotePort)))
		fmt.Fprintf(w, "    👉 Local Port:     %s\n", v(o.LocalPort))
	case *FileTransfer:
		fmt.Fprintf(w, "    👉 EC2 SSH Port: %s\n", v(o.SSHPort))
	}
}
