package ssm

import (
	"fmt"
	"strings"
)

// Direction of a file transfer.
type Direction string

const (
	Upload   Direction = "upload"
	Download Direction = "download"
)

// DefaultTransferUser is the login used when none is given.
const DefaultTransferUser = "ec2-user"

// Transfer holds the per-run operands of a file-transfer command.
type Transfer struct {
	Direction  Direction
	LocalPath  string
	RemotePath string
	User       string // Defaults to DefaultTransferUser
}

// Build returns the command line that opens the session described by cmd.
// goos selects the shell used for the scp proxy command.
func Build(cmd *Command, goos string) (string, error) {
	session := startSession(cmd)
	switch cmd.Type {
	case TypeConnect:
		return session, nil

	case TypePortForward:
		pf := cmd.PortForward()
		if pf == nil {
			return "", fmt.Errorf("command %q: missing port-forward options", cmd.Name)
		}
		return fmt.Sprintf(`%s --document-name AWS-StartPortForwardingSessionToRemoteHost --parameters host="%s",portNumber="%s",localPortNumber="%s"`,
			session, pf.RemoteHost, pf.RemotePort, pf.LocalPort), nil

	case TypeFileTransfer:
		ft := cmd.FileTransfer()
		if ft == nil {
			return "", fmt.Errorf("command %q: missing file-transfer options", cmd.Name)
		}
		shell := "sh -c"
		if goos == "windows" {
			shell = "powershell -Command"
		}
		return fmt.Sprintf(`scp -o ProxyCommand="%s '%s --document-name AWS-StartSSHSession --parameters portNumber=%s'"`,
			shell, session, ft.SSHPort), nil

	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, cmd.Type)
	}
}

// BuildTransfer returns the scp command line for one file-transfer run.
func BuildTransfer(cmd *Command, goos string, t Transfer) (string, error) {
	if cmd.Type != TypeFileTransfer {
		return "", fmt.Errorf("command %q is %s, not %s", cmd.Name, cmd.Type, TypeFileTransfer)
	}
	if t.LocalPath == "" || t.RemotePath == "" {
		return "", fmt.Errorf("command %q: local and remote paths are required", cmd.Name)
	}
	base, err := Build(cmd, goos)
	if err != nil {
		return "", err
	}

	user := t.User
	if user == "" {
		user = DefaultTransferUser
	}
	local := quote(t.LocalPath)
	remote := quote(fmt.Sprintf("%s@%s:%s", user, cmd.InstanceID, t.RemotePath))

	switch t.Direction {
	case Upload:
		return base + " " + local + " " + remote, nil
	case Download:
		return base + " " + remote + " " + local, nil
	default:
		return "", fmt.Errorf("unknown transfer direction %q", t.Direction)
	}
}

func startSession(cmd *Command) string {
	var b strings.Builder
	b.WriteString("aws ssm start-session --profile ")
	b.WriteString(cmd.ProfileName)
	if cmd.Region != "" {
		b.WriteString(" --region ")
		b.WriteString(cmd.Region)
	}
	b.WriteString(" --target ")
	b.WriteString(cmd.InstanceID)
	return b.String()
}

// quote wraps s in single quotes when it would otherwise split.
func quote(s string) string {
	if !strings.ContainsAny(s, " \t'\"\\$`") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
