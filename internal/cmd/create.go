package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/ssm-commander/internal/aws"
	"github.com/runger/ssm-commander/internal/prompt"
	"github.com/runger/ssm-commander/internal/ssm"
)

var (
	createProfile string
	createRegion  string
)

// Columns of the EC2 instance table.
var (
	instanceFields = []string{"Name", "InstanceId", "State", "InstanceType", "PublicIpAddress", "PrivateIpAddress"}
	instanceLabels = []string{"Tag:Name", "Instance Id", "State", "Type", "Public IP", "Private IP"}
)

var createCmd = &cobra.Command{
	Use:     "create",
	Short:   "Create and save a new SSM command interactively",
	GroupID: groupCore,
	Long: `Create and save a new SSM command with an interactive interface.

You pick an AWS CLI profile, a region (when the profile has none), the
kind of command and an EC2 instance from a searchable table, then name
the command so it can be run later with "ssm-commander run <name>".

Examples:
  ssm-commander create
  ssm-commander create --profile prod
  ssm-commander create --profile prod --region eu-west-1`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createProfile, "profile", "", "AWS CLI profile to use; skips the profile prompt")
	createCmd.Flags().StringVar(&createRegion, "region", "", "AWS region to use; skips the region prompt and overrides the profile's region")
}

func runCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	c, err := a.createCommand(ctx, createProfile, createRegion)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "\n\n== Review your new \"SSM Command\" ==")
	ssm.Print(a.out, c)
	fmt.Fprintln(a.out)

	save, err := a.confirm(ctx, "Save this command?", true)
	if err != nil {
		return err
	}
	runNow, err := a.confirm(ctx, "Execute this command now?", true)
	if err != nil {
		return err
	}

	if save {
		if err := a.commands.Add(*c); err != nil {
			return fmt.Errorf("failed to save command: %w", err)
		}
		a.logger.Info("command saved", "command", c.Name, "type", c.Type)
		fmt.Fprintf(a.out, "%s✔%s Saved SSM Command %q to %s\n", colorGreen, colorReset, c.Name, a.commands.Path())
	}
	if runNow {
		return a.execute(ctx, c)
	}
	return nil
}

// createCommand walks the user through every field of a new command.
func (a *app) createCommand(ctx context.Context, profileFlag, regionFlag string) (*ssm.Command, error) {
	profile, err := a.chooseProfile(ctx, profileFlag)
	if err != nil {
		return nil, notInstalled(err)
	}

	if regionFlag != "" {
		if !aws.ValidRegion(regionFlag) {
			return nil, fmt.Errorf("invalid region %q", regionFlag)
		}
		profile.Region = regionFlag
	}
	if profile.Region == "" {
		profile.Region, err = prompt.Search(ctx, prompt.SearchConfig[string]{
			Message:  "Select an AWS region",
			Source:   prompt.StringSource(aws.Regions()),
			PageSize: a.pageSize(),
			Theme:    &a.theme,
		}, a.prompts...)
		if err != nil {
			return nil, err
		}
	}

	kind, err := selectOne(ctx, a, `Select the type of "Command" you would like to create`, commandTypeChoices())
	if err != nil {
		return nil, err
	}

	instances, err := a.aws.Instances(ctx, profile.Name, profile.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to list EC2 instances: %w", err)
	}
	if len(instances) == 0 {
		return nil, fmt.Errorf("no EC2 instances found for profile %q in %s", profile.Name, profile.Region)
	}
	instance, err := searchTable(ctx, a, "Select an EC2 instance", instanceFields, instanceLabels, instances)
	if err != nil {
		return nil, err
	}

	c := &ssm.Command{
		ProfileName:  profile.Name,
		Region:       profile.Region,
		InstanceName: instance.Name,
		InstanceID:   instance.InstanceID,
		Type:         kind,
	}
	if c.Options, err = a.commandOptions(ctx, kind); err != nil {
		return nil, err
	}

	fmt.Fprintln(a.out)
	name, err := a.input(ctx, prompt.InputConfig{
		Message:     `Please enter a "Name" for this command`,
		Description: "Name will be used to identify and run commands later.",
		Default:     defaultCommandName(c),
		Required:    true,
		Validate:    a.validateName,
	})
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(name)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (a *app) chooseProfile(ctx context.Context, flag string) (*aws.Profile, error) {
	names, err := a.aws.ProfileNames(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.New("no AWS profiles found")
	}

	name := flag
	if name != "" {
		if !slices.Contains(names, name) {
			return nil, fmt.Errorf("profile %q not found", name)
		}
	} else {
		choices := make([]prompt.Item[string], len(names))
		for i, n := range names {
			choices[i] = prompt.Item[string]{Value: n}
		}
		if name, err = selectOne(ctx, a, "Select an AWS CLI profile", choices); err != nil {
			return nil, err
		}
	}

	return a.aws.Profile(ctx, name)
}

func commandTypeChoices() []prompt.Item[ssm.Type] {
	return []prompt.Item[ssm.Type]{
		{
			Name:        "Connect",
			Value:       ssm.TypeConnect,
			Description: "Connect to an EC2 instance's shell environment.",
		},
		{
			Name:  "Port Forward",
			Value: ssm.TypePortForward,
			Description: "Establish a port forwarding connection to an EC2 instance. This command allows you to forward a port " +
				"from a service running on the EC2 instance to your local machine, or use the instance as a BastionHost to " +
				"forward a port from another server to your local machine.",
		},
		{
			Name:  "File Transfer",
			Value: ssm.TypeFileTransfer,
			Description: `Transfer files between your local machine and an EC2 instance using "scp". Unlike other commands, ` +
				"it will prompt you interactively to enter the file paths.",
		},
	}
}

// commandOptions asks for the attributes specific to kind.
func (a *app) commandOptions(ctx context.Context, kind ssm.Type) (ssm.Options, error) {
	switch kind {
	case ssm.TypePortForward:
		host, err := a.input(ctx, prompt.InputConfig{
			Message:     "Enter Remote Service's Host",
			Description: `the Host of the remote service to be tunneled. If the service is running on this EC2 instance, "localhost" is also allowed.`,
			Default:     "localhost",
			Required:    true,
		})
		if err != nil {
			return nil, err
		}
		remotePort, err := a.input(ctx, prompt.InputConfig{
			Message:     "Enter Remote Service's Port number",
			Description: "the Port number of the remote service to be tunneled.",
			Required:    true,
			Validate:    prompt.ValidatePort,
		})
		if err != nil {
			return nil, err
		}
		localPort, err := a.input(ctx, prompt.InputConfig{
			Message:     "Enter Local Machine's Port number",
			Description: "the Port number on the local machine to be tunneled.",
			Required:    true,
			Validate:    prompt.ValidatePort,
		})
		if err != nil {
			return nil, err
		}
		return &ssm.PortForward{
			RemoteHost: host,
			RemotePort: strings.TrimSpace(remotePort),
			LocalPort:  strings.TrimSpace(localPort),
		}, nil

	case ssm.TypeFileTransfer:
		sshPort, err := a.input(ctx, prompt.InputConfig{
			Message:     "Enter Port Number Used by the EC2 Instance's SSH(SCP) Service",
			Description: "File Transfer command uses the SSH(SCP) service of the EC2 instance.",
			Default:     "22",
			Required:    true,
			Validate:    prompt.ValidatePort,
		})
		if err != nil {
			return nil, err
		}
		return &ssm.FileTransfer{SSHPort: strings.TrimSpace(sshPort)}, nil

	default:
		return nil, nil
	}
}

func defaultCommandName(c *ssm.Command) string {
	return fmt.Sprintf("%s-%s-%s", c.ProfileName, c.Type, c.InstanceName)
}

var errNameTaken = errors.New("Command name already exists. Please choose another.") //nolint:staticcheck // ST1005: user-facing text

// validateName rejects blank names and names already saved. A blank name
// fails with an empty message so the prompt shows its generic text.
func (a *app) validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("")
	}
	exists, err := a.commands.Exists(name)
	if err != nil {
		return err
	}
	if exists {
		return errNameTaken
	}
	return nil
}
