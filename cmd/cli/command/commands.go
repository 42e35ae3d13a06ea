package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/Vidhant007/docker-lambda-aws/pkg"
	"github.com/Vidhant007/docker-lambda-aws/pkg/clouds/aws"
	"github.com/Vidhant007/docker-lambda-aws/pkg/clouds/aws/cfn"
	"github.com/Vidhant007/docker-lambda-aws/pkg/config"
	"github.com/Vidhant007/docker-lambda-aws/pkg/term"
	"github.com/spf13/cobra"
)

var (
	colorMode  = ColorAuto
	configPath string
	doDebug    bool
	region     string
	stackName  string
)

func Execute(ctx context.Context) error {
	if err := RootCmd.ExecuteContext(ctx); err != nil {
		if !(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			term.Error("Error:", err)
		}

		if snf := new(cfn.ErrStackNotFound); errors.As(err, &snf) {
			printHint("The stack has not been deployed yet. To deploy it, do:", "deploy")
		}
		return exitCodeOf(err)
	}

	// Repeat the warnings once the output of the command has scrolled past them
	if term.IsTerminal() && term.HadWarnings() {
		term.Println("\nWarnings:")
		term.FlushWarnings()
	}
	return nil
}

func printHint(hint, cmd string) {
	term.Printf("\n%s\n\n  %s %s\n\n", hint, RootCmd.Name(), cmd)
}

func SetupCommands(version string) {
	RootCmd.Version = version

	RootCmd.PersistentFlags().Var(&colorMode, "color", fmt.Sprintf(`colorize output; one of %v`, allColorModes))
	RootCmd.PersistentFlags().BoolVar(&doDebug, "debug", pkg.GetenvBool("DLA_DEBUG"), "debug logging for troubleshooting the CLI")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", pkg.Getenv("DLA_CONFIG", config.DefaultConfigFile), "path of the stack configuration file")
	RootCmd.PersistentFlags().StringVarP(&stackName, "stack", "s", "", "override the CloudFormation stack name")
	RootCmd.PersistentFlags().StringVar(&region, "region", "", "override the AWS region")

	// Synth/check commands
	synthCmd.Flags().StringP("output", "o", "", "directory for the cloud assembly (default: temporary)")
	RootCmd.AddCommand(synthCmd)
	checkCmd.Flags().Bool("strict", false, "fail on warnings as well as errors")
	RootCmd.AddCommand(checkCmd)
	RootCmd.AddCommand(configCmd)

	// Stack commands
	deployCmd.Flags().Bool("strict", false, "refuse to deploy when the policy check reports warnings")
	RootCmd.AddCommand(deployCmd)
	RootCmd.AddCommand(outputsCmd)
	RootCmd.AddCommand(destroyCmd)

	// Function commands
	uploadCmd.Flags().StringP("key", "k", "", "object key (default: the file name)")
	RootCmd.AddCommand(uploadCmd)
	invokeCmd.Flags().Bool("async", false, "invoke asynchronously and do not wait for the result")
	RootCmd.AddCommand(invokeCmd)
	logsCmd.Flags().Duration("since", defaultLogsSince, "show logs newer than this duration")
	logsCmd.Flags().IntP("tail", "n", 0, "number of recent events to show (0: all)")
	logsCmd.Flags().BoolP("follow", "f", false, "follow the logs")
	RootCmd.AddCommand(logsCmd)

	RootCmd.AddCommand(versionCmd)
}

var RootCmd = &cobra.Command{
	SilenceUsage:  true,
	SilenceErrors: true,
	Use:           "dla",
	Short:         "Synthesize, check and deploy the document preprocessing and embedding Lambda stack.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		term.SetDebug(doDebug)

		switch colorMode {
		case ColorNever:
			term.ForceColor(false)
		case ColorAlways:
			term.ForceColor(true)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Args:  cobra.NoArgs,
	Short: "Get version information for the CLI",
	RunE: func(cmd *cobra.Command, args []string) error {
		term.Println(RootCmd.Version)
		return nil
	},
}

// loadConfig resolves the stack configuration from rc files, the config file, the environment and flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	config.LoadRC(pkg.Getenv("DLA_STACK", stackName))

	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("stack") {
		cfg.Stack = stackName
	}
	if cmd.Flags().Changed("region") {
		cfg.Region = region
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	term.Debugf("Using stack %s (%s revision) in region %q", cfg.Stack, cfg.Revision, cfg.Region)
	return cfg, nil
}

func newDriver(cfg config.Config) *cfn.AwsCfn {
	driver := cfn.New(cfg.Stack, aws.Region(cfg.Region))
	driver.TerminationProtection = cfg.TerminationProtection
	return driver
}

