package command

import (
	"errors"
	"os"

	"github.com/Vidhant007/docker-lambda-aws/pkg/config"
	"github.com/Vidhant007/docker-lambda-aws/pkg/policy"
	"github.com/Vidhant007/docker-lambda-aws/pkg/synth"
	"github.com/Vidhant007/docker-lambda-aws/pkg/term"
	"github.com/spf13/cobra"
)

var errImageAssets = errors.New("deploy needs ECR image URIs for both functions: set imageUri in the config file or DLA_PREPROCESSOR_IMAGE and DLA_EMBEDDER_IMAGE, or use `cdk deploy` to build the images from their directories")

// synthesize renders the stack into outdir, or into a temporary directory when outdir is empty.
func synthesize(cfg config.Config, outdir string) (*synth.Result, error) {
	if outdir == "" {
		tmp, err := os.MkdirTemp("", "dla-cdk-out-")
		if err != nil {
			return nil, err
		}
		if term.DoDebug() {
			term.Debug("Keeping cloud assembly in", tmp)
		} else {
			defer os.RemoveAll(tmp)
		}
		outdir = tmp
	}
	return synth.Synth(cfg, outdir)
}

// warnMutableTags warns about images referenced by tag. Lambda resolves the tag to a digest when the
// function is updated, so pushing the same tag again does not roll out a new image.
func warnMutableTags(cfg config.Config) {
	for _, f := range cfg.Functions() {
		ref, err := config.ParseImageURI(f.ImageURI)
		if err != nil || ref.IsDigest() {
			continue
		}
		term.Warnf("%s uses the mutable tag %q; redeploying after pushing the same tag does not update the function", f.Name, ref.TagOrDigest)
	}
}

func printReport(report policy.Report) {
	for _, f := range report {
		switch f.Severity {
		case policy.SeverityError:
			term.Error(f)
		case policy.SeverityWarning:
			term.Warn(f)
		default:
			term.Info(f)
		}
	}
	term.Infof("%d error(s), %d warning(s), %d info", report.Count(policy.SeverityError), report.Count(policy.SeverityWarning), report.Count(policy.SeverityInfo))
}

func checkPolicy(template []byte, strict bool) error {
	report, err := policy.Check(template)
	if err != nil {
		return err
	}
	printReport(report)
	return report.Err(strict)
}

var synthCmd = &cobra.Command{
	Use:   "synth",
	Args:  cobra.NoArgs,
	Short: "Print the CloudFormation template of the stack",
	RunE: func(cmd *cobra.Command, args []string) error {
		outdir, _ := cmd.Flags().GetString("output")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		result, err := synthesize(cfg, outdir)
		if err != nil {
			return err
		}
		if outdir != "" {
			term.Debug("Cloud assembly written to", result.AssemblyDir)
		}
		_, err = term.Println(string(result.Template))
		return err
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Args:  cobra.NoArgs,
	Short: "Check the synthesized template for insecure settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		result, err := synthesize(cfg, "")
		if err != nil {
			return err
		}
		return checkPolicy(result.Template, strict)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Args:  cobra.NoArgs,
	Short: "Print the resolved stack configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = term.Print(string(data))
		return err
	},
}

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Args:  cobra.NoArgs,
	Short: "Create or update the stack with CloudFormation",
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.HasImageAssets() {
			return errImageAssets
		}
		warnMutableTags(cfg)
		// Without an account, availability zones are resolved at deploy time
		cfg.Account = ""

		result, err := synthesize(cfg, "")
		if err != nil {
			return err
		}
		if err := checkPolicy(result.Template, strict); err != nil {
			return err
		}

		driver := newDriver(cfg)
		if err := driver.SetUp(cmd.Context(), result.Template); err != nil {
			return err
		}
		term.Info("Stack", driver.StackName(), "deployed")
		return term.Table(driver.Outputs, "Key", "Value")
	},
}

var outputsCmd = &cobra.Command{
	Use:   "outputs",
	Args:  cobra.NoArgs,
	Short: "Show the outputs of the deployed stack",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		driver := newDriver(cfg)
		if err := driver.FillOutputs(cmd.Context()); err != nil {
			return err
		}
		return term.Table(driver.Outputs, "Key", "Value", "Description")
	},
}

var destroyCmd = &cobra.Command{
	Use:     "destroy",
	Aliases: []string{"teardown"},
	Args:    cobra.NoArgs,
	Short:   "Empty the bucket and delete the stack",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return newDriver(cfg).TearDown(cmd.Context())
	},
}
