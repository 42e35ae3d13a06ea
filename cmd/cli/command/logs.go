package command

import (
	"errors"
	"strings"
	"time"

	"github.com/Vidhant007/docker-lambda-aws/pkg/clouds/aws"
	"github.com/Vidhant007/docker-lambda-aws/pkg/clouds/aws/cw"
	"github.com/Vidhant007/docker-lambda-aws/pkg/config"
	"github.com/Vidhant007/docker-lambda-aws/pkg/term"
	"github.com/aws/smithy-go/ptr"
	"github.com/spf13/cobra"
)

const defaultLogsSince = time.Hour

func logGroups(functions []config.Function) []string {
	groups := make([]string, len(functions))
	for i, f := range functions {
		groups[i] = cw.LambdaLogGroupName(f.Name)
	}
	return groups
}

func printLogEvent(e cw.LogEvent) {
	ts := time.UnixMilli(ptr.ToInt64(e.Timestamp)).Local().Format(time.RFC3339)
	term.Printc(term.BrightCyan, ts, " ")
	msg := ptr.ToString(e.Message)
	if !term.StdoutCanColor() {
		msg = term.StripAnsi(msg)
	}
	term.Println(functionOf(ptr.ToString(e.LogGroupIdentifier)), msg)
}

// functionOf returns the function name of a Lambda log group name or ARN.
func functionOf(logGroup string) string {
	return logGroup[strings.LastIndexByte(logGroup, '/')+1:]
}

// logGroupARNs builds the log group ARNs that live tail needs; the account must be known.
func logGroupARNs(a aws.Aws, groups []string) ([]string, error) {
	if a.AccountID == "" {
		return nil, errors.New("failed to resolve the AWS account ID, which --follow needs: check your credentials with `aws sts get-caller-identity`")
	}
	arns := make([]string, len(groups))
	for i, group := range groups {
		arns[i] = cw.LogGroupARN(a.Region, a.AccountID, group)
	}
	return arns, nil
}

var logsCmd = &cobra.Command{
	Use:   "logs [FUNCTION]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Show the CloudWatch logs of the functions",
	RunE: func(cmd *cobra.Command, args []string) error {
		since, _ := cmd.Flags().GetDuration("since")
		tail, _ := cmd.Flags().GetInt("tail")
		follow, _ := cmd.Flags().GetBool("follow")
		if since <= 0 {
			return errors.New("--since must be positive")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		var name string
		if len(args) > 0 {
			name = args[0]
		}
		functions, err := selectFunctions(cfg, name)
		if err != nil {
			return err
		}
		groups := logGroups(functions)

		client, err := cw.NewCloudWatchLogsClient(cmd.Context(), aws.Region(cfg.Region))
		if err != nil {
			return err
		}

		for e, err := range cw.QueryLogGroups(cmd.Context(), client, time.Now().Add(-since), time.Time{}, tail, groups...) {
			if err != nil {
				return err
			}
			printLogEvent(e)
		}
		if !follow {
			return nil
		}

		account := aws.Aws{Region: aws.Region(cfg.Region)}
		if _, err := account.LoadConfig(cmd.Context()); err != nil {
			return err
		}
		arns, err := logGroupARNs(account, groups)
		if err != nil {
			return err
		}
		term.Info("Following logs; press Ctrl+C to stop")
		events, err := cw.TailLogGroups(cmd.Context(), client, arns...)
		if err != nil {
			return err
		}
		for batch, err := range events {
			if err != nil {
				return err
			}
			for _, e := range batch {
				printLogEvent(e)
			}
		}
		return nil
	},
}
