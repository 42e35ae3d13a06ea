package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Vidhant007/docker-lambda-aws/pkg/clouds/aws"
	"github.com/Vidhant007/docker-lambda-aws/pkg/config"
	"github.com/Vidhant007/docker-lambda-aws/pkg/term"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"
)

// selectFunctions maps a function argument to the configured functions. An empty argument or "all" selects both.
func selectFunctions(cfg config.Config, name string) ([]config.Function, error) {
	switch strings.ToLower(name) {
	case "", "all":
		return cfg.Functions(), nil
	case "preprocessor", strings.ToLower(cfg.Preprocessor.Name):
		return []config.Function{cfg.Preprocessor}, nil
	case "embedder", strings.ToLower(cfg.Embedder.Name):
		return []config.Function{cfg.Embedder}, nil
	}
	return nil, fmt.Errorf("unknown function %q: use preprocessor, embedder, %s or %s", name, cfg.Preprocessor.Name, cfg.Embedder.Name)
}

var uploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Args:  cobra.ExactArgs(1),
	Short: "Upload a document to the bucket, which triggers the preprocessor",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("key")
		if key == "" {
			key = filepath.Base(args[0])
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if !cfg.Networked() {
			return errors.New("the minimal revision has no document bucket")
		}

		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		driver := newDriver(cfg)
		if err := driver.FillOutputs(cmd.Context()); err != nil {
			return err
		}
		if driver.BucketName == "" {
			return fmt.Errorf("stack %s has no bucket output", driver.StackName())
		}
		awsCfg, err := driver.LoadConfig(cmd.Context())
		if err != nil {
			return err
		}
		if err := aws.PutObject(cmd.Context(), s3.NewFromConfig(awsCfg), driver.BucketName, key, file); err != nil {
			return err
		}
		term.Infof("Uploaded s3://%s/%s", driver.BucketName, key)
		return nil
	},
}

var invokeCmd = &cobra.Command{
	Use:   "invoke FUNCTION [PAYLOAD]",
	Args:  cobra.RangeArgs(1, 2),
	Short: "Invoke the preprocessor or the embedder with a JSON payload",
	RunE: func(cmd *cobra.Command, args []string) error {
		async, _ := cmd.Flags().GetBool("async")
		payload := []byte("{}")
		if len(args) > 1 {
			payload = []byte(args[1])
		}
		if !json.Valid(payload) {
			return fmt.Errorf("payload is not valid JSON: %s", payload)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if args[0] == "all" {
			return errors.New("invoke needs a single function")
		}
		functions, err := selectFunctions(cfg, args[0])
		if err != nil {
			return err
		}

		driver := newDriver(cfg)
		awsCfg, err := driver.LoadConfig(cmd.Context())
		if err != nil {
			return err
		}
		name := functions[0].Name
		result, err := aws.Invoke(cmd.Context(), lambda.NewFromConfig(awsCfg), name, payload, async)
		if err != nil {
			return err
		}
		printInvokeResult(name, result)
		if result.FunctionError != "" {
			return fmt.Errorf("%s failed: %s", name, result.FunctionError)
		}
		return nil
	},
}

func printInvokeResult(name string, result *aws.InvokeResult) {
	term.Infof("%s returned status %d", name, result.StatusCode)
	if result.Log != "" {
		term.Debug(result.Log)
	}
	if len(result.Payload) > 0 {
		term.Println(string(result.Payload))
	}
}
