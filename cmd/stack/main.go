// Command stack is the CDK app run by `cdk synth` and `cdk deploy` (see cdk.json).
package main

import (
	"log/slog"
	"os"

	"github.com/Vidhant007/docker-lambda-aws/pkg"
	"github.com/Vidhant007/docker-lambda-aws/pkg/config"
	"github.com/Vidhant007/docker-lambda-aws/pkg/logs"
	"github.com/Vidhant007/docker-lambda-aws/pkg/synth"
	"github.com/Vidhant007/docker-lambda-aws/pkg/term"
	"github.com/aws/jsii-runtime-go"
)

func main() {
	if err := run(); err != nil {
		term.Error("Error:", err)
		os.Exit(1)
	}
}

func run() error {
	defer jsii.Close()

	term.SetDebug(pkg.GetenvBool("DLA_DEBUG"))
	slog.SetDefault(logs.NewTermLogger(term.DefaultTerm))

	config.LoadRC(os.Getenv("DLA_STACK"))
	cfg, err := config.Load(pkg.Getenv("DLA_CONFIG", config.DefaultConfigFile))
	if err != nil {
		return err
	}

	// The cdk CLI passes the output directory in CDK_OUTDIR
	app := synth.NewApp("")
	synth.Declare(app, cfg)
	app.Synth(nil)
	return nil
}
