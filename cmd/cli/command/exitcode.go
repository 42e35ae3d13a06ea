package command

import (
	"errors"
	"fmt"

	"github.com/Vidhant007/docker-lambda-aws/pkg/policy"
)

// ExitCode is returned by Execute; main exits with its value.
type ExitCode int

const (
	ExitFailure      ExitCode = 1
	ExitPolicyFailed ExitCode = 2 // the template was rejected by `check` or `deploy`
)

func (e ExitCode) Error() string {
	return fmt.Sprintf("exit code %d", e)
}

func exitCodeOf(err error) ExitCode {
	if errors.Is(err, policy.ErrCheckFailed) {
		return ExitPolicyFailed
	}
	return ExitFailure
}
