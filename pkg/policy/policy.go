package policy

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/awslabs/goformation/v7"
	"github.com/awslabs/goformation/v7/cloudformation"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

const (
	RuleOpenCacheIngress  = "open-cache-ingress"
	RuleWildcardIAM       = "wildcard-iam"
	RulePublicFunctionURL = "public-function-url"
	RuleOpenCors          = "open-cors"
	RuleDestroyBucket     = "destroy-bucket"
	RulePlaintextCache    = "plaintext-cache"
)

type Finding struct {
	Rule      string
	Severity  Severity
	LogicalID string
	Message   string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", f.Severity, f.Rule, f.LogicalID, f.Message)
}

type Report []Finding

var ErrCheckFailed = errors.New("policy check failed")

func (r Report) Count(severity Severity) int {
	n := 0
	for _, f := range r {
		if f.Severity == severity {
			n++
		}
	}
	return n
}

// Err returns an error if the report has errors, or warnings when strict.
func (r Report) Err(strict bool) error {
	var errs []error
	for _, f := range r {
		if f.Severity == SeverityError || (strict && f.Severity == SeverityWarning) {
			errs = append(errs, errors.New(f.String()))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w with %d finding(s): %w", ErrCheckFailed, len(errs), errors.Join(errs...))
}

type rule func(*cloudformation.Template) []Finding

var rules = []rule{
	checkCacheIngress,
	checkWildcardIAM,
	checkFunctionURLs,
	checkBuckets,
	checkCacheEncryption,
}

// Check parses a JSON or YAML CloudFormation template and runs all rules.
func Check(template []byte) (Report, error) {
	var tmpl *cloudformation.Template
	var err error
	if trimmed := strings.TrimSpace(string(template)); strings.HasPrefix(trimmed, "{") {
		tmpl, err = goformation.ParseJSON(template)
	} else {
		tmpl, err = goformation.ParseYAML(template)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return CheckTemplate(tmpl), nil
}

func CheckTemplate(tmpl *cloudformation.Template) Report {
	var report Report
	for _, rule := range rules {
		report = append(report, rule(tmpl)...)
	}
	slices.SortStableFunc(report, func(a, b Finding) int {
		return cmp.Or(
			cmp.Compare(b.Severity, a.Severity),
			cmp.Compare(a.Rule, b.Rule),
			cmp.Compare(a.LogicalID, b.LogicalID),
		)
	})
	return report
}
