package config

import (
	"fmt"
	"regexp"
	"strings"
)

// ImageRef is a parsed ECR image URI.
type ImageRef struct {
	Account     string
	Region      string
	Partition   string
	Repository  string
	TagOrDigest string
}

var ecrImageRe = regexp.MustCompile(`^(\d{12})\.dkr\.ecr\.([a-z0-9-]+)\.amazonaws\.com(\.cn)?/([a-z0-9][a-z0-9._/-]*?)(?::([\w][\w.-]{0,127})|@(sha256:[a-f0-9]{64}))?$`)

// ParseImageURI parses <account>.dkr.ecr.<region>.amazonaws.com/<repo>[:tag|@digest].
// The tag defaults to "latest".
func ParseImageURI(uri string) (ImageRef, error) {
	m := ecrImageRe.FindStringSubmatch(uri)
	if m == nil {
		return ImageRef{}, fmt.Errorf("not an ECR image URI: %q", uri)
	}
	ref := ImageRef{
		Account:     m[1],
		Region:      m[2],
		Partition:   "aws",
		Repository:  m[4],
		TagOrDigest: "latest",
	}
	if m[3] != "" {
		ref.Partition = "aws-cn"
	}
	if m[5] != "" {
		ref.TagOrDigest = m[5]
	} else if m[6] != "" {
		ref.TagOrDigest = m[6]
	}
	return ref, nil
}

func (r ImageRef) RepositoryArn() string {
	return fmt.Sprintf("arn:%s:ecr:%s:%s:repository/%s", r.Partition, r.Region, r.Account, r.Repository)
}

func (r ImageRef) IsDigest() bool {
	return strings.HasPrefix(r.TagOrDigest, "sha256:")
}
