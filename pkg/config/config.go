package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/Vidhant007/docker-lambda-aws/pkg"
	"go.yaml.in/yaml/v3"
)

type Revision string

const (
	RevisionMinimal   Revision = "minimal"   // role, functions and URLs only
	RevisionNetworked Revision = "networked" // adds VPC, cache, bucket and notifications
)

type RoleMode string

const (
	RolesShared      RoleMode = "shared"
	RolesPerFunction RoleMode = "per-function"
)

type IngressMode string

const (
	IngressIsolated IngressMode = "isolated"
	IngressOpen     IngressMode = "open"
)

const (
	ArchitectureX86_64 = "x86_64"
	ArchitectureArm64  = "arm64"

	AuthTypeNone   = "NONE"
	AuthTypeAwsIam = "AWS_IAM"
)

const (
	DefaultStackName     = "DockerLambdaAwsStack"
	DefaultConfigFile    = "dla.yaml"
	DefaultMemorySize    = 1024
	DefaultTimeout       = 100
	DefaultCacheNodeType = "cache.t3.micro"
	DefaultCacheEngine   = "redis"
	DefaultCachePort     = 6379
	DefaultCacheCluster  = "embedding-cache"

	PreprocessorName = "Document-Preprocessor"
	EmbedderName     = "Chunk-Embedder"

	preprocessorImageDir      = "function-1"
	embedderImageDirMinimal   = "function-2"
	embedderImageDirNetworked = "Embedder"
)

type Function struct {
	Name         string `yaml:"name"`
	ImageDir     string `yaml:"imageDir,omitempty"`
	ImageURI     string `yaml:"imageUri,omitempty"` // ECR repository URI with tag or digest
	MemorySize   int    `yaml:"memorySize"`
	Timeout      int    `yaml:"timeout"` // seconds
	Architecture string `yaml:"architecture"`
	URLAuthType  string `yaml:"urlAuthType"`
	OpenCors     bool   `yaml:"openCors"`
}

type Cache struct {
	NodeType          string `yaml:"nodeType"`
	Engine            string `yaml:"engine"`
	NumNodes          int    `yaml:"numNodes"`
	ClusterName       string `yaml:"clusterName"`
	Port              int    `yaml:"port"`
	TransitEncryption bool   `yaml:"transitEncryption"`
}

type Config struct {
	Stack                 string            `yaml:"stack"`
	Account               string            `yaml:"account,omitempty"`
	Region                string            `yaml:"region,omitempty"`
	Description           string            `yaml:"description,omitempty"`
	Tags                  map[string]string `yaml:"tags,omitempty"`
	TerminationProtection bool              `yaml:"terminationProtection"`

	Revision     Revision    `yaml:"revision"`
	Roles        RoleMode    `yaml:"roles"`
	CacheIngress IngressMode `yaml:"cacheIngress"`
	MaxAzs       int         `yaml:"maxAzs"`
	NatGateways  int         `yaml:"natGateways"`

	// UploadSuffix limits the bucket notification to keys ending with it.
	UploadSuffix string `yaml:"uploadSuffix,omitempty"`

	Cache        Cache    `yaml:"cache"`
	Preprocessor Function `yaml:"preprocessor"`
	Embedder     Function `yaml:"embedder"`
}

func defaultFunction(name, imageDir string) Function {
	return Function{
		Name:         name,
		ImageDir:     imageDir,
		MemorySize:   DefaultMemorySize,
		Timeout:      DefaultTimeout,
		Architecture: ArchitectureX86_64,
		URLAuthType:  AuthTypeNone,
		OpenCors:     true,
	}
}

// Default returns the networked configuration.
func Default() Config {
	return DefaultFor(RevisionNetworked)
}

func DefaultFor(revision Revision) Config {
	embedderDir := embedderImageDirNetworked
	if revision == RevisionMinimal {
		embedderDir = embedderImageDirMinimal
	}
	return Config{
		Stack:        DefaultStackName,
		Revision:     revision,
		Roles:        RolesShared,
		CacheIngress: IngressIsolated,
		MaxAzs:       2,
		NatGateways:  1,
		Cache: Cache{
			NodeType:    DefaultCacheNodeType,
			Engine:      DefaultCacheEngine,
			NumNodes:    1,
			ClusterName: DefaultCacheCluster,
			Port:        DefaultCachePort,
		},
		Preprocessor: defaultFunction(PreprocessorName, preprocessorImageDir),
		Embedder:     defaultFunction(EmbedderName, embedderDir),
	}
}

// Load applies defaults, the YAML file at path (if any), then environment
// overrides, and validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var peek struct {
		Revision Revision `yaml:"revision"`
	}
	if err := yaml.Unmarshal(data, &peek); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	revision := Revision(pkg.Getenv("DLA_REVISION", string(peek.Revision)))
	if revision == "" {
		revision = RevisionNetworked
	}

	cfg := DefaultFor(revision)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Stack = pkg.Getenv("DLA_STACK", c.Stack)
	c.Revision = Revision(pkg.Getenv("DLA_REVISION", string(c.Revision)))
	c.Region = pkg.Getenv("AWS_REGION", pkg.Getenv("CDK_DEFAULT_REGION", c.Region))
	c.Account = pkg.Getenv("CDK_DEFAULT_ACCOUNT", c.Account)
	c.Preprocessor.ImageURI = pkg.Getenv("DLA_PREPROCESSOR_IMAGE", c.Preprocessor.ImageURI)
	c.Embedder.ImageURI = pkg.Getenv("DLA_EMBEDDER_IMAGE", c.Embedder.ImageURI)
	for key, value := range pkg.ParseKeyValues(os.Getenv("DLA_TAGS")) {
		if c.Tags == nil {
			c.Tags = make(map[string]string)
		}
		c.Tags[key] = value
	}
}

// Marshal renders the config as YAML, for `dla config`.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c Config) Networked() bool {
	return c.Revision == RevisionNetworked
}

func (c Config) Functions() []Function {
	return []Function{c.Preprocessor, c.Embedder}
}

// HasImageAssets reports whether any function image is built from a local directory.
func (c Config) HasImageAssets() bool {
	for _, f := range c.Functions() {
		if f.ImageURI == "" {
			return true
		}
	}
	return false
}

var (
	functionNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	stackNameRe    = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]{0,127}$`)
	clusterNameRe  = regexp.MustCompile(`^[a-z][a-z0-9-]{0,39}$`)
)

func (c Config) Validate() error {
	var errs []error
	if c.Stack == "" {
		errs = append(errs, errors.New("stack name is required"))
	} else if !stackNameRe.MatchString(c.Stack) {
		errs = append(errs, fmt.Errorf("invalid stack name %q", c.Stack))
	}
	switch c.Revision {
	case RevisionMinimal, RevisionNetworked:
	default:
		errs = append(errs, fmt.Errorf("unknown revision %q; must be %q or %q", c.Revision, RevisionMinimal, RevisionNetworked))
	}
	switch c.Roles {
	case RolesShared, RolesPerFunction:
	default:
		errs = append(errs, fmt.Errorf("unknown roles mode %q; must be %q or %q", c.Roles, RolesShared, RolesPerFunction))
	}

	if c.Networked() {
		switch c.CacheIngress {
		case IngressIsolated, IngressOpen:
		default:
			errs = append(errs, fmt.Errorf("unknown cache ingress %q; must be %q or %q", c.CacheIngress, IngressIsolated, IngressOpen))
		}
		if c.MaxAzs < 1 {
			errs = append(errs, fmt.Errorf("maxAzs must be at least 1, got %d", c.MaxAzs))
		}
		if c.NatGateways < 0 {
			errs = append(errs, fmt.Errorf("natGateways must not be negative, got %d", c.NatGateways))
		}
		errs = append(errs, c.Cache.validate())
	}

	errs = append(errs, c.Preprocessor.validate("preprocessor"), c.Embedder.validate("embedder"))
	if c.Preprocessor.Name == c.Embedder.Name {
		errs = append(errs, fmt.Errorf("preprocessor and embedder must have different names, both are %q", c.Embedder.Name))
	}
	return errors.Join(errs...)
}

func (c Cache) validate() error {
	var errs []error
	if c.NodeType == "" {
		errs = append(errs, errors.New("cache: nodeType is required"))
	}
	if c.Engine != "redis" && c.Engine != "valkey" {
		errs = append(errs, fmt.Errorf("cache: unsupported engine %q", c.Engine))
	}
	if c.NumNodes != 1 {
		errs = append(errs, fmt.Errorf("cache: numNodes must be 1 for %s, got %d", c.Engine, c.NumNodes))
	}
	if !clusterNameRe.MatchString(c.ClusterName) {
		errs = append(errs, fmt.Errorf("cache: invalid cluster name %q", c.ClusterName))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("cache: port must be between 1 and 65535, got %d", c.Port))
	}
	return errors.Join(errs...)
}

func (f Function) validate(role string) error {
	var errs []error
	if !functionNameRe.MatchString(f.Name) {
		errs = append(errs, fmt.Errorf("%s: invalid function name %q", role, f.Name))
	}
	if f.ImageDir == "" && f.ImageURI == "" {
		errs = append(errs, fmt.Errorf("%s: one of imageDir or imageUri is required", role))
	}
	if f.ImageURI != "" {
		if _, err := ParseImageURI(f.ImageURI); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", role, err))
		}
	}
	if f.MemorySize < 128 || f.MemorySize > 10240 {
		errs = append(errs, fmt.Errorf("%s: memorySize must be between 128 and 10240 MiB, got %d", role, f.MemorySize))
	}
	if f.Timeout < 1 || f.Timeout > 900 {
		errs = append(errs, fmt.Errorf("%s: timeout must be between 1 and 900 seconds, got %d", role, f.Timeout))
	}
	switch f.Architecture {
	case ArchitectureX86_64, ArchitectureArm64:
	default:
		errs = append(errs, fmt.Errorf("%s: unknown architecture %q", role, f.Architecture))
	}
	switch f.URLAuthType {
	case AuthTypeNone, AuthTypeAwsIam:
	default:
		errs = append(errs, fmt.Errorf("%s: unknown URL auth type %q", role, f.URLAuthType))
	}
	return errors.Join(errs...)
}
