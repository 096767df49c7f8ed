package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"gopkg.in/yaml.v3"

	"github.com/sainapse/presigned-upload/internal/model"
)

// Storage providers that can mint upload URLs.
const (
	ProviderS3  = "s3"
	ProviderGCS = "gcs"
)

// MaxExpires is the longest validity a SigV4 (or GOOG4) presigned URL may have.
const MaxExpires = 7 * 24 * time.Hour

// gcsACLs are the predefined ACL values accepted in the x-goog-acl header.
var gcsACLs = []string{
	"private",
	"project-private",
	"public-read",
	"public-read-write",
	"authenticated-read",
	"bucket-owner-read",
	"bucket-owner-full-control",
}

// Config holds runtime configuration for the presigned URL function.
//
// YAML example:
//
//	provider: "s3"
//	bucket: "sainapse-documents"
//	region: "ap-southeast-1"
//	expires: "5m"
//	acl: "private"
//
// Environment overrides (applied after the file):
//
//	PRESIGN_CONFIG               path to a YAML file; skipped when unset
//	PRESIGN_PROVIDER             "s3" or "gcs"
//	BUCKET_NAME                  target bucket
//	AWS_REGION                   region used for S3 signing
//	PRESIGN_EXPIRES              Go duration ("5m") or whole seconds ("300")
//	PRESIGN_ACL                  canned ACL applied to the uploaded object
//	S3_ENDPOINT                  custom endpoint for S3-compatible stores
//	S3_USE_PATH_STYLE            "true" to address buckets by path
//	PRESIGN_EXPOSE_ERROR_DETAILS "false" hides provider error text from callers
//	SENTRY_DSN, SENTRY_ENVIRONMENT, LOG_LEVEL
type Config struct {
	Provider           string        `yaml:"provider"`
	Bucket             string        `yaml:"bucket"`
	Region             string        `yaml:"region"`
	Expires            time.Duration `yaml:"expires"`
	ACL                string        `yaml:"acl"`
	Endpoint           string        `yaml:"endpoint,omitempty"`
	UsePathStyle       bool          `yaml:"usePathStyle,omitempty"`
	ExposeErrorDetails bool          `yaml:"exposeErrorDetails"`
	SentryDSN          string        `yaml:"sentryDSN,omitempty"`
	SentryEnvironment  string        `yaml:"sentryEnvironment,omitempty"`
	LogLevel           string        `yaml:"logLevel,omitempty"`
}

// Default returns the configuration the function ships with.
func Default() Config {
	return Config{
		Provider:           ProviderS3,
		Bucket:             model.DefaultBucket,
		Region:             model.DefaultRegion,
		Expires:            model.PresignedURLTTLSeconds * time.Second,
		ACL:                model.ACLPrivate,
		ExposeErrorDetails: true,
		LogLevel:           "info",
	}
}

// Load builds a Config from defaults, the optional YAML file named by
// PRESIGN_CONFIG, and environment overrides, then validates it.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("PRESIGN_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %q not found", path)
		}
		return fmt.Errorf("reading config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parsing config file %q: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PRESIGN_PROVIDER"); v != "" {
		c.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("BUCKET_NAME"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.Region = v
	}
	if v := os.Getenv("PRESIGN_EXPIRES"); v != "" {
		d, err := ParseExpires(v)
		if err != nil {
			return fmt.Errorf("parsing PRESIGN_EXPIRES: %w", err)
		}
		c.Expires = d
	}
	if v := os.Getenv("PRESIGN_ACL"); v != "" {
		c.ACL = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("S3_USE_PATH_STYLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing S3_USE_PATH_STYLE: %w", err)
		}
		c.UsePathStyle = b
	}
	if v := os.Getenv("PRESIGN_EXPOSE_ERROR_DETAILS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing PRESIGN_EXPOSE_ERROR_DETAILS: %w", err)
		}
		c.ExposeErrorDetails = b
	}
	if v := os.Getenv("SENTRY_DSN"); v != "" {
		c.SentryDSN = v
	}
	if v := os.Getenv("SENTRY_ENVIRONMENT"); v != "" {
		c.SentryEnvironment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// ParseExpires accepts either a Go duration or a whole number of seconds.
func ParseExpires(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Validate checks that the configuration can produce valid signed URLs.
func (c Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("bucket name is required")
	}
	if c.Expires <= 0 {
		return fmt.Errorf("expiry must be positive, got %s", c.Expires)
	}
	if c.Expires > MaxExpires {
		return fmt.Errorf("expiry %s exceeds maximum of %s", c.Expires, MaxExpires)
	}
	if c.Expires%time.Second != 0 {
		return fmt.Errorf("expiry %s must be a whole number of seconds", c.Expires)
	}

	switch c.Provider {
	case ProviderS3:
		if c.Region == "" {
			return errors.New("region is required for the s3 provider")
		}
		if !slices.Contains(types.ObjectCannedACL("").Values(), types.ObjectCannedACL(c.ACL)) {
			return fmt.Errorf("unsupported s3 ACL %q", c.ACL)
		}
	case ProviderGCS:
		if !slices.Contains(gcsACLs, c.ACL) {
			return fmt.Errorf("unsupported gcs ACL %q", c.ACL)
		}
	default:
		return fmt.Errorf("unknown provider %q (want %q or %q)", c.Provider, ProviderS3, ProviderGCS)
	}
	return nil
}

// AWSConfig loads the default AWS configuration chain pinned to the
// configured region.
func (c Config) AWSConfig(ctx context.Context) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading aws default config: %w", err)
	}
	return awsCfg, nil
}
