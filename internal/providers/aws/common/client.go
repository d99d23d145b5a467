package common

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

// ErrInvalidCredentials is returned when AWS rejects the supplied key
// material (unknown key id, bad signature, expired session token).
var ErrInvalidCredentials = errors.New("invalid AWS credentials")

// HomeRegion is the region used for global services (IAM, S3 listing, STS)
// and whenever a credential source does not configure one.
const HomeRegion = "us-east-1"

// ProfileConfig is a resolved AWS credential source with its SDK configuration
// and initialised service clients. It is the unit passed between provider
// functions and into the scanner.
type ProfileConfig struct {
	// ProfileName is the shared-config profile name, "default", or "static"
	// for request-supplied credentials.
	ProfileName string

	// AccountID is the resolved AWS account ID (via STS).
	AccountID string

	// Region is the home region for this configuration.
	Region string

	// Config is the fully loaded AWS SDK v2 configuration.
	Config aws.Config

	// Clients holds service clients scoped to the home region.
	Clients *ClientSet
}

// AWSClientProvider loads AWS configurations and resolves active regions.
// It is the sole entry point for AWS credential and region management across
// the provider layer.
type AWSClientProvider interface {
	// LoadProfile returns a ProfileConfig for the named shared-config profile.
	// Pass an empty string to load the default credential chain.
	LoadProfile(ctx context.Context, profile string) (*ProfileConfig, error)

	// LoadStatic returns a ProfileConfig for explicit key material. The
	// account id is resolved through STS, so invalid keys fail here with
	// ErrInvalidCredentials.
	LoadStatic(ctx context.Context, creds models.Credentials) (*ProfileConfig, error)

	// GetActiveRegions returns all regions that are enabled for the account
	// associated with cfg.
	GetActiveRegions(ctx context.Context, cfg *ProfileConfig) ([]string, error)

	// ConfigForRegion clones cfg with the target region set.
	ConfigForRegion(cfg *ProfileConfig, region string) aws.Config
}
