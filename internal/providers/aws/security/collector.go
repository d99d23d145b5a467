// Package awssecurity collects the per-service AWS inventory a security scan
// evaluates. It only reads; every finding is produced by internal/rules.
package awssecurity

import (
	"context"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/providers/aws/common"
)

// Target identifies what a collection call reads: the resolved credential
// source, the provider that derives regional configs from it, and the
// regions to visit. Global services ignore Regions.
type Target struct {
	Profile  *common.ProfileConfig
	Provider common.AWSClientProvider
	Regions  []string
}

// SecurityCollector collects the raw inventory of each scanned service.
//
// Implementations must never apply business logic or produce findings.
// A failing primary listing fails the whole call; failing per-resource
// detail lookups are coerced to absent values.
type SecurityCollector interface {
	CollectEC2(ctx context.Context, target Target) (models.EC2Inventory, error)
	CollectIAM(ctx context.Context, target Target) (models.IAMInventory, error)
	CollectS3(ctx context.Context, target Target) (models.S3Inventory, error)
	CollectVPC(ctx context.Context, target Target) (models.VPCInventory, error)
	CollectRDS(ctx context.Context, target Target) (models.RDSInventory, error)
	CollectLambda(ctx context.Context, target Target) (models.LambdaInventory, error)
	CollectCloudTrail(ctx context.Context, target Target) (models.CloudTrailInventory, error)
	CollectEBS(ctx context.Context, target Target) (models.EBSInventory, error)
	CollectELB(ctx context.Context, target Target) (models.ELBInventory, error)
	CollectSNS(ctx context.Context, target Target) (models.SNSInventory, error)
	CollectSQS(ctx context.Context, target Target) (models.SQSInventory, error)
}
