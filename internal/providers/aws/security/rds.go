package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	rdssvc "github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

// CollectRDS gathers DB instances, DB snapshots and DB subnet groups in the
// target regions. All three listings are primary.
func (c *DefaultSecurityCollector) CollectRDS(ctx context.Context, target Target) (models.RDSInventory, error) {
	parts, err := perRegion(ctx, c, target, func(ctx context.Context, clients *secClients, region string) (models.RDSInventory, error) {
		return collectRDSRegion(ctx, clients.RDS, region)
	})
	if err != nil {
		return models.RDSInventory{}, err
	}

	var inv models.RDSInventory
	for _, p := range parts {
		inv.Instances = append(inv.Instances, p.Instances...)
		inv.Snapshots = append(inv.Snapshots, p.Snapshots...)
		inv.SubnetGroups = append(inv.SubnetGroups, p.SubnetGroups...)
	}
	return inv, nil
}

func collectRDSRegion(ctx context.Context, client rdsAPIClient, region string) (models.RDSInventory, error) {
	var inv models.RDSInventory

	instances := rdssvc.NewDescribeDBInstancesPaginator(client, &rdssvc.DescribeDBInstancesInput{})
	for instances.HasMorePages() {
		page, err := instances.NextPage(ctx)
		if err != nil {
			return inv, fmt.Errorf("describe DB instances: %w", err)
		}
		for _, db := range page.DBInstances {
			inv.Instances = append(inv.Instances, toRDSInstance(db, region))
		}
	}

	snapshots := rdssvc.NewDescribeDBSnapshotsPaginator(client, &rdssvc.DescribeDBSnapshotsInput{})
	for snapshots.HasMorePages() {
		page, err := snapshots.NextPage(ctx)
		if err != nil {
			return inv, fmt.Errorf("describe DB snapshots: %w", err)
		}
		for _, s := range page.DBSnapshots {
			inv.Snapshots = append(inv.Snapshots, models.RDSSnapshot{
				SnapshotID: aws.ToString(s.DBSnapshotIdentifier),
				Region:     region,
				Encrypted:  aws.ToBool(s.Encrypted),
			})
		}
	}

	groups := rdssvc.NewDescribeDBSubnetGroupsPaginator(client, &rdssvc.DescribeDBSubnetGroupsInput{})
	for groups.HasMorePages() {
		page, err := groups.NextPage(ctx)
		if err != nil {
			return inv, fmt.Errorf("describe DB subnet groups: %w", err)
		}
		for _, g := range page.DBSubnetGroups {
			group := models.RDSSubnetGroup{
				Name:   aws.ToString(g.DBSubnetGroupName),
				Region: region,
			}
			for _, s := range g.Subnets {
				if s.SubnetAvailabilityZone != nil {
					group.AvailabilityZones = append(group.AvailabilityZones, aws.ToString(s.SubnetAvailabilityZone.Name))
				}
			}
			inv.SubnetGroups = append(inv.SubnetGroups, group)
		}
	}
	return inv, nil
}

// toRDSInstance converts an SDK DB instance to the internal model.
func toRDSInstance(db rdstypes.DBInstance, region string) models.RDSInstance {
	out := models.RDSInstance{
		DBInstanceID:          aws.ToString(db.DBInstanceIdentifier),
		ARN:                   aws.ToString(db.DBInstanceArn),
		Region:                region,
		Engine:                aws.ToString(db.Engine),
		EngineVersion:         aws.ToString(db.EngineVersion),
		StorageEncrypted:      aws.ToBool(db.StorageEncrypted),
		PubliclyAccessible:    aws.ToBool(db.PubliclyAccessible),
		DeletionProtection:    aws.ToBool(db.DeletionProtection),
		MultiAZ:               aws.ToBool(db.MultiAZ),
		IAMAuthentication:     aws.ToBool(db.IAMDatabaseAuthenticationEnabled),
		BackupRetentionDays:   aws.ToInt32(db.BackupRetentionPeriod),
		EnhancedMonitoringARN: aws.ToString(db.EnhancedMonitoringResourceArn),
		ParameterGroups: stringsOf(db.DBParameterGroups, func(p rdstypes.DBParameterGroupStatus) *string {
			return p.DBParameterGroupName
		}),
		Tags: tagMap(db.TagList, func(t rdstypes.Tag) (*string, *string) { return t.Key, t.Value }),
	}
	if db.DBSubnetGroup != nil {
		out.VPCID = aws.ToString(db.DBSubnetGroup.VpcId)
	}
	return out
}
