package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

// CollectEBS gathers volumes and account-owned snapshots in the target
// regions. Snapshot visibility is a detail lookup.
func (c *DefaultSecurityCollector) CollectEBS(ctx context.Context, target Target) (models.EBSInventory, error) {
	parts, err := perRegion(ctx, c, target, func(ctx context.Context, clients *secClients, region string) (models.EBSInventory, error) {
		return c.collectEBSRegion(ctx, clients.EC2, region)
	})
	if err != nil {
		return models.EBSInventory{}, err
	}

	var inv models.EBSInventory
	for _, p := range parts {
		inv.Volumes = append(inv.Volumes, p.Volumes...)
		inv.Snapshots = append(inv.Snapshots, p.Snapshots...)
	}
	return inv, nil
}

func (c *DefaultSecurityCollector) collectEBSRegion(ctx context.Context, client ec2APIClient, region string) (models.EBSInventory, error) {
	volumes, err := listVolumes(ctx, client)
	if err != nil {
		return models.EBSInventory{}, err
	}
	snapshots, err := listSnapshots(ctx, client)
	if err != nil {
		return models.EBSInventory{}, err
	}

	inv := models.EBSInventory{
		Volumes:   make([]models.EBSVolume, 0, len(volumes)),
		Snapshots: make([]models.EBSSnapshot, 0, len(snapshots)),
	}
	for _, v := range volumes {
		inv.Volumes = append(inv.Volumes, toEBSVolume(v, region))
	}
	for _, s := range snapshots {
		inv.Snapshots = append(inv.Snapshots, models.EBSSnapshot{
			SnapshotID:  aws.ToString(s.SnapshotId),
			VolumeID:    aws.ToString(s.VolumeId),
			Region:      region,
			Description: aws.ToString(s.Description),
			Encrypted:   aws.ToBool(s.Encrypted),
			StartTime:   aws.ToTime(s.StartTime),
			Tags:        ec2Tags(s.Tags),
		})
	}

	err = c.eachDetail(ctx, len(inv.Snapshots), func(ctx context.Context, i int) {
		inv.Snapshots[i].Public = snapshotIsPublic(ctx, client, inv.Snapshots[i].SnapshotID)
	})
	return inv, err
}

func toEBSVolume(v ec2types.Volume, region string) models.EBSVolume {
	return models.EBSVolume{
		VolumeID:   aws.ToString(v.VolumeId),
		Region:     region,
		VolumeType: string(v.VolumeType),
		SizeGiB:    aws.ToInt32(v.Size),
		IOPS:       aws.ToInt32(v.Iops),
		Encrypted:  aws.ToBool(v.Encrypted),
		KMSKeyID:   aws.ToString(v.KmsKeyId),
		AttachedInstanceIDs: stringsOf(v.Attachments, func(a ec2types.VolumeAttachment) *string {
			return a.InstanceId
		}),
		Attachments: len(v.Attachments),
		Tags:        ec2Tags(v.Tags),
	}
}

// listVolumes pages through every EBS volume in the client's region.
func listVolumes(ctx context.Context, client ec2APIClient) ([]ec2types.Volume, error) {
	paginator := ec2svc.NewDescribeVolumesPaginator(client, &ec2svc.DescribeVolumesInput{})
	var volumes []ec2types.Volume
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe EBS volumes: %w", err)
		}
		volumes = append(volumes, page.Volumes...)
	}
	return volumes, nil
}

// listSnapshots pages through the snapshots owned by the calling account.
func listSnapshots(ctx context.Context, client ec2APIClient) ([]ec2types.Snapshot, error) {
	paginator := ec2svc.NewDescribeSnapshotsPaginator(client, &ec2svc.DescribeSnapshotsInput{
		OwnerIds: []string{"self"},
	})
	var snapshots []ec2types.Snapshot
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe EBS snapshots: %w", err)
		}
		snapshots = append(snapshots, page.Snapshots...)
	}
	return snapshots, nil
}

// snapshotIsPublic reports whether createVolumePermission grants the "all"
// group. Lookup failures are treated as private.
func snapshotIsPublic(ctx context.Context, client ec2APIClient, snapshotID string) bool {
	out, err := client.DescribeSnapshotAttribute(ctx, &ec2svc.DescribeSnapshotAttributeInput{
		SnapshotId: aws.String(snapshotID),
		Attribute:  ec2types.SnapshotAttributeNameCreateVolumePermission,
	})
	if err != nil {
		return false
	}
	for _, p := range out.CreateVolumePermissions {
		if p.Group == ec2types.PermissionGroupAll {
			return true
		}
	}
	return false
}
