package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

// autoScalingGroupTag is the tag EC2 Auto Scaling puts on the instances it
// launches.
const autoScalingGroupTag = "aws:autoscaling:groupName"

// CollectEC2 gathers every non-terminated instance in the target regions.
func (c *DefaultSecurityCollector) CollectEC2(ctx context.Context, target Target) (models.EC2Inventory, error) {
	parts, err := perRegion(ctx, c, target, func(ctx context.Context, clients *secClients, region string) ([]models.EC2Instance, error) {
		return c.collectEC2Instances(ctx, clients.EC2, region)
	})
	if err != nil {
		return models.EC2Inventory{}, err
	}
	return models.EC2Inventory{Instances: flatten(parts)}, nil
}

// collectEC2Instances pages through the instances of one region and enriches
// them with security group rule counts, attached volume encryption and
// termination protection. Enrichment failures leave the fields absent.
func (c *DefaultSecurityCollector) collectEC2Instances(ctx context.Context, client ec2APIClient, region string) ([]models.EC2Instance, error) {
	input := &ec2svc.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{
				Name:   aws.String("instance-state-name"),
				Values: []string{"pending", "running", "stopping", "stopped", "shutting-down"},
			},
		},
	}

	paginator := ec2svc.NewDescribeInstancesPaginator(client, input)

	var instances []models.EC2Instance
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe EC2 instances: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, inst := range reservation.Instances {
				instances = append(instances, toEC2Instance(inst, region))
			}
		}
	}
	if len(instances) == 0 {
		return nil, nil
	}

	// One regional listing each instead of a lookup per instance.
	ruleCounts := make(map[string]int)
	if groups, err := listSecurityGroups(ctx, client); err == nil {
		for _, g := range groups {
			ruleCounts[aws.ToString(g.GroupId)] = len(g.IpPermissions) + len(g.IpPermissionsEgress)
		}
	}
	encrypted := make(map[string]bool)
	if volumes, err := listVolumes(ctx, client); err == nil {
		for _, v := range volumes {
			encrypted[aws.ToString(v.VolumeId)] = aws.ToBool(v.Encrypted)
		}
	}

	for i := range instances {
		inst := &instances[i]
		for _, id := range inst.SecurityGroupIDs {
			inst.SecurityGroupRuleCount += ruleCounts[id]
		}
		for j := range inst.Volumes {
			if enc, ok := encrypted[inst.Volumes[j].VolumeID]; ok {
				inst.Volumes[j].Encrypted = aws.Bool(enc)
			}
		}
	}

	err := c.eachDetail(ctx, len(instances), func(ctx context.Context, i int) {
		instances[i].TerminationProtection = terminationProtection(ctx, client, instances[i].InstanceID)
	})
	return instances, err
}

// toEC2Instance converts an SDK EC2 instance to the internal model.
func toEC2Instance(inst ec2types.Instance, region string) models.EC2Instance {
	out := models.EC2Instance{
		InstanceID:   aws.ToString(inst.InstanceId),
		Region:       region,
		InstanceType: string(inst.InstanceType),
		ImageID:      aws.ToString(inst.ImageId),
		KeyName:      aws.ToString(inst.KeyName),
		VPCID:        aws.ToString(inst.VpcId),
		PublicIP:     aws.ToString(inst.PublicIpAddress),
		SecurityGroupIDs: stringsOf(inst.SecurityGroups, func(g ec2types.GroupIdentifier) *string {
			return g.GroupId
		}),
		Tags: ec2Tags(inst.Tags),
	}
	if inst.State != nil {
		out.State = string(inst.State.Name)
	}
	if inst.MetadataOptions != nil {
		out.MetadataHTTPTokens = string(inst.MetadataOptions.HttpTokens)
	}
	if inst.IamInstanceProfile != nil {
		out.IAMInstanceProfileARN = aws.ToString(inst.IamInstanceProfile.Arn)
	}
	if inst.Monitoring != nil {
		out.MonitoringState = string(inst.Monitoring.State)
	}
	for _, bdm := range inst.BlockDeviceMappings {
		if bdm.Ebs == nil || bdm.Ebs.VolumeId == nil {
			continue
		}
		out.Volumes = append(out.Volumes, models.AttachedVolume{VolumeID: aws.ToString(bdm.Ebs.VolumeId)})
	}
	out.AutoScalingGroup = out.Tags[autoScalingGroupTag]
	return out
}

// terminationProtection reads the disableApiTermination attribute. It
// returns nil when the attribute could not be read.
func terminationProtection(ctx context.Context, client ec2APIClient, instanceID string) *bool {
	out, err := client.DescribeInstanceAttribute(ctx, &ec2svc.DescribeInstanceAttributeInput{
		InstanceId: aws.String(instanceID),
		Attribute:  ec2types.InstanceAttributeNameDisableApiTermination,
	})
	if err != nil || out.DisableApiTermination == nil || out.DisableApiTermination.Value == nil {
		return nil
	}
	return aws.Bool(*out.DisableApiTermination.Value)
}

func ec2Tags(tags []ec2types.Tag) map[string]string {
	return tagMap(tags, func(t ec2types.Tag) (*string, *string) { return t.Key, t.Value })
}
