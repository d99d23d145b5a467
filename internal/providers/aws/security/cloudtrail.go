package awssecurity

import (
	"context"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	cloudtrailsvc "github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	cloudtrailtypes "github.com/aws/aws-sdk-go-v2/service/cloudtrail/types"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

// CollectCloudTrail gathers the trails created in each target region.
// IncludeShadowTrails is false so a multi-region trail is reported once, by
// its home region.
func (c *DefaultSecurityCollector) CollectCloudTrail(ctx context.Context, target Target) (models.CloudTrailInventory, error) {
	buckets := newRegionalS3(c, target)
	parts, err := perRegion(ctx, c, target, func(ctx context.Context, clients *secClients, region string) ([]models.Trail, error) {
		return c.collectTrails(ctx, clients, buckets, region)
	})
	if err != nil {
		return models.CloudTrailInventory{}, err
	}
	return models.CloudTrailInventory{Trails: flatten(parts)}, nil
}

// collectTrails describes the trails of one region, then reads their status,
// event selectors, tags and destination bucket state as detail lookups. The
// bucket is read through a client for its own region, which is often not the
// trail's.
func (c *DefaultSecurityCollector) collectTrails(ctx context.Context, clients *secClients, buckets *regionalS3, region string) ([]models.Trail, error) {
	out, err := clients.CloudTrail.DescribeTrails(ctx, &cloudtrailsvc.DescribeTrailsInput{
		IncludeShadowTrails: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("describe CloudTrail trails: %w", err)
	}

	trails := make([]models.Trail, 0, len(out.TrailList))
	for _, tr := range out.TrailList {
		trails = append(trails, models.Trail{
			Name:                  aws.ToString(tr.Name),
			ARN:                   aws.ToString(tr.TrailARN),
			Region:                region,
			HomeRegion:            aws.ToString(tr.HomeRegion),
			IsMultiRegion:         aws.ToBool(tr.IsMultiRegionTrail),
			IncludeGlobalEvents:   aws.ToBool(tr.IncludeGlobalServiceEvents),
			LogFileValidation:     aws.ToBool(tr.LogFileValidationEnabled),
			S3BucketName:          aws.ToString(tr.S3BucketName),
			KMSKeyID:              aws.ToString(tr.KmsKeyId),
			CloudWatchLogGroupARN: aws.ToString(tr.CloudWatchLogsLogGroupArn),
			SNSTopicARN:           aws.ToString(tr.SnsTopicARN),
		})
	}

	err = c.eachDetail(ctx, len(trails), func(ctx context.Context, i int) {
		tr := &trails[i]
		trailStatus(ctx, clients.CloudTrail, tr)
		tr.EventSelectors = eventSelectors(ctx, clients.CloudTrail, tr.ARN)
		tr.Tags = trailTags(ctx, clients.CloudTrail, tr.ARN)
		if tr.S3BucketName != "" {
			s3 := buckets.get(bucketRegion(ctx, clients.S3, tr.S3BucketName))
			tr.BucketLifecycleRules = lifecycleRules(ctx, s3, tr.S3BucketName)
			tr.BucketACL = bucketACL(ctx, s3, tr.S3BucketName)
		}
	})
	return trails, err
}

// trailStatus sets IsLogging and LatestDeliveryTime; both stay zero when
// GetTrailStatus failed.
func trailStatus(ctx context.Context, client cloudTrailAPIClient, tr *models.Trail) {
	out, err := client.GetTrailStatus(ctx, &cloudtrailsvc.GetTrailStatusInput{
		Name: aws.String(tr.ARN),
	})
	if err != nil {
		return
	}
	tr.IsLogging = aws.ToBool(out.IsLogging)
	tr.LatestDeliveryTime = out.LatestDeliveryTime
}

func eventSelectors(ctx context.Context, client cloudTrailAPIClient, arn string) []models.TrailEventSelector {
	out, err := client.GetEventSelectors(ctx, &cloudtrailsvc.GetEventSelectorsInput{
		TrailName: aws.String(arn),
	})
	if err != nil {
		return nil
	}
	selectors := make([]models.TrailEventSelector, 0, len(out.EventSelectors)+len(out.AdvancedEventSelectors))
	for _, es := range out.EventSelectors {
		selectors = append(selectors, models.TrailEventSelector{
			ReadWriteType: string(es.ReadWriteType),
			DataResources: len(es.DataResources),
		})
	}
	for _, as := range out.AdvancedEventSelectors {
		selectors = append(selectors, advancedSelector(as))
	}
	return selectors
}

// advancedSelector expresses an advanced event selector in classic terms.
// A Management selector gets the read/write type of its readOnly field, All
// without one. A Data selector counts as one data resource and logs no
// management events.
func advancedSelector(as cloudtrailtypes.AdvancedEventSelector) models.TrailEventSelector {
	out := models.TrailEventSelector{ReadWriteType: "All", Advanced: true}
	data := false
	for _, fs := range as.FieldSelectors {
		switch aws.ToString(fs.Field) {
		case "eventCategory":
			data = slices.Contains(fs.Equals, "Data")
		case "readOnly":
			switch {
			case slices.Equal(fs.Equals, []string{"true"}):
				out.ReadWriteType = "ReadOnly"
			case slices.Equal(fs.Equals, []string{"false"}):
				out.ReadWriteType = "WriteOnly"
			}
		}
	}
	if data {
		out.ReadWriteType = ""
		out.DataResources = 1
	}
	return out
}

func trailTags(ctx context.Context, client cloudTrailAPIClient, arn string) map[string]string {
	out, err := client.ListTags(ctx, &cloudtrailsvc.ListTagsInput{
		ResourceIdList: []string{arn},
	})
	if err != nil {
		return nil
	}
	var tags []cloudtrailtypes.Tag
	for _, rt := range out.ResourceTagList {
		tags = append(tags, rt.TagsList...)
	}
	return tagMap(tags, func(t cloudtrailtypes.Tag) (*string, *string) { return t.Key, t.Value })
}
