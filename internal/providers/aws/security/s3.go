package awssecurity

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/providers/aws/common"
)

// publicObjectSample is how many object keys per bucket have their ACL read
// for the public object check.
const publicObjectSample = 20

// CollectS3 lists all buckets once from the home region and reads each
// bucket's configuration through a client bound to the bucket's own region.
// Only ListBuckets is primary; every configuration lookup is a detail.
func (c *DefaultSecurityCollector) CollectS3(ctx context.Context, target Target) (models.S3Inventory, error) {
	global := c.global(target).S3

	out, err := global.ListBuckets(ctx, &s3svc.ListBucketsInput{})
	if err != nil {
		return models.S3Inventory{}, fmt.Errorf("list S3 buckets: %w", err)
	}

	buckets := make([]models.S3Bucket, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		buckets = append(buckets, models.S3Bucket{
			Name:         aws.ToString(b.Name),
			CreationDate: aws.ToTime(b.CreationDate),
		})
	}

	clients := newRegionalS3(c, target)
	err = c.eachDetail(ctx, len(buckets), func(ctx context.Context, i int) {
		b := &buckets[i]
		b.Region = bucketRegion(ctx, global, b.Name)
		describeBucket(ctx, clients.get(b.Region), b)
	})
	if err != nil {
		return models.S3Inventory{}, err
	}
	return models.S3Inventory{Buckets: buckets}, nil
}

// regionalS3 hands out one S3 client per bucket region.
type regionalS3 struct {
	collector *DefaultSecurityCollector
	target    Target

	mu       sync.Mutex
	byRegion map[string]s3APIClient
}

func newRegionalS3(c *DefaultSecurityCollector, target Target) *regionalS3 {
	return &regionalS3{collector: c, target: target, byRegion: map[string]s3APIClient{}}
}

func (r *regionalS3) get(region string) s3APIClient {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cl, ok := r.byRegion[region]; ok {
		return cl
	}
	cl := r.collector.regional(r.target, region).S3
	r.byRegion[region] = cl
	return cl
}

// bucketRegion resolves the bucket's location constraint. An empty constraint
// means us-east-1 and the legacy "EU" constraint means eu-west-1. Lookup
// failures fall back to the home region.
func bucketRegion(ctx context.Context, client s3APIClient, bucket string) string {
	out, err := client.GetBucketLocation(ctx, &s3svc.GetBucketLocationInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return common.HomeRegion
	}
	return normalizeBucketRegion(string(out.LocationConstraint))
}

func normalizeBucketRegion(constraint string) string {
	switch constraint {
	case "":
		return common.HomeRegion
	case "EU":
		return "eu-west-1"
	default:
		return constraint
	}
}

// describeBucket fills every optional sub-resource of b. Each lookup failure
// (NoSuchBucketPolicy, ServerSideEncryptionConfigurationNotFoundError,
// NoSuchTagSet, access denied, ...) leaves the field absent.
func describeBucket(ctx context.Context, client s3APIClient, b *models.S3Bucket) {
	name := aws.String(b.Name)

	if out, err := client.GetBucketPolicy(ctx, &s3svc.GetBucketPolicyInput{Bucket: name}); err == nil && out.Policy != nil {
		b.Policy = out.Policy
	}
	b.ACL = bucketACL(ctx, client, b.Name)
	if out, err := client.GetBucketEncryption(ctx, &s3svc.GetBucketEncryptionInput{Bucket: name}); err == nil && out.ServerSideEncryptionConfiguration != nil {
		enc := &models.S3Encryption{}
		for _, rule := range out.ServerSideEncryptionConfiguration.Rules {
			if rule.ApplyServerSideEncryptionByDefault != nil {
				enc.Algorithms = append(enc.Algorithms, string(rule.ApplyServerSideEncryptionByDefault.SSEAlgorithm))
			}
		}
		b.Encryption = enc
	}
	if out, err := client.GetBucketVersioning(ctx, &s3svc.GetBucketVersioningInput{Bucket: name}); err == nil {
		b.VersioningStatus = string(out.Status)
	}
	if out, err := client.GetPublicAccessBlock(ctx, &s3svc.GetPublicAccessBlockInput{Bucket: name}); err == nil && out.PublicAccessBlockConfiguration != nil {
		cfg := out.PublicAccessBlockConfiguration
		b.PublicAccessBlock = &models.S3PublicAccessBlock{
			BlockPublicACLs:       truthy(cfg.BlockPublicAcls),
			IgnorePublicACLs:      truthy(cfg.IgnorePublicAcls),
			BlockPublicPolicy:     truthy(cfg.BlockPublicPolicy),
			RestrictPublicBuckets: truthy(cfg.RestrictPublicBuckets),
		}
	}
	if out, err := client.GetBucketLogging(ctx, &s3svc.GetBucketLoggingInput{Bucket: name}); err == nil {
		b.LoggingEnabled = out.LoggingEnabled != nil
	}
	b.LifecycleRules = lifecycleRules(ctx, client, b.Name)
	if out, err := client.GetBucketTagging(ctx, &s3svc.GetBucketTaggingInput{Bucket: name}); err == nil {
		b.Tags = tagMap(out.TagSet, func(t s3types.Tag) (*string, *string) { return t.Key, t.Value })
	}
	if out, err := client.GetObjectLockConfiguration(ctx, &s3svc.GetObjectLockConfigurationInput{Bucket: name}); err == nil && out.ObjectLockConfiguration != nil {
		b.ObjectLockEnabled = out.ObjectLockConfiguration.ObjectLockEnabled == s3types.ObjectLockEnabledEnabled
	}
	b.PublicObjectKeys = publicObjects(ctx, client, b.Name)
}

// lifecycleRules returns the number of lifecycle rules on bucket; zero when
// none are configured or the lookup failed. CloudTrail reuses it for trail
// destination buckets.
func lifecycleRules(ctx context.Context, client s3APIClient, bucket string) int {
	out, err := client.GetBucketLifecycleConfiguration(ctx, &s3svc.GetBucketLifecycleConfigurationInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return 0
	}
	return len(out.Rules)
}

// bucketACL returns the grants of bucket; nil when the lookup failed.
func bucketACL(ctx context.Context, client s3APIClient, bucket string) []models.S3Grant {
	out, err := client.GetBucketAcl(ctx, &s3svc.GetBucketAclInput{Bucket: aws.String(bucket)})
	if err != nil {
		return nil
	}
	return toGrants(out.Grants)
}

func toGrants(grants []s3types.Grant) []models.S3Grant {
	var out []models.S3Grant
	for _, g := range grants {
		grant := models.S3Grant{Permission: string(g.Permission)}
		if g.Grantee != nil {
			grant.GranteeURI = aws.ToString(g.Grantee.URI)
		}
		out = append(out, grant)
	}
	return out
}

// publicObjects samples the first keys of bucket and returns those whose ACL
// lets AllUsers read the object.
func publicObjects(ctx context.Context, client s3APIClient, bucket string) []string {
	out, err := client.ListObjectsV2(ctx, &s3svc.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		MaxKeys: aws.Int32(publicObjectSample),
	})
	if err != nil {
		return nil
	}

	var public []string
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		acl, err := client.GetObjectAcl(ctx, &s3svc.GetObjectAclInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			continue
		}
		for _, g := range acl.Grants {
			if g.Grantee != nil && aws.ToString(g.Grantee.URI) == models.S3AllUsersURI && g.Permission == s3types.PermissionRead {
				public = append(public, key)
				break
			}
		}
	}
	return public
}
