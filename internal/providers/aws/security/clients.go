package awssecurity

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	cloudtrailsvc "github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	cloudwatchsvc "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	elbsvc "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
	elbv2svc "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	rdssvc "github.com/aws/aws-sdk-go-v2/service/rds"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	snssvc "github.com/aws/aws-sdk-go-v2/service/sns"
	sqssvc "github.com/aws/aws-sdk-go-v2/service/sqs"
)

// ---------------------------------------------------------------------------
// Narrow client interfaces
//
// Each interface lists only the SDK operations used by this package. The real
// SDK clients satisfy them automatically and the list methods also satisfy the
// SDK's *APIClient interfaces, so the v2 paginators work on fakes too.
// ---------------------------------------------------------------------------

// ec2APIClient covers instances, volumes, snapshots and the VPC network
// resources. EC2, EBS and VPC collection all share it.
type ec2APIClient interface {
	DescribeInstances(ctx context.Context, params *ec2svc.DescribeInstancesInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeInstancesOutput, error)
	DescribeInstanceAttribute(ctx context.Context, params *ec2svc.DescribeInstanceAttributeInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeInstanceAttributeOutput, error)
	DescribeVolumes(ctx context.Context, params *ec2svc.DescribeVolumesInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeVolumesOutput, error)
	DescribeSnapshots(ctx context.Context, params *ec2svc.DescribeSnapshotsInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeSnapshotsOutput, error)
	DescribeSnapshotAttribute(ctx context.Context, params *ec2svc.DescribeSnapshotAttributeInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeSnapshotAttributeOutput, error)
	DescribeSecurityGroups(ctx context.Context, params *ec2svc.DescribeSecurityGroupsInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeSecurityGroupsOutput, error)
	DescribeVpcs(ctx context.Context, params *ec2svc.DescribeVpcsInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeVpcsOutput, error)
	DescribeVpcAttribute(ctx context.Context, params *ec2svc.DescribeVpcAttributeInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeVpcAttributeOutput, error)
	DescribeFlowLogs(ctx context.Context, params *ec2svc.DescribeFlowLogsInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeFlowLogsOutput, error)
	DescribeSubnets(ctx context.Context, params *ec2svc.DescribeSubnetsInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeSubnetsOutput, error)
	DescribeRouteTables(ctx context.Context, params *ec2svc.DescribeRouteTablesInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeRouteTablesOutput, error)
	DescribeNetworkAcls(ctx context.Context, params *ec2svc.DescribeNetworkAclsInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeNetworkAclsOutput, error)
	DescribeInternetGateways(ctx context.Context, params *ec2svc.DescribeInternetGatewaysInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeInternetGatewaysOutput, error)
}

// iamAPIClient is the narrow IAM interface used for user, policy and
// account-level security data.
type iamAPIClient interface {
	ListUsers(ctx context.Context, params *iamsvc.ListUsersInput, optFns ...func(*iamsvc.Options)) (*iamsvc.ListUsersOutput, error)
	ListMFADevices(ctx context.Context, params *iamsvc.ListMFADevicesInput, optFns ...func(*iamsvc.Options)) (*iamsvc.ListMFADevicesOutput, error)
	ListAccessKeys(ctx context.Context, params *iamsvc.ListAccessKeysInput, optFns ...func(*iamsvc.Options)) (*iamsvc.ListAccessKeysOutput, error)
	ListGroupsForUser(ctx context.Context, params *iamsvc.ListGroupsForUserInput, optFns ...func(*iamsvc.Options)) (*iamsvc.ListGroupsForUserOutput, error)
	ListUserPolicies(ctx context.Context, params *iamsvc.ListUserPoliciesInput, optFns ...func(*iamsvc.Options)) (*iamsvc.ListUserPoliciesOutput, error)
	GetLoginProfile(ctx context.Context, params *iamsvc.GetLoginProfileInput, optFns ...func(*iamsvc.Options)) (*iamsvc.GetLoginProfileOutput, error)
	ListPolicies(ctx context.Context, params *iamsvc.ListPoliciesInput, optFns ...func(*iamsvc.Options)) (*iamsvc.ListPoliciesOutput, error)
	GetPolicyVersion(ctx context.Context, params *iamsvc.GetPolicyVersionInput, optFns ...func(*iamsvc.Options)) (*iamsvc.GetPolicyVersionOutput, error)
	ListGroups(ctx context.Context, params *iamsvc.ListGroupsInput, optFns ...func(*iamsvc.Options)) (*iamsvc.ListGroupsOutput, error)
	ListRoles(ctx context.Context, params *iamsvc.ListRolesInput, optFns ...func(*iamsvc.Options)) (*iamsvc.ListRolesOutput, error)
	GetAccountPasswordPolicy(ctx context.Context, params *iamsvc.GetAccountPasswordPolicyInput, optFns ...func(*iamsvc.Options)) (*iamsvc.GetAccountPasswordPolicyOutput, error)
	GetAccountSummary(ctx context.Context, params *iamsvc.GetAccountSummaryInput, optFns ...func(*iamsvc.Options)) (*iamsvc.GetAccountSummaryOutput, error)
}

// s3APIClient is the narrow S3 interface for bucket configuration lookups.
// CloudTrail collection reuses it to inspect trail destination buckets.
type s3APIClient interface {
	ListBuckets(ctx context.Context, params *s3svc.ListBucketsInput, optFns ...func(*s3svc.Options)) (*s3svc.ListBucketsOutput, error)
	GetBucketLocation(ctx context.Context, params *s3svc.GetBucketLocationInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketLocationOutput, error)
	GetBucketPolicy(ctx context.Context, params *s3svc.GetBucketPolicyInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketPolicyOutput, error)
	GetBucketAcl(ctx context.Context, params *s3svc.GetBucketAclInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketAclOutput, error)
	GetBucketEncryption(ctx context.Context, params *s3svc.GetBucketEncryptionInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketEncryptionOutput, error)
	GetBucketVersioning(ctx context.Context, params *s3svc.GetBucketVersioningInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketVersioningOutput, error)
	GetPublicAccessBlock(ctx context.Context, params *s3svc.GetPublicAccessBlockInput, optFns ...func(*s3svc.Options)) (*s3svc.GetPublicAccessBlockOutput, error)
	GetBucketLogging(ctx context.Context, params *s3svc.GetBucketLoggingInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketLoggingOutput, error)
	GetBucketLifecycleConfiguration(ctx context.Context, params *s3svc.GetBucketLifecycleConfigurationInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketLifecycleConfigurationOutput, error)
	GetBucketTagging(ctx context.Context, params *s3svc.GetBucketTaggingInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketTaggingOutput, error)
	GetObjectLockConfiguration(ctx context.Context, params *s3svc.GetObjectLockConfigurationInput, optFns ...func(*s3svc.Options)) (*s3svc.GetObjectLockConfigurationOutput, error)
	ListObjectsV2(ctx context.Context, params *s3svc.ListObjectsV2Input, optFns ...func(*s3svc.Options)) (*s3svc.ListObjectsV2Output, error)
	GetObjectAcl(ctx context.Context, params *s3svc.GetObjectAclInput, optFns ...func(*s3svc.Options)) (*s3svc.GetObjectAclOutput, error)
}

// rdsAPIClient covers DB instances, snapshots and subnet groups.
type rdsAPIClient interface {
	DescribeDBInstances(ctx context.Context, params *rdssvc.DescribeDBInstancesInput, optFns ...func(*rdssvc.Options)) (*rdssvc.DescribeDBInstancesOutput, error)
	DescribeDBSnapshots(ctx context.Context, params *rdssvc.DescribeDBSnapshotsInput, optFns ...func(*rdssvc.Options)) (*rdssvc.DescribeDBSnapshotsOutput, error)
	DescribeDBSubnetGroups(ctx context.Context, params *rdssvc.DescribeDBSubnetGroupsInput, optFns ...func(*rdssvc.Options)) (*rdssvc.DescribeDBSubnetGroupsOutput, error)
}

// lambdaAPIClient covers function listing and the per-function detail calls.
type lambdaAPIClient interface {
	ListFunctions(ctx context.Context, params *lambdasvc.ListFunctionsInput, optFns ...func(*lambdasvc.Options)) (*lambdasvc.ListFunctionsOutput, error)
	GetFunction(ctx context.Context, params *lambdasvc.GetFunctionInput, optFns ...func(*lambdasvc.Options)) (*lambdasvc.GetFunctionOutput, error)
	GetPolicy(ctx context.Context, params *lambdasvc.GetPolicyInput, optFns ...func(*lambdasvc.Options)) (*lambdasvc.GetPolicyOutput, error)
}

// cloudTrailAPIClient is the narrow CloudTrail interface for trail
// configuration and status.
type cloudTrailAPIClient interface {
	DescribeTrails(ctx context.Context, params *cloudtrailsvc.DescribeTrailsInput, optFns ...func(*cloudtrailsvc.Options)) (*cloudtrailsvc.DescribeTrailsOutput, error)
	GetTrailStatus(ctx context.Context, params *cloudtrailsvc.GetTrailStatusInput, optFns ...func(*cloudtrailsvc.Options)) (*cloudtrailsvc.GetTrailStatusOutput, error)
	GetEventSelectors(ctx context.Context, params *cloudtrailsvc.GetEventSelectorsInput, optFns ...func(*cloudtrailsvc.Options)) (*cloudtrailsvc.GetEventSelectorsOutput, error)
	ListTags(ctx context.Context, params *cloudtrailsvc.ListTagsInput, optFns ...func(*cloudtrailsvc.Options)) (*cloudtrailsvc.ListTagsOutput, error)
}

// elbAPIClient covers classic load balancers.
type elbAPIClient interface {
	DescribeLoadBalancers(ctx context.Context, params *elbsvc.DescribeLoadBalancersInput, optFns ...func(*elbsvc.Options)) (*elbsvc.DescribeLoadBalancersOutput, error)
	DescribeLoadBalancerAttributes(ctx context.Context, params *elbsvc.DescribeLoadBalancerAttributesInput, optFns ...func(*elbsvc.Options)) (*elbsvc.DescribeLoadBalancerAttributesOutput, error)
	DescribeTags(ctx context.Context, params *elbsvc.DescribeTagsInput, optFns ...func(*elbsvc.Options)) (*elbsvc.DescribeTagsOutput, error)
}

// elbv2APIClient covers application, network and gateway load balancers.
type elbv2APIClient interface {
	DescribeLoadBalancers(ctx context.Context, params *elbv2svc.DescribeLoadBalancersInput, optFns ...func(*elbv2svc.Options)) (*elbv2svc.DescribeLoadBalancersOutput, error)
	DescribeListeners(ctx context.Context, params *elbv2svc.DescribeListenersInput, optFns ...func(*elbv2svc.Options)) (*elbv2svc.DescribeListenersOutput, error)
	DescribeLoadBalancerAttributes(ctx context.Context, params *elbv2svc.DescribeLoadBalancerAttributesInput, optFns ...func(*elbv2svc.Options)) (*elbv2svc.DescribeLoadBalancerAttributesOutput, error)
	DescribeTags(ctx context.Context, params *elbv2svc.DescribeTagsInput, optFns ...func(*elbv2svc.Options)) (*elbv2svc.DescribeTagsOutput, error)
}

// snsAPIClient covers topics, their attributes, subscriptions and tags.
type snsAPIClient interface {
	ListTopics(ctx context.Context, params *snssvc.ListTopicsInput, optFns ...func(*snssvc.Options)) (*snssvc.ListTopicsOutput, error)
	GetTopicAttributes(ctx context.Context, params *snssvc.GetTopicAttributesInput, optFns ...func(*snssvc.Options)) (*snssvc.GetTopicAttributesOutput, error)
	ListSubscriptionsByTopic(ctx context.Context, params *snssvc.ListSubscriptionsByTopicInput, optFns ...func(*snssvc.Options)) (*snssvc.ListSubscriptionsByTopicOutput, error)
	ListTagsForResource(ctx context.Context, params *snssvc.ListTagsForResourceInput, optFns ...func(*snssvc.Options)) (*snssvc.ListTagsForResourceOutput, error)
}

// sqsAPIClient covers queues, their attributes and tags.
type sqsAPIClient interface {
	ListQueues(ctx context.Context, params *sqssvc.ListQueuesInput, optFns ...func(*sqssvc.Options)) (*sqssvc.ListQueuesOutput, error)
	GetQueueAttributes(ctx context.Context, params *sqssvc.GetQueueAttributesInput, optFns ...func(*sqssvc.Options)) (*sqssvc.GetQueueAttributesOutput, error)
	ListQueueTags(ctx context.Context, params *sqssvc.ListQueueTagsInput, optFns ...func(*sqssvc.Options)) (*sqssvc.ListQueueTagsOutput, error)
}

// cloudWatchAPIClient is used to find out whether SNS topics and SQS queues
// publish metrics.
type cloudWatchAPIClient interface {
	ListMetrics(ctx context.Context, params *cloudwatchsvc.ListMetricsInput, optFns ...func(*cloudwatchsvc.Options)) (*cloudwatchsvc.ListMetricsOutput, error)
}

// secClients bundles all AWS service clients used by the security collector
// for one region.
type secClients struct {
	EC2        ec2APIClient
	IAM        iamAPIClient
	S3         s3APIClient
	RDS        rdsAPIClient
	Lambda     lambdaAPIClient
	CloudTrail cloudTrailAPIClient
	ELB        elbAPIClient
	ELBv2      elbv2APIClient
	SNS        snsAPIClient
	SQS        sqsAPIClient
	CloudWatch cloudWatchAPIClient
}

// secClientFactory creates secClients from an AWS config.
// Injection point: tests replace this with a function returning fake clients.
type secClientFactory func(cfg aws.Config) *secClients

// newDefaultSecClients creates production AWS SDK clients from the given config.
func newDefaultSecClients(cfg aws.Config) *secClients {
	return &secClients{
		EC2:        ec2svc.NewFromConfig(cfg),
		IAM:        iamsvc.NewFromConfig(cfg),
		S3:         s3svc.NewFromConfig(cfg),
		RDS:        rdssvc.NewFromConfig(cfg),
		Lambda:     lambdasvc.NewFromConfig(cfg),
		CloudTrail: cloudtrailsvc.NewFromConfig(cfg),
		ELB:        elbsvc.NewFromConfig(cfg),
		ELBv2:      elbv2svc.NewFromConfig(cfg),
		SNS:        snssvc.NewFromConfig(cfg),
		SQS:        sqssvc.NewFromConfig(cfg),
		CloudWatch: cloudwatchsvc.NewFromConfig(cfg),
	}
}
