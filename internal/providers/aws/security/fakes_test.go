package awssecurity

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	cloudtrailsvc "github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	cloudtrailtypes "github.com/aws/aws-sdk-go-v2/service/cloudtrail/types"
	cloudwatchsvc "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elbsvc "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing/types"
	elbv2svc "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	rdssvc "github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	snssvc "github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	sqssvc "github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/providers/aws/common"
)

// Fakes embed the narrow interface they stand in for: a test that reaches an
// operation the fake does not override panics on the nil embedded value,
// which flags collection calls the test did not expect.

var errFake = errors.New("fake failure")

// ── provider ─────────────────────────────────────────────────────────────────

type fakeProvider struct{}

func (fakeProvider) LoadProfile(context.Context, string) (*common.ProfileConfig, error) {
	return nil, errFake
}

func (fakeProvider) LoadStatic(context.Context, models.Credentials) (*common.ProfileConfig, error) {
	return nil, errFake
}

func (fakeProvider) GetActiveRegions(context.Context, *common.ProfileConfig) ([]string, error) {
	return nil, errFake
}

func (fakeProvider) ConfigForRegion(_ *common.ProfileConfig, region string) aws.Config {
	return aws.Config{Region: region}
}

// newTestCollector returns a collector whose factory hands out the clients
// registered for each region.
func newTestCollector(byRegion map[string]*secClients) *DefaultSecurityCollector {
	return NewDefaultSecurityCollectorWithFactory(func(cfg aws.Config) *secClients {
		if cl, ok := byRegion[cfg.Region]; ok {
			return cl
		}
		return &secClients{}
	})
}

func testTarget(regions ...string) Target {
	return Target{
		Profile:  &common.ProfileConfig{ProfileName: "test", AccountID: "111122223333"},
		Provider: fakeProvider{},
		Regions:  regions,
	}
}

// ── EC2 ──────────────────────────────────────────────────────────────────────

type fakeEC2 struct {
	ec2APIClient

	instances    []ec2types.Instance
	instancesErr error
	termination  map[string]bool
	attrErr      error

	groups    []ec2types.SecurityGroup
	groupsErr error
	volumes   []ec2types.Volume
	snapshots []ec2types.Snapshot
	public    map[string]bool

	vpcs        []ec2types.Vpc
	dns         map[string]bool
	dnsErr      error
	flowLogs    []ec2types.FlowLog
	subnets     []ec2types.Subnet
	routeTables []ec2types.RouteTable
	acls        []ec2types.NetworkAcl
	igws        []ec2types.InternetGateway
}

func (f *fakeEC2) DescribeInstances(context.Context, *ec2svc.DescribeInstancesInput, ...func(*ec2svc.Options)) (*ec2svc.DescribeInstancesOutput, error) {
	if f.instancesErr != nil {
		return nil, f.instancesErr
	}
	return &ec2svc.DescribeInstancesOutput{
		Reservations: []ec2types.Reservation{{Instances: f.instances}},
	}, nil
}

func (f *fakeEC2) DescribeInstanceAttribute(_ context.Context, in *ec2svc.DescribeInstanceAttributeInput, _ ...func(*ec2svc.Options)) (*ec2svc.DescribeInstanceAttributeOutput, error) {
	if f.attrErr != nil {
		return nil, f.attrErr
	}
	on := f.termination[aws.ToString(in.InstanceId)]
	return &ec2svc.DescribeInstanceAttributeOutput{
		DisableApiTermination: &ec2types.AttributeBooleanValue{Value: aws.Bool(on)},
	}, nil
}

func (f *fakeEC2) DescribeSecurityGroups(context.Context, *ec2svc.DescribeSecurityGroupsInput, ...func(*ec2svc.Options)) (*ec2svc.DescribeSecurityGroupsOutput, error) {
	if f.groupsErr != nil {
		return nil, f.groupsErr
	}
	return &ec2svc.DescribeSecurityGroupsOutput{SecurityGroups: f.groups}, nil
}

func (f *fakeEC2) DescribeVolumes(context.Context, *ec2svc.DescribeVolumesInput, ...func(*ec2svc.Options)) (*ec2svc.DescribeVolumesOutput, error) {
	return &ec2svc.DescribeVolumesOutput{Volumes: f.volumes}, nil
}

func (f *fakeEC2) DescribeSnapshots(context.Context, *ec2svc.DescribeSnapshotsInput, ...func(*ec2svc.Options)) (*ec2svc.DescribeSnapshotsOutput, error) {
	return &ec2svc.DescribeSnapshotsOutput{Snapshots: f.snapshots}, nil
}

func (f *fakeEC2) DescribeSnapshotAttribute(_ context.Context, in *ec2svc.DescribeSnapshotAttributeInput, _ ...func(*ec2svc.Options)) (*ec2svc.DescribeSnapshotAttributeOutput, error) {
	out := &ec2svc.DescribeSnapshotAttributeOutput{}
	if f.public[aws.ToString(in.SnapshotId)] {
		out.CreateVolumePermissions = []ec2types.CreateVolumePermission{{Group: ec2types.PermissionGroupAll}}
	}
	return out, nil
}

func (f *fakeEC2) DescribeVpcs(context.Context, *ec2svc.DescribeVpcsInput, ...func(*ec2svc.Options)) (*ec2svc.DescribeVpcsOutput, error) {
	return &ec2svc.DescribeVpcsOutput{Vpcs: f.vpcs}, nil
}

func (f *fakeEC2) DescribeVpcAttribute(_ context.Context, in *ec2svc.DescribeVpcAttributeInput, _ ...func(*ec2svc.Options)) (*ec2svc.DescribeVpcAttributeOutput, error) {
	if f.dnsErr != nil {
		return nil, f.dnsErr
	}
	v := &ec2types.AttributeBooleanValue{Value: aws.Bool(f.dns[aws.ToString(in.VpcId)])}
	out := &ec2svc.DescribeVpcAttributeOutput{VpcId: in.VpcId}
	switch in.Attribute {
	case ec2types.VpcAttributeNameEnableDnsSupport:
		out.EnableDnsSupport = v
	case ec2types.VpcAttributeNameEnableDnsHostnames:
		out.EnableDnsHostnames = v
	}
	return out, nil
}

func (f *fakeEC2) DescribeFlowLogs(context.Context, *ec2svc.DescribeFlowLogsInput, ...func(*ec2svc.Options)) (*ec2svc.DescribeFlowLogsOutput, error) {
	return &ec2svc.DescribeFlowLogsOutput{FlowLogs: f.flowLogs}, nil
}

func (f *fakeEC2) DescribeSubnets(context.Context, *ec2svc.DescribeSubnetsInput, ...func(*ec2svc.Options)) (*ec2svc.DescribeSubnetsOutput, error) {
	return &ec2svc.DescribeSubnetsOutput{Subnets: f.subnets}, nil
}

func (f *fakeEC2) DescribeRouteTables(context.Context, *ec2svc.DescribeRouteTablesInput, ...func(*ec2svc.Options)) (*ec2svc.DescribeRouteTablesOutput, error) {
	return &ec2svc.DescribeRouteTablesOutput{RouteTables: f.routeTables}, nil
}

func (f *fakeEC2) DescribeNetworkAcls(context.Context, *ec2svc.DescribeNetworkAclsInput, ...func(*ec2svc.Options)) (*ec2svc.DescribeNetworkAclsOutput, error) {
	return &ec2svc.DescribeNetworkAclsOutput{NetworkAcls: f.acls}, nil
}

func (f *fakeEC2) DescribeInternetGateways(context.Context, *ec2svc.DescribeInternetGatewaysInput, ...func(*ec2svc.Options)) (*ec2svc.DescribeInternetGatewaysOutput, error) {
	return &ec2svc.DescribeInternetGatewaysOutput{InternetGateways: f.igws}, nil
}

// ── IAM ──────────────────────────────────────────────────────────────────────

type fakeIAM struct {
	iamAPIClient

	users     []iamtypes.User
	mfa       map[string]int
	keys      map[string][]iamtypes.AccessKeyMetadata
	logins    map[string]bool
	policies  []iamtypes.Policy
	documents map[string]string
	summary   map[string]int32
	password  *iamtypes.PasswordPolicy
}

func (f *fakeIAM) ListUsers(context.Context, *iamsvc.ListUsersInput, ...func(*iamsvc.Options)) (*iamsvc.ListUsersOutput, error) {
	return &iamsvc.ListUsersOutput{Users: f.users}, nil
}

func (f *fakeIAM) ListMFADevices(_ context.Context, in *iamsvc.ListMFADevicesInput, _ ...func(*iamsvc.Options)) (*iamsvc.ListMFADevicesOutput, error) {
	return &iamsvc.ListMFADevicesOutput{MFADevices: make([]iamtypes.MFADevice, f.mfa[aws.ToString(in.UserName)])}, nil
}

func (f *fakeIAM) ListAccessKeys(_ context.Context, in *iamsvc.ListAccessKeysInput, _ ...func(*iamsvc.Options)) (*iamsvc.ListAccessKeysOutput, error) {
	return &iamsvc.ListAccessKeysOutput{AccessKeyMetadata: f.keys[aws.ToString(in.UserName)]}, nil
}

func (f *fakeIAM) ListGroupsForUser(context.Context, *iamsvc.ListGroupsForUserInput, ...func(*iamsvc.Options)) (*iamsvc.ListGroupsForUserOutput, error) {
	return nil, errFake
}

func (f *fakeIAM) ListUserPolicies(context.Context, *iamsvc.ListUserPoliciesInput, ...func(*iamsvc.Options)) (*iamsvc.ListUserPoliciesOutput, error) {
	return &iamsvc.ListUserPoliciesOutput{PolicyNames: []string{"inline"}}, nil
}

func (f *fakeIAM) GetLoginProfile(_ context.Context, in *iamsvc.GetLoginProfileInput, _ ...func(*iamsvc.Options)) (*iamsvc.GetLoginProfileOutput, error) {
	if !f.logins[aws.ToString(in.UserName)] {
		return nil, errFake
	}
	return &iamsvc.GetLoginProfileOutput{}, nil
}

func (f *fakeIAM) ListPolicies(context.Context, *iamsvc.ListPoliciesInput, ...func(*iamsvc.Options)) (*iamsvc.ListPoliciesOutput, error) {
	return &iamsvc.ListPoliciesOutput{Policies: f.policies}, nil
}

func (f *fakeIAM) GetPolicyVersion(_ context.Context, in *iamsvc.GetPolicyVersionInput, _ ...func(*iamsvc.Options)) (*iamsvc.GetPolicyVersionOutput, error) {
	doc, ok := f.documents[aws.ToString(in.PolicyArn)]
	if !ok {
		return nil, errFake
	}
	return &iamsvc.GetPolicyVersionOutput{PolicyVersion: &iamtypes.PolicyVersion{Document: aws.String(doc)}}, nil
}

func (f *fakeIAM) ListGroups(context.Context, *iamsvc.ListGroupsInput, ...func(*iamsvc.Options)) (*iamsvc.ListGroupsOutput, error) {
	return &iamsvc.ListGroupsOutput{Groups: make([]iamtypes.Group, 2)}, nil
}

func (f *fakeIAM) ListRoles(context.Context, *iamsvc.ListRolesInput, ...func(*iamsvc.Options)) (*iamsvc.ListRolesOutput, error) {
	return &iamsvc.ListRolesOutput{Roles: make([]iamtypes.Role, 3)}, nil
}

func (f *fakeIAM) GetAccountPasswordPolicy(context.Context, *iamsvc.GetAccountPasswordPolicyInput, ...func(*iamsvc.Options)) (*iamsvc.GetAccountPasswordPolicyOutput, error) {
	if f.password == nil {
		return nil, errFake
	}
	return &iamsvc.GetAccountPasswordPolicyOutput{PasswordPolicy: f.password}, nil
}

func (f *fakeIAM) GetAccountSummary(context.Context, *iamsvc.GetAccountSummaryInput, ...func(*iamsvc.Options)) (*iamsvc.GetAccountSummaryOutput, error) {
	if f.summary == nil {
		return nil, errFake
	}
	return &iamsvc.GetAccountSummaryOutput{SummaryMap: f.summary}, nil
}

// ── S3 ───────────────────────────────────────────────────────────────────────

// fakeS3 answers every configuration lookup from per-bucket maps. A bucket
// missing from a map gets the error S3 returns for an unset sub-resource.
type fakeS3 struct {
	s3APIClient

	buckets   []string
	locations map[string]string
	policies  map[string]string
	tags      map[string]map[string]string
	versioned map[string]bool
	lifecycle map[string]int
	aclFails  bool
	objects   map[string]map[string]bool // bucket -> key -> public
}

func (f *fakeS3) ListBuckets(context.Context, *s3svc.ListBucketsInput, ...func(*s3svc.Options)) (*s3svc.ListBucketsOutput, error) {
	out := &s3svc.ListBucketsOutput{}
	for _, b := range f.buckets {
		out.Buckets = append(out.Buckets, s3types.Bucket{Name: aws.String(b)})
	}
	return out, nil
}

func (f *fakeS3) GetBucketLocation(_ context.Context, in *s3svc.GetBucketLocationInput, _ ...func(*s3svc.Options)) (*s3svc.GetBucketLocationOutput, error) {
	return &s3svc.GetBucketLocationOutput{
		LocationConstraint: s3types.BucketLocationConstraint(f.locations[aws.ToString(in.Bucket)]),
	}, nil
}

func (f *fakeS3) GetBucketPolicy(_ context.Context, in *s3svc.GetBucketPolicyInput, _ ...func(*s3svc.Options)) (*s3svc.GetBucketPolicyOutput, error) {
	p, ok := f.policies[aws.ToString(in.Bucket)]
	if !ok {
		return nil, errFake
	}
	return &s3svc.GetBucketPolicyOutput{Policy: aws.String(p)}, nil
}

func (f *fakeS3) GetBucketAcl(context.Context, *s3svc.GetBucketAclInput, ...func(*s3svc.Options)) (*s3svc.GetBucketAclOutput, error) {
	if f.aclFails {
		return nil, errFake
	}
	return &s3svc.GetBucketAclOutput{Grants: []s3types.Grant{{Permission: s3types.PermissionFullControl}}}, nil
}

func (f *fakeS3) GetBucketEncryption(context.Context, *s3svc.GetBucketEncryptionInput, ...func(*s3svc.Options)) (*s3svc.GetBucketEncryptionOutput, error) {
	return nil, errFake
}

func (f *fakeS3) GetBucketVersioning(_ context.Context, in *s3svc.GetBucketVersioningInput, _ ...func(*s3svc.Options)) (*s3svc.GetBucketVersioningOutput, error) {
	out := &s3svc.GetBucketVersioningOutput{}
	if f.versioned[aws.ToString(in.Bucket)] {
		out.Status = s3types.BucketVersioningStatusEnabled
	}
	return out, nil
}

func (f *fakeS3) GetPublicAccessBlock(context.Context, *s3svc.GetPublicAccessBlockInput, ...func(*s3svc.Options)) (*s3svc.GetPublicAccessBlockOutput, error) {
	return nil, errFake
}

func (f *fakeS3) GetBucketLogging(context.Context, *s3svc.GetBucketLoggingInput, ...func(*s3svc.Options)) (*s3svc.GetBucketLoggingOutput, error) {
	return &s3svc.GetBucketLoggingOutput{}, nil
}

func (f *fakeS3) GetBucketLifecycleConfiguration(_ context.Context, in *s3svc.GetBucketLifecycleConfigurationInput, _ ...func(*s3svc.Options)) (*s3svc.GetBucketLifecycleConfigurationOutput, error) {
	n, ok := f.lifecycle[aws.ToString(in.Bucket)]
	if !ok {
		return nil, errFake
	}
	return &s3svc.GetBucketLifecycleConfigurationOutput{Rules: make([]s3types.LifecycleRule, n)}, nil
}

func (f *fakeS3) GetBucketTagging(_ context.Context, in *s3svc.GetBucketTaggingInput, _ ...func(*s3svc.Options)) (*s3svc.GetBucketTaggingOutput, error) {
	tags, ok := f.tags[aws.ToString(in.Bucket)]
	if !ok {
		return nil, errFake
	}
	out := &s3svc.GetBucketTaggingOutput{}
	for k, v := range tags {
		out.TagSet = append(out.TagSet, s3types.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	return out, nil
}

func (f *fakeS3) GetObjectLockConfiguration(context.Context, *s3svc.GetObjectLockConfigurationInput, ...func(*s3svc.Options)) (*s3svc.GetObjectLockConfigurationOutput, error) {
	return nil, errFake
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3svc.ListObjectsV2Input, _ ...func(*s3svc.Options)) (*s3svc.ListObjectsV2Output, error) {
	out := &s3svc.ListObjectsV2Output{}
	for key := range f.objects[aws.ToString(in.Bucket)] {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(key)})
	}
	return out, nil
}

func (f *fakeS3) GetObjectAcl(_ context.Context, in *s3svc.GetObjectAclInput, _ ...func(*s3svc.Options)) (*s3svc.GetObjectAclOutput, error) {
	out := &s3svc.GetObjectAclOutput{}
	if f.objects[aws.ToString(in.Bucket)][aws.ToString(in.Key)] {
		out.Grants = []s3types.Grant{{
			Grantee:    &s3types.Grantee{URI: aws.String(models.S3AllUsersURI)},
			Permission: s3types.PermissionRead,
		}}
	}
	return out, nil
}

// ── CloudTrail ───────────────────────────────────────────────────────────────

type fakeCloudTrail struct {
	cloudTrailAPIClient

	trails    []cloudtrailtypes.Trail
	trailsErr error
	logging   map[string]bool
	selectors *cloudtrailsvc.GetEventSelectorsOutput
	tags      map[string]map[string]string
}

func (f *fakeCloudTrail) DescribeTrails(context.Context, *cloudtrailsvc.DescribeTrailsInput, ...func(*cloudtrailsvc.Options)) (*cloudtrailsvc.DescribeTrailsOutput, error) {
	if f.trailsErr != nil {
		return nil, f.trailsErr
	}
	return &cloudtrailsvc.DescribeTrailsOutput{TrailList: f.trails}, nil
}

func (f *fakeCloudTrail) GetTrailStatus(_ context.Context, in *cloudtrailsvc.GetTrailStatusInput, _ ...func(*cloudtrailsvc.Options)) (*cloudtrailsvc.GetTrailStatusOutput, error) {
	on, ok := f.logging[aws.ToString(in.Name)]
	if !ok {
		return nil, errFake
	}
	return &cloudtrailsvc.GetTrailStatusOutput{IsLogging: aws.Bool(on)}, nil
}

func (f *fakeCloudTrail) GetEventSelectors(context.Context, *cloudtrailsvc.GetEventSelectorsInput, ...func(*cloudtrailsvc.Options)) (*cloudtrailsvc.GetEventSelectorsOutput, error) {
	if f.selectors == nil {
		return nil, errFake
	}
	return f.selectors, nil
}

func (f *fakeCloudTrail) ListTags(_ context.Context, in *cloudtrailsvc.ListTagsInput, _ ...func(*cloudtrailsvc.Options)) (*cloudtrailsvc.ListTagsOutput, error) {
	out := &cloudtrailsvc.ListTagsOutput{}
	for _, id := range in.ResourceIdList {
		tags, ok := f.tags[id]
		if !ok {
			return nil, errFake
		}
		rt := cloudtrailtypes.ResourceTag{ResourceId: aws.String(id)}
		for k, v := range tags {
			rt.TagsList = append(rt.TagsList, cloudtrailtypes.Tag{Key: aws.String(k), Value: aws.String(v)})
		}
		out.ResourceTagList = append(out.ResourceTagList, rt)
	}
	return out, nil
}

// ── Lambda ───────────────────────────────────────────────────────────────────

type fakeLambda struct {
	lambdaAPIClient

	functions   []lambdatypes.FunctionConfiguration
	listErr     error
	concurrency map[string]int32
	tags        map[string]map[string]string
	policies    map[string]string
}

func (f *fakeLambda) ListFunctions(context.Context, *lambdasvc.ListFunctionsInput, ...func(*lambdasvc.Options)) (*lambdasvc.ListFunctionsOutput, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &lambdasvc.ListFunctionsOutput{Functions: f.functions}, nil
}

func (f *fakeLambda) GetFunction(_ context.Context, in *lambdasvc.GetFunctionInput, _ ...func(*lambdasvc.Options)) (*lambdasvc.GetFunctionOutput, error) {
	arn := aws.ToString(in.FunctionName)
	n, ok := f.concurrency[arn]
	if !ok {
		return nil, errFake
	}
	return &lambdasvc.GetFunctionOutput{
		Concurrency: &lambdatypes.Concurrency{ReservedConcurrentExecutions: aws.Int32(n)},
		Tags:        f.tags[arn],
	}, nil
}

func (f *fakeLambda) GetPolicy(_ context.Context, in *lambdasvc.GetPolicyInput, _ ...func(*lambdasvc.Options)) (*lambdasvc.GetPolicyOutput, error) {
	p, ok := f.policies[aws.ToString(in.FunctionName)]
	if !ok {
		return nil, errFake
	}
	return &lambdasvc.GetPolicyOutput{Policy: aws.String(p)}, nil
}

// ── RDS ──────────────────────────────────────────────────────────────────────

type fakeRDS struct {
	rdsAPIClient

	instances    []rdstypes.DBInstance
	snapshots    []rdstypes.DBSnapshot
	snapshotsErr error
	groups       []rdstypes.DBSubnetGroup
}

func (f *fakeRDS) DescribeDBInstances(context.Context, *rdssvc.DescribeDBInstancesInput, ...func(*rdssvc.Options)) (*rdssvc.DescribeDBInstancesOutput, error) {
	return &rdssvc.DescribeDBInstancesOutput{DBInstances: f.instances}, nil
}

func (f *fakeRDS) DescribeDBSnapshots(context.Context, *rdssvc.DescribeDBSnapshotsInput, ...func(*rdssvc.Options)) (*rdssvc.DescribeDBSnapshotsOutput, error) {
	if f.snapshotsErr != nil {
		return nil, f.snapshotsErr
	}
	return &rdssvc.DescribeDBSnapshotsOutput{DBSnapshots: f.snapshots}, nil
}

func (f *fakeRDS) DescribeDBSubnetGroups(context.Context, *rdssvc.DescribeDBSubnetGroupsInput, ...func(*rdssvc.Options)) (*rdssvc.DescribeDBSubnetGroupsOutput, error) {
	return &rdssvc.DescribeDBSubnetGroupsOutput{DBSubnetGroups: f.groups}, nil
}

// ── SNS ──────────────────────────────────────────────────────────────────────

type fakeSNS struct {
	snsAPIClient

	topics    []string
	topicsErr error
	attrs     map[string]map[string]string
	subs      map[string][]snstypes.Subscription
	tags      map[string]map[string]string
}

func (f *fakeSNS) ListTopics(context.Context, *snssvc.ListTopicsInput, ...func(*snssvc.Options)) (*snssvc.ListTopicsOutput, error) {
	if f.topicsErr != nil {
		return nil, f.topicsErr
	}
	out := &snssvc.ListTopicsOutput{}
	for _, arn := range f.topics {
		out.Topics = append(out.Topics, snstypes.Topic{TopicArn: aws.String(arn)})
	}
	return out, nil
}

func (f *fakeSNS) GetTopicAttributes(_ context.Context, in *snssvc.GetTopicAttributesInput, _ ...func(*snssvc.Options)) (*snssvc.GetTopicAttributesOutput, error) {
	a, ok := f.attrs[aws.ToString(in.TopicArn)]
	if !ok {
		return nil, errFake
	}
	return &snssvc.GetTopicAttributesOutput{Attributes: a}, nil
}

func (f *fakeSNS) ListSubscriptionsByTopic(_ context.Context, in *snssvc.ListSubscriptionsByTopicInput, _ ...func(*snssvc.Options)) (*snssvc.ListSubscriptionsByTopicOutput, error) {
	subs, ok := f.subs[aws.ToString(in.TopicArn)]
	if !ok {
		return nil, errFake
	}
	return &snssvc.ListSubscriptionsByTopicOutput{Subscriptions: subs}, nil
}

func (f *fakeSNS) ListTagsForResource(_ context.Context, in *snssvc.ListTagsForResourceInput, _ ...func(*snssvc.Options)) (*snssvc.ListTagsForResourceOutput, error) {
	tags, ok := f.tags[aws.ToString(in.ResourceArn)]
	if !ok {
		return nil, errFake
	}
	out := &snssvc.ListTagsForResourceOutput{}
	for k, v := range tags {
		out.Tags = append(out.Tags, snstypes.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	return out, nil
}

// ── ELB ──────────────────────────────────────────────────────────────────────

type fakeELB struct {
	elbAPIClient
	descriptions []elbtypes.LoadBalancerDescription
	attributes   *elbtypes.LoadBalancerAttributes
}

func (f *fakeELB) DescribeLoadBalancers(context.Context, *elbsvc.DescribeLoadBalancersInput, ...func(*elbsvc.Options)) (*elbsvc.DescribeLoadBalancersOutput, error) {
	return &elbsvc.DescribeLoadBalancersOutput{LoadBalancerDescriptions: f.descriptions}, nil
}

func (f *fakeELB) DescribeLoadBalancerAttributes(context.Context, *elbsvc.DescribeLoadBalancerAttributesInput, ...func(*elbsvc.Options)) (*elbsvc.DescribeLoadBalancerAttributesOutput, error) {
	if f.attributes == nil {
		return nil, errFake
	}
	return &elbsvc.DescribeLoadBalancerAttributesOutput{LoadBalancerAttributes: f.attributes}, nil
}

func (f *fakeELB) DescribeTags(context.Context, *elbsvc.DescribeTagsInput, ...func(*elbsvc.Options)) (*elbsvc.DescribeTagsOutput, error) {
	return &elbsvc.DescribeTagsOutput{}, nil
}

type fakeELBv2 struct {
	elbv2APIClient
	lbs []elbv2types.LoadBalancer
}

func (f *fakeELBv2) DescribeLoadBalancers(context.Context, *elbv2svc.DescribeLoadBalancersInput, ...func(*elbv2svc.Options)) (*elbv2svc.DescribeLoadBalancersOutput, error) {
	return &elbv2svc.DescribeLoadBalancersOutput{LoadBalancers: f.lbs}, nil
}

func (f *fakeELBv2) DescribeListeners(context.Context, *elbv2svc.DescribeListenersInput, ...func(*elbv2svc.Options)) (*elbv2svc.DescribeListenersOutput, error) {
	return &elbv2svc.DescribeListenersOutput{Listeners: []elbv2types.Listener{{
		Protocol:     elbv2types.ProtocolEnumHttps,
		Port:         aws.Int32(443),
		Certificates: []elbv2types.Certificate{{CertificateArn: aws.String("arn:aws:acm:cert")}},
	}}}, nil
}

func (f *fakeELBv2) DescribeLoadBalancerAttributes(context.Context, *elbv2svc.DescribeLoadBalancerAttributesInput, ...func(*elbv2svc.Options)) (*elbv2svc.DescribeLoadBalancerAttributesOutput, error) {
	return &elbv2svc.DescribeLoadBalancerAttributesOutput{Attributes: []elbv2types.LoadBalancerAttribute{
		{Key: aws.String(models.LBAttrDeletionProtection), Value: aws.String("true")},
	}}, nil
}

func (f *fakeELBv2) DescribeTags(context.Context, *elbv2svc.DescribeTagsInput, ...func(*elbv2svc.Options)) (*elbv2svc.DescribeTagsOutput, error) {
	return nil, errFake
}

// ── SQS and CloudWatch ───────────────────────────────────────────────────────

type fakeSQS struct {
	sqsAPIClient
	urls  []string
	attrs map[string]map[string]string
}

func (f *fakeSQS) ListQueues(context.Context, *sqssvc.ListQueuesInput, ...func(*sqssvc.Options)) (*sqssvc.ListQueuesOutput, error) {
	return &sqssvc.ListQueuesOutput{QueueUrls: f.urls}, nil
}

func (f *fakeSQS) GetQueueAttributes(_ context.Context, in *sqssvc.GetQueueAttributesInput, _ ...func(*sqssvc.Options)) (*sqssvc.GetQueueAttributesOutput, error) {
	a, ok := f.attrs[aws.ToString(in.QueueUrl)]
	if !ok {
		return nil, errFake
	}
	return &sqssvc.GetQueueAttributesOutput{Attributes: a}, nil
}

func (f *fakeSQS) ListQueueTags(context.Context, *sqssvc.ListQueueTagsInput, ...func(*sqssvc.Options)) (*sqssvc.ListQueueTagsOutput, error) {
	return &sqssvc.ListQueueTagsOutput{}, nil
}

// fakeCloudWatch reports metrics for the dimension values it knows.
type fakeCloudWatch struct {
	cloudWatchAPIClient
	withMetrics map[string]bool
}

func (f *fakeCloudWatch) ListMetrics(_ context.Context, in *cloudwatchsvc.ListMetricsInput, _ ...func(*cloudwatchsvc.Options)) (*cloudwatchsvc.ListMetricsOutput, error) {
	out := &cloudwatchsvc.ListMetricsOutput{}
	for _, d := range in.Dimensions {
		if f.withMetrics[aws.ToString(d.Value)] {
			out.Metrics = append(out.Metrics, cwtypes.Metric{Namespace: in.Namespace})
		}
	}
	return out, nil
}
