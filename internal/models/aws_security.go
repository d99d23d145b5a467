package models

import "time"

// ---------------------------------------------------------------------------
// S3
// ---------------------------------------------------------------------------

// Grantee URIs of the predefined S3 groups that make a grant public.
const (
	S3AllUsersURI           = "http://acs.amazonaws.com/groups/global/AllUsers"
	S3AuthenticatedUsersURI = "http://acs.amazonaws.com/groups/global/AuthenticatedUsers"
)

// S3Grant is one ACL grant on a bucket or object.
type S3Grant struct {
	GranteeURI string `json:"grantee_uri,omitempty"`
	Permission string `json:"permission"`
}

// S3Encryption is a bucket's default encryption configuration. Algorithms
// lists the SSE algorithm of every rule ("AES256", "aws:kms", ...).
type S3Encryption struct {
	Algorithms []string `json:"algorithms"`
}

// S3PublicAccessBlock mirrors the four public access block flags.
type S3PublicAccessBlock struct {
	BlockPublicACLs       bool `json:"block_public_acls"`
	IgnorePublicACLs      bool `json:"ignore_public_acls"`
	BlockPublicPolicy     bool `json:"block_public_policy"`
	RestrictPublicBuckets bool `json:"restrict_public_buckets"`
}

// FullyBlocked reports whether all four flags are set.
func (p *S3PublicAccessBlock) FullyBlocked() bool {
	return p != nil && p.BlockPublicACLs && p.IgnorePublicACLs && p.BlockPublicPolicy && p.RestrictPublicBuckets
}

// S3Bucket is one bucket with its sub-resources. A nil pointer field means the
// sub-resource does not exist (or could not be read): no bucket policy, no
// default encryption, no public access block.
//
// Region is the bucket location as reported by GetBucketLocation.
// PublicObjectKeys lists sampled object keys whose ACL grants AllUsers READ.
type S3Bucket struct {
	Name              string               `json:"name"`
	Region            string               `json:"region"`
	CreationDate      time.Time            `json:"creation_date"`
	Policy            *string              `json:"policy,omitempty"`
	ACL               []S3Grant            `json:"acl,omitempty"`
	Encryption        *S3Encryption        `json:"encryption,omitempty"`
	VersioningStatus  string               `json:"versioning_status,omitempty"`
	PublicAccessBlock *S3PublicAccessBlock `json:"public_access_block,omitempty"`
	LoggingEnabled    bool                 `json:"logging_enabled"`
	LifecycleRules    int                  `json:"lifecycle_rules"`
	Tags              map[string]string    `json:"tags,omitempty"`
	ObjectLockEnabled bool                 `json:"object_lock_enabled"`
	PublicObjectKeys  []string             `json:"public_object_keys,omitempty"`
}

// S3Inventory is everything the S3 checks evaluate.
type S3Inventory struct {
	Buckets []S3Bucket `json:"buckets"`
}

// ---------------------------------------------------------------------------
// IAM
// ---------------------------------------------------------------------------

// IAMAccessKey is the metadata of one user access key.
type IAMAccessKey struct {
	AccessKeyID string    `json:"access_key_id"`
	Status      string    `json:"status"`
	CreateDate  time.Time `json:"create_date"`
}

// Active reports whether the key can be used to sign requests.
func (k IAMAccessKey) Active() bool { return k.Status == "Active" }

// IAMUser is one IAM user together with the per-user lookups its checks need.
// PasswordLastUsed is nil when the user never signed in to the console.
type IAMUser struct {
	UserName         string         `json:"user_name"`
	ARN              string         `json:"arn"`
	CreateDate       time.Time      `json:"create_date"`
	PasswordLastUsed *time.Time     `json:"password_last_used,omitempty"`
	MFADevices       int            `json:"mfa_devices"`
	AccessKeys       []IAMAccessKey `json:"access_keys,omitempty"`
	Groups           int            `json:"groups"`
	InlinePolicies   int            `json:"inline_policies"`
	HasLoginProfile  bool           `json:"has_login_profile"`
}

// IAMPolicy is one customer managed policy. Document holds the decoded JSON
// of the default version; nil when GetPolicyVersion failed.
type IAMPolicy struct {
	Name     string  `json:"name"`
	ARN      string  `json:"arn"`
	Document *string `json:"document,omitempty"`
}

// IAMPasswordPolicy is the account password policy.
type IAMPasswordPolicy struct {
	MinimumLength    int32 `json:"minimum_length"`
	RequireSymbols   bool  `json:"require_symbols"`
	RequireNumbers   bool  `json:"require_numbers"`
	RequireUppercase bool  `json:"require_uppercase"`
	RequireLowercase bool  `json:"require_lowercase"`
}

// IAMInventory is everything the IAM checks evaluate. Summary is the raw
// GetAccountSummary map. PasswordPolicy is nil when the account has none.
type IAMInventory struct {
	Summary        map[string]int32   `json:"summary"`
	Users          []IAMUser          `json:"users"`
	Policies       []IAMPolicy        `json:"policies"`
	Groups         int                `json:"groups"`
	Roles          int                `json:"roles"`
	PasswordPolicy *IAMPasswordPolicy `json:"password_policy,omitempty"`
}

// ---------------------------------------------------------------------------
// CloudTrail
// ---------------------------------------------------------------------------

// TrailEventSelector is one event selector of a trail. Advanced selectors
// are folded into the same shape.
type TrailEventSelector struct {
	ReadWriteType string `json:"read_write_type"`
	DataResources int    `json:"data_resources"`
	Advanced      bool   `json:"advanced,omitempty"`
}

// Trail is one trail with its status, selectors, tags and the state of its
// destination bucket. Status fields are zero when GetTrailStatus failed.
type Trail struct {
	Name                  string               `json:"name"`
	ARN                   string               `json:"arn"`
	Region                string               `json:"region"`
	HomeRegion            string               `json:"home_region,omitempty"`
	IsMultiRegion         bool                 `json:"is_multi_region"`
	IncludeGlobalEvents   bool                 `json:"include_global_events"`
	LogFileValidation     bool                 `json:"log_file_validation"`
	S3BucketName          string               `json:"s3_bucket_name,omitempty"`
	KMSKeyID              string               `json:"kms_key_id,omitempty"`
	CloudWatchLogGroupARN string               `json:"cloudwatch_log_group_arn,omitempty"`
	SNSTopicARN           string               `json:"sns_topic_arn,omitempty"`
	IsLogging             bool                 `json:"is_logging"`
	LatestDeliveryTime    *time.Time           `json:"latest_delivery_time,omitempty"`
	EventSelectors        []TrailEventSelector `json:"event_selectors,omitempty"`
	Tags                  map[string]string    `json:"tags,omitempty"`
	BucketLifecycleRules  int                  `json:"bucket_lifecycle_rules"`
	BucketACL             []S3Grant            `json:"bucket_acl,omitempty"`
}

// CloudTrailInventory is everything the CloudTrail checks evaluate.
type CloudTrailInventory struct {
	Trails []Trail `json:"trails"`
}
