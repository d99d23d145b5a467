package models

// ---------------------------------------------------------------------------
// Lambda
// ---------------------------------------------------------------------------

// LambdaFunction is one function merged with its configuration, resource
// policy and tags. Policy is nil when the function has no resource policy.
// ReservedConcurrency is nil when no concurrency limit is configured.
type LambdaFunction struct {
	Name                string            `json:"name"`
	ARN                 string            `json:"arn"`
	Region              string            `json:"region"`
	Runtime             string            `json:"runtime,omitempty"`
	Role                string            `json:"role,omitempty"`
	Description         string            `json:"description,omitempty"`
	TimeoutSeconds      int32             `json:"timeout_seconds"`
	MemoryMB            int32             `json:"memory_mb"`
	VPCID               string            `json:"vpc_id,omitempty"`
	TracingMode         string            `json:"tracing_mode,omitempty"`
	HasEnvironment      bool              `json:"has_environment"`
	KMSKeyARN           string            `json:"kms_key_arn,omitempty"`
	DeadLetterTarget    string            `json:"dead_letter_target,omitempty"`
	LayerARNs           []string          `json:"layer_arns,omitempty"`
	ReservedConcurrency *int32            `json:"reserved_concurrency,omitempty"`
	LastUpdateStatus    string            `json:"last_update_status,omitempty"`
	Policy              *string           `json:"policy,omitempty"`
	Tags                map[string]string `json:"tags,omitempty"`
}

// LambdaInventory is everything the Lambda checks evaluate.
type LambdaInventory struct {
	Functions []LambdaFunction `json:"functions"`
}

// ---------------------------------------------------------------------------
// SNS
// ---------------------------------------------------------------------------

// SNSSubscription is one subscription of a topic. ARN is the literal
// "PendingConfirmation" while the endpoint has not confirmed.
type SNSSubscription struct {
	ARN      string `json:"arn"`
	Protocol string `json:"protocol"`
	Endpoint string `json:"endpoint,omitempty"`
}

// SNSTopic is one topic with its attributes, subscriptions and tags.
// HasMetrics is true when CloudWatch lists at least one metric for the topic.
type SNSTopic struct {
	ARN           string            `json:"arn"`
	Region        string            `json:"region"`
	Attributes    map[string]string `json:"attributes,omitempty"`
	Subscriptions []SNSSubscription `json:"subscriptions,omitempty"`
	Tags          map[string]string `json:"tags,omitempty"`
	HasMetrics    bool              `json:"has_metrics"`
}

// SNSInventory is everything the SNS checks evaluate.
type SNSInventory struct {
	Topics []SNSTopic `json:"topics"`
}

// ---------------------------------------------------------------------------
// SQS
// ---------------------------------------------------------------------------

// SQSQueue is one queue with all its attributes and tags. HasMetrics is true
// when CloudWatch lists at least one metric for the queue.
type SQSQueue struct {
	URL        string            `json:"url"`
	Region     string            `json:"region"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`
	HasMetrics bool              `json:"has_metrics"`
}

// SQSInventory is everything the SQS checks evaluate.
type SQSInventory struct {
	Queues []SQSQueue `json:"queues"`
}
