package rules

import (
	"strconv"
	"strings"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

type sqsRule = Rule[models.SQSInventory]

// Queue attribute ceilings, in the units SQS reports them.
const (
	maxVisibilityTimeoutSeconds = 43200
	maxQueueMessageBytes        = 262144
	maxDelaySeconds             = 900
	maxRetentionSeconds         = 1209600
	maxReceiveWaitSeconds       = 20
)

// EvaluateSQS runs the SQS catalogue. Queues are identified by URL.
func EvaluateSQS(inv models.SQSInventory, opts Options) models.ServiceReport {
	idx := NewRegionIndex()
	for _, q := range inv.Queues {
		idx.Asset(q.URL, q.Region)
	}
	t := NewTally(idx)
	if t.Exists(existenceChecks[models.ServiceSQS], len(inv.Queues) > 0,
		"SQS queues are present.", "No SQS queues found.") {
		sqsCatalogue.Run(t, inv, opts.withDefaults())
	}
	return t.Report()
}

func queuesWhere(bad func(models.SQSQueue) bool) func(models.SQSInventory, Options) []Offender {
	return func(inv models.SQSInventory, _ Options) []Offender {
		return offenders(inv.Queues, func(q models.SQSQueue) Offender { return Offender{ID: q.URL} }, bad)
	}
}

// exceeds reports whether the numeric attribute key is above limit. Missing
// or malformed values never exceed.
func exceeds(q models.SQSQueue, key string, limit int) bool {
	n, err := strconv.Atoi(q.Attributes[key])
	return err == nil && n > limit
}

// queueURLAccount extracts the account id from
// https://sqs.<region>.amazonaws.com/<account>/<name>.
func queueURLAccount(url string) string {
	parts := strings.Split(strings.TrimSuffix(url, "/"), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}

func queueName(url string) string {
	return url[strings.LastIndex(url, "/")+1:]
}

var sqsCatalogue = NewCatalogue(
	sqsRule{
		Name: "Queue Encryption",
		Pass: "All SQS queues are encrypted.",
		Fail: "Some queues (%s) lack encryption.",
		Check: queuesWhere(func(q models.SQSQueue) bool {
			return q.Attributes["SqsManagedSseEnabled"] != "true" && q.Attributes["KmsMasterKeyId"] == ""
		}),
	},
	sqsRule{
		Name:  "Reasonable Visibility Timeout",
		Pass:  "All SQS queues have a visibility timeout of 12 hours or less.",
		Fail:  "Some queues (%s) have excessive timeouts.",
		Check: queuesWhere(func(q models.SQSQueue) bool { return exceeds(q, "VisibilityTimeout", maxVisibilityTimeoutSeconds) }),
	},
	sqsRule{
		Name:  "SQS Tagging",
		Pass:  "All SQS queues are tagged.",
		Fail:  "Some queues (%s) lack tags.",
		Check: queuesWhere(func(q models.SQSQueue) bool { return len(q.Tags) == 0 }),
	},
	sqsRule{
		Name:  "Restrictive Access Policy",
		Pass:  "All SQS queues have restrictive access policies.",
		Fail:  "Some queues (%s) have overly permissive policies.",
		Check: queuesWhere(func(q models.SQSQueue) bool { return publicResourcePolicy(q.Attributes, "Policy") }),
	},
	sqsRule{
		Name:  "Dead-Letter Queue",
		Pass:  "All SQS queues have a dead-letter queue configured.",
		Fail:  "Some queues (%s) lack a dead-letter queue.",
		Check: queuesWhere(func(q models.SQSQueue) bool { return q.Attributes["RedrivePolicy"] == "" }),
	},
	sqsRule{
		Name:  "Reasonable Message Size",
		Pass:  "All SQS queues have a maximum message size of 256 KB or less.",
		Fail:  "Some queues (%s) allow oversized messages.",
		Check: queuesWhere(func(q models.SQSQueue) bool { return exceeds(q, "MaximumMessageSize", maxQueueMessageBytes) }),
	},
	sqsRule{
		Name:  "Reasonable Delay",
		Pass:  "All SQS queues have a delay of 15 minutes or less.",
		Fail:  "Some queues (%s) have excessive delays.",
		Check: queuesWhere(func(q models.SQSQueue) bool { return exceeds(q, "DelaySeconds", maxDelaySeconds) }),
	},
	sqsRule{
		Name: "FIFO Deduplication",
		Pass: "All FIFO SQS queues have content-based deduplication enabled.",
		Fail: "Some FIFO queues (%s) lack deduplication.",
		Check: queuesWhere(func(q models.SQSQueue) bool {
			return q.Attributes["FifoQueue"] == "true" && q.Attributes["ContentBasedDeduplication"] != "true"
		}),
	},
	sqsRule{
		Name:  "Reasonable Retention Period",
		Pass:  "All SQS queues have a retention period of 14 days or less.",
		Fail:  "Some queues (%s) have excessive retention.",
		Check: queuesWhere(func(q models.SQSQueue) bool { return exceeds(q, "MessageRetentionPeriod", maxRetentionSeconds) }),
	},
	sqsRule{
		Name: "Queue Ownership",
		Pass: "All SQS queues are owned by the current account.",
		Fail: "Some queues (%s) are owned by a different account.",
		Check: queuesWhere(func(q models.SQSQueue) bool {
			return arnField(q.Attributes["QueueArn"], 4) != queueURLAccount(q.URL)
		}),
	},
	sqsRule{
		Name:  "CloudWatch Metrics",
		Pass:  "All SQS queues publish CloudWatch metrics.",
		Fail:  "Some queues (%s) may lack metrics.",
		Check: queuesWhere(func(q models.SQSQueue) bool { return !q.HasMetrics }),
	},
	sqsRule{
		Name:  "Reasonable Receive Wait Time",
		Pass:  "All SQS queues have a receive wait time of 20 seconds or less.",
		Fail:  "Some queues (%s) have excessive wait times.",
		Check: queuesWhere(func(q models.SQSQueue) bool { return exceeds(q, "ReceiveMessageWaitTimeSeconds", maxReceiveWaitSeconds) }),
	},
	sqsRule{
		Name: "Queue Descriptions",
		Pass: "All SQS queues have descriptions (via tags or meaningful names).",
		Fail: "Some queues (%s) lack descriptions.",
		Check: queuesWhere(func(q models.SQSQueue) bool {
			_, tagged := q.Tags["Description"]
			return !tagged && len(queueName(q.URL)) <= 3
		}),
	},
	sqsRule{
		Name:  "KMS Encryption",
		Pass:  "All SQS queues use KMS encryption.",
		Fail:  "Some queues (%s) use SSE or no encryption instead of KMS.",
		Check: queuesWhere(func(q models.SQSQueue) bool { return q.Attributes["KmsMasterKeyId"] == "" }),
	},
)
