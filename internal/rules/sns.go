package rules

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/policydoc"
)

type snsRule = Rule[models.SNSInventory]

// secureProtocols are the subscription protocols that never deliver in
// clear text.
var secureProtocols = []string{"https", "sqs", "lambda", "sms"}

const (
	maxTopicSubscriptions = 100
	maxMessageSizeBytes   = 256 * 1024
)

// EvaluateSNS runs the SNS catalogue. Topics are identified by ARN.
func EvaluateSNS(inv models.SNSInventory, opts Options) models.ServiceReport {
	idx := NewRegionIndex()
	for _, tp := range inv.Topics {
		idx.Asset(tp.ARN, tp.Region)
	}
	t := NewTally(idx)
	if t.Exists(existenceChecks[models.ServiceSNS], len(inv.Topics) > 0,
		"SNS topics are present.", "No SNS topics found.") {
		snsCatalogue.Run(t, inv, opts.withDefaults())
	}
	return t.Report()
}

func topicsWhere(bad func(models.SNSTopic) bool) func(models.SNSInventory, Options) []Offender {
	return func(inv models.SNSInventory, _ Options) []Offender {
		return offenders(inv.Topics, func(tp models.SNSTopic) Offender { return Offender{ID: tp.ARN} }, bad)
	}
}

// arnField returns the i-th colon separated field of arn, or "".
func arnField(arn string, i int) string {
	parts := strings.SplitN(arn, ":", 6)
	if i >= len(parts) {
		return ""
	}
	return parts[i]
}

// resourceName returns the last colon separated field of arn.
func resourceName(arn string) string {
	return arn[strings.LastIndex(arn, ":")+1:]
}

// deliveryPolicy is the subset of an SNS delivery policy the checks read.
type deliveryPolicy struct {
	HTTP struct {
		DefaultHealthyRetryPolicy struct {
			MaxMessageSize int64 `json:"maxMessageSize"`
		} `json:"defaultHealthyRetryPolicy"`
	} `json:"http"`
}

func topicMessageLimit(tp models.SNSTopic) int64 {
	raw := tp.Attributes["DeliveryPolicy"]
	if raw == "" {
		return 0
	}
	var p deliveryPolicy
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return 0
	}
	return p.HTTP.DefaultHealthyRetryPolicy.MaxMessageSize
}

// logsDeliveryStatus reports whether any protocol has a success feedback
// role configured.
func logsDeliveryStatus(tp models.SNSTopic) bool {
	for k, v := range tp.Attributes {
		if strings.HasSuffix(k, "SuccessFeedbackRoleArn") && v != "" {
			return true
		}
	}
	return false
}

// publicResourcePolicy reports whether the resource policy held in the
// named attribute is open to everyone. Unreadable policies count as open.
func publicResourcePolicy(attrs map[string]string, key string) bool {
	raw := attrs[key]
	if raw == "" {
		return false
	}
	doc, err := policydoc.Parse(raw)
	return err != nil || doc.PubliclyAccessible()
}

var snsCatalogue = NewCatalogue(
	snsRule{
		Name:  "Topic Encryption",
		Pass:  "All SNS topics are encrypted with KMS.",
		Fail:  "Some topics (%s) lack encryption.",
		Check: topicsWhere(func(tp models.SNSTopic) bool { return tp.Attributes["KmsMasterKeyId"] == "" }),
	},
	snsRule{
		Name:  "Subscriptions Exist",
		Pass:  "All SNS topics have at least one subscription.",
		Fail:  "Some topics (%s) lack subscriptions.",
		Check: topicsWhere(func(tp models.SNSTopic) bool { return len(tp.Subscriptions) == 0 }),
	},
	snsRule{
		Name:  "SNS Tagging",
		Pass:  "All SNS topics are tagged.",
		Fail:  "Some topics (%s) lack tags.",
		Check: topicsWhere(func(tp models.SNSTopic) bool { return len(tp.Tags) == 0 }),
	},
	snsRule{
		Name:  "Display Name Present",
		Pass:  "All SNS topics have a display name.",
		Fail:  "Some topics (%s) lack a display name.",
		Check: topicsWhere(func(tp models.SNSTopic) bool { return strings.TrimSpace(tp.Attributes["DisplayName"]) == "" }),
	},
	snsRule{
		Name:  "Delivery Status Logging",
		Pass:  "All SNS topics have delivery status logging enabled.",
		Fail:  "Some topics (%s) lack delivery status logging.",
		Check: topicsWhere(func(tp models.SNSTopic) bool { return !logsDeliveryStatus(tp) }),
	},
	snsRule{
		Name:  "Restrictive Access Policy",
		Pass:  "All SNS topics have restrictive access policies.",
		Fail:  "Some topics (%s) have overly permissive policies.",
		Check: topicsWhere(func(tp models.SNSTopic) bool { return publicResourcePolicy(tp.Attributes, "Policy") }),
	},
	snsRule{
		Name: "Secure Endpoints",
		Pass: "All SNS subscriptions use secure endpoints.",
		Fail: "Some topics (%s) use insecure protocols.",
		Check: topicsWhere(func(tp models.SNSTopic) bool {
			for _, s := range tp.Subscriptions {
				if !slices.Contains(secureProtocols, s.Protocol) {
					return true
				}
			}
			return false
		}),
	},
	snsRule{
		Name:  "Reasonable Subscription Count",
		Pass:  "All SNS topics have 100 or fewer subscriptions.",
		Fail:  "Some topics (%s) have excessive subscriptions.",
		Check: topicsWhere(func(tp models.SNSTopic) bool { return len(tp.Subscriptions) > maxTopicSubscriptions }),
	},
	snsRule{
		Name: "Topic Ownership",
		Pass: "All SNS topics are owned by the current account.",
		Fail: "Some topics (%s) are owned by a different account.",
		Check: topicsWhere(func(tp models.SNSTopic) bool {
			return tp.Attributes["Owner"] != arnField(tp.ARN, 4)
		}),
	},
	snsRule{
		Name: "Subscriptions Confirmed",
		Pass: "All SNS subscriptions are confirmed.",
		Fail: "Some topics (%s) have pending subscriptions.",
		Check: topicsWhere(func(tp models.SNSTopic) bool {
			for _, s := range tp.Subscriptions {
				if s.ARN == "PendingConfirmation" {
					return true
				}
			}
			return false
		}),
	},
	snsRule{
		Name:  "Non-FIFO Topics",
		Pass:  "All SNS topics are non-FIFO (standard).",
		Fail:  "Some topics (%s) are FIFO (ensure intentional).",
		Check: topicsWhere(func(tp models.SNSTopic) bool { return tp.Attributes["FifoTopic"] == "true" }),
	},
	snsRule{
		Name:  "Reasonable Message Size",
		Pass:  "All SNS topics have a reasonable message size limit (<= 256 KB).",
		Fail:  "Some topics (%s) allow excessive message sizes.",
		Check: topicsWhere(func(tp models.SNSTopic) bool { return topicMessageLimit(tp) > maxMessageSizeBytes }),
	},
	snsRule{
		Name:  "CloudWatch Metrics",
		Pass:  "All SNS topics publish CloudWatch metrics.",
		Fail:  "Some topics (%s) may lack CloudWatch metrics.",
		Check: topicsWhere(func(tp models.SNSTopic) bool { return !tp.HasMetrics }),
	},
	snsRule{
		Name: "Topic Descriptions",
		Pass: "All SNS topics have descriptions (via tags or meaningful names).",
		Fail: "Some topics (%s) lack descriptions.",
		Check: topicsWhere(func(tp models.SNSTopic) bool {
			_, tagged := tp.Tags["Description"]
			return !tagged && len(resourceName(tp.ARN)) <= 3
		}),
	},
)
