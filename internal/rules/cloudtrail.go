package rules

import (
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

type trailRule = Rule[models.CloudTrailInventory]

// EvaluateCloudTrail runs the CloudTrail catalogue. Trails are identified
// by ARN and reported by name; a multi-region trail shadowed into several
// regions counts once, in the region it was first listed from.
func EvaluateCloudTrail(inv models.CloudTrailInventory, opts Options) models.ServiceReport {
	idx := NewRegionIndex()
	for _, tr := range inv.Trails {
		idx.Asset(tr.ARN, tr.Region)
	}
	t := NewTally(idx)
	if t.Exists(existenceChecks[models.ServiceCloudTrail], len(inv.Trails) > 0,
		"CloudTrail trails are present.",
		"No CloudTrail trails found (critical for auditing).") {
		trailCatalogue.Run(t, inv, opts.withDefaults())
	}
	return t.Report()
}

func trailsWhere(bad func(models.Trail, Options) bool) func(models.CloudTrailInventory, Options) []Offender {
	return func(inv models.CloudTrailInventory, opts Options) []Offender {
		return offenders(inv.Trails, func(tr models.Trail) Offender {
			return Offender{ID: tr.ARN, Label: tr.Name}
		}, func(tr models.Trail) bool { return bad(tr, opts) })
	}
}

func logsManagementEvents(tr models.Trail) bool {
	for _, es := range tr.EventSelectors {
		if es.ReadWriteType == "All" || es.ReadWriteType == "WriteOnly" {
			return true
		}
	}
	return false
}

func logsDataEvents(tr models.Trail) bool {
	for _, es := range tr.EventSelectors {
		if es.DataResources > 0 {
			return true
		}
	}
	return false
}

var trailCatalogue = NewCatalogue(
	trailRule{
		Name:  "Trails Enabled",
		Pass:  "All CloudTrail trails are enabled.",
		Fail:  "Some trails (%s) are not logging.",
		Check: trailsWhere(func(tr models.Trail, _ Options) bool { return !tr.IsLogging }),
	},
	trailRule{
		Name:  "Multi-Region Trails",
		Pass:  "All CloudTrail trails are multi-region.",
		Fail:  "Some trails (%s) are not multi-region.",
		Check: trailsWhere(func(tr models.Trail, _ Options) bool { return !tr.IsMultiRegion }),
	},
	trailRule{
		Name:  "Global Service Events",
		Pass:  "All CloudTrail trails log global service events.",
		Fail:  "Some trails (%s) do not log global service events.",
		Check: trailsWhere(func(tr models.Trail, _ Options) bool { return !tr.IncludeGlobalEvents }),
	},
	trailRule{
		Name:  "S3 Bucket Defined",
		Pass:  "All CloudTrail trails have an S3 bucket.",
		Fail:  "Some trails (%s) lack an S3 bucket.",
		Check: trailsWhere(func(tr models.Trail, _ Options) bool { return tr.S3BucketName == "" }),
	},
	trailRule{
		Name:  "Log File Validation",
		Pass:  "All CloudTrail trails have log file validation enabled.",
		Fail:  "Some trails (%s) lack log file validation.",
		Check: trailsWhere(func(tr models.Trail, _ Options) bool { return !tr.LogFileValidation }),
	},
	trailRule{
		Name:  "KMS Encryption",
		Pass:  "All CloudTrail trails use KMS encryption for logs.",
		Fail:  "Some trails (%s) lack KMS encryption.",
		Check: trailsWhere(func(tr models.Trail, _ Options) bool { return tr.KMSKeyID == "" }),
	},
	trailRule{
		Name:  "CloudWatch Logs Integration",
		Pass:  "All CloudTrail trails are integrated with CloudWatch Logs.",
		Fail:  "Some trails (%s) lack CloudWatch Logs integration.",
		Check: trailsWhere(func(tr models.Trail, _ Options) bool { return tr.CloudWatchLogGroupARN == "" }),
	},
	trailRule{
		Name:  "CloudTrail Tagging",
		Pass:  "All CloudTrail trails are tagged.",
		Fail:  "Some trails (%s) lack tags.",
		Check: trailsWhere(func(tr models.Trail, _ Options) bool { return len(tr.Tags) == 0 }),
	},
	trailRule{
		Name:  "Log Management Events",
		Pass:  "All CloudTrail trails log management events.",
		Fail:  "Some trails (%s) do not log management events.",
		Check: trailsWhere(func(tr models.Trail, _ Options) bool { return !logsManagementEvents(tr) }),
	},
	trailRule{
		Name:  "Log Data Events",
		Pass:  "All CloudTrail trails log data events.",
		Fail:  "Some trails (%s) do not log data events.",
		Check: trailsWhere(func(tr models.Trail, _ Options) bool { return !logsDataEvents(tr) }),
	},
	trailRule{
		Name:  "S3 Retention Policy",
		Pass:  "All CloudTrail S3 buckets have a retention policy.",
		Fail:  "Some trails (%s) lack a retention policy.",
		Check: trailsWhere(func(tr models.Trail, _ Options) bool { return tr.BucketLifecycleRules == 0 }),
	},
	trailRule{
		Name:  "SNS Notifications",
		Pass:  "All CloudTrail trails have SNS notifications configured.",
		Fail:  "Some trails (%s) lack SNS notifications.",
		Check: trailsWhere(func(tr models.Trail, _ Options) bool { return tr.SNSTopicARN == "" }),
	},
	trailRule{
		Name: "Private S3 Buckets",
		Pass: "All CloudTrail S3 buckets are private.",
		Fail: "Some trails (%s) have public S3 buckets.",
		Check: trailsWhere(func(tr models.Trail, _ Options) bool {
			for _, g := range tr.BucketACL {
				if publicGrant(g) {
					return true
				}
			}
			return false
		}),
	},
	trailRule{
		Name: "Recent Activity",
		Pass: "All CloudTrail trails have recent activity (last 24 hours).",
		Fail: "Some trails (%s) have no recent activity.",
		Check: trailsWhere(func(tr models.Trail, opts Options) bool {
			return tr.LatestDeliveryTime == nil || opts.Now.Sub(*tr.LatestDeliveryTime) >= opts.TrailDeliveryWindow
		}),
	},
)
