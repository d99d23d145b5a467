package rules

import (
	"slices"
	"strings"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/policydoc"
)

type lambdaRule = Rule[models.LambdaInventory]

// supportedRuntimes lists the runtimes not flagged as deprecated.
var supportedRuntimes = []string{"nodejs18.x", "python3.9", "java11", "dotnet6", "ruby3.2"}

const (
	maxLambdaTimeoutSeconds = 900
	maxLambdaMemoryMB       = 10240
)

// EvaluateLambda runs the Lambda catalogue. Functions are identified by ARN
// and reported by name.
func EvaluateLambda(inv models.LambdaInventory, opts Options) models.ServiceReport {
	idx := NewRegionIndex()
	for _, fn := range inv.Functions {
		idx.Asset(fn.ARN, fn.Region)
	}
	t := NewTally(idx)
	if t.Exists(existenceChecks[models.ServiceLambda], len(inv.Functions) > 0,
		"Lambda functions are present.", "No Lambda functions found.") {
		lambdaCatalogue.Run(t, inv, opts.withDefaults())
	}
	return t.Report()
}

func functionsWhere(bad func(models.LambdaFunction) bool) func(models.LambdaInventory, Options) []Offender {
	return func(inv models.LambdaInventory, _ Options) []Offender {
		return offenders(inv.Functions, func(fn models.LambdaFunction) Offender {
			return Offender{ID: fn.ARN, Label: fn.Name}
		}, bad)
	}
}

// permissiveFunctionPolicy reports whether the resource policy allows
// lambda:* on every resource without conditions. An unreadable policy is
// reported as permissive.
func permissiveFunctionPolicy(fn models.LambdaFunction) bool {
	if fn.Policy == nil {
		return false
	}
	doc, err := policydoc.Parse(*fn.Policy)
	if err != nil {
		return true
	}
	return doc.AllowsUnconditionally("lambda:*")
}

var lambdaCatalogue = NewCatalogue(
	lambdaRule{
		Name:  "VPC Configuration",
		Pass:  "All Lambda functions are configured with a VPC.",
		Fail:  "Some functions (%s) lack VPC configuration.",
		Check: functionsWhere(func(fn models.LambdaFunction) bool { return fn.VPCID == "" }),
	},
	lambdaRule{
		Name:  "IAM Role Assigned",
		Pass:  "All Lambda functions have an IAM role.",
		Fail:  "Some functions (%s) lack an IAM role.",
		Check: functionsWhere(func(fn models.LambdaFunction) bool { return fn.Role == "" }),
	},
	lambdaRule{
		Name:  "Reasonable Timeout",
		Pass:  "All Lambda functions have a timeout of 15 minutes or less.",
		Fail:  "Some functions (%s) have excessive timeouts.",
		Check: functionsWhere(func(fn models.LambdaFunction) bool { return fn.TimeoutSeconds > maxLambdaTimeoutSeconds }),
	},
	lambdaRule{
		Name:  "Tracing Enabled",
		Pass:  "All Lambda functions have tracing enabled.",
		Fail:  "Some functions (%s) lack tracing.",
		Check: functionsWhere(func(fn models.LambdaFunction) bool { return fn.TracingMode != "Active" }),
	},
	lambdaRule{
		Name:  "Supported Runtime",
		Pass:  "All Lambda functions use supported runtimes.",
		Fail:  "Some functions (%s) use deprecated runtimes.",
		Check: functionsWhere(func(fn models.LambdaFunction) bool { return !slices.Contains(supportedRuntimes, fn.Runtime) }),
	},
	lambdaRule{
		Name:  "Encrypted Environment Variables",
		Pass:  "All Lambda functions with environment variables use KMS encryption.",
		Fail:  "Some functions (%s) lack KMS encryption.",
		Check: functionsWhere(func(fn models.LambdaFunction) bool { return fn.HasEnvironment && fn.KMSKeyARN == "" }),
	},
	lambdaRule{
		Name:  "Dead Letter Queue",
		Pass:  "All Lambda functions have a dead letter queue.",
		Fail:  "Some functions (%s) lack a DLQ.",
		Check: functionsWhere(func(fn models.LambdaFunction) bool { return fn.DeadLetterTarget == "" }),
	},
	lambdaRule{
		Name:  "Lambda Tagging",
		Pass:  "All Lambda functions are tagged.",
		Fail:  "Some functions (%s) lack tags.",
		Check: functionsWhere(func(fn models.LambdaFunction) bool { return len(fn.Tags) == 0 }),
	},
	lambdaRule{
		Name:  "Reasonable Memory Size",
		Pass:  "All Lambda functions have a memory size of 10 GB or less.",
		Fail:  "Some functions (%s) have excessive memory.",
		Check: functionsWhere(func(fn models.LambdaFunction) bool { return fn.MemoryMB > maxLambdaMemoryMB }),
	},
	lambdaRule{
		Name:  "No Overly Permissive Policies",
		Pass:  "No Lambda functions have overly permissive execution policies.",
		Fail:  "Some functions (%s) have permissive policies.",
		Check: functionsWhere(permissiveFunctionPolicy),
	},
	lambdaRule{
		Name: "Latest Layer Versions",
		Pass: "All Lambda functions use the latest layer versions.",
		Fail: "Some functions (%s) use outdated layers.",
		Check: functionsWhere(func(fn models.LambdaFunction) bool {
			for _, arn := range fn.LayerARNs {
				if !strings.Contains(arn, ":latest") {
					return true
				}
			}
			return false
		}),
	},
	lambdaRule{
		Name:  "Concurrency Limits",
		Pass:  "All Lambda functions have concurrency limits set.",
		Fail:  "Some functions (%s) lack concurrency limits.",
		Check: functionsWhere(func(fn models.LambdaFunction) bool { return fn.ReservedConcurrency == nil }),
	},
	lambdaRule{
		Name:  "Logging Enabled",
		Pass:  "All Lambda functions have logging enabled.",
		Fail:  "Some functions (%s) may lack logging.",
		Check: functionsWhere(func(fn models.LambdaFunction) bool { return fn.LastUpdateStatus == "Failed" }),
	},
	lambdaRule{
		Name:  "Function Descriptions",
		Pass:  "All Lambda functions have descriptions.",
		Fail:  "Some functions (%s) lack descriptions.",
		Check: functionsWhere(func(fn models.LambdaFunction) bool { return strings.TrimSpace(fn.Description) == "" }),
	},
)
