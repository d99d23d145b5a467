package rules

import (
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/policydoc"
)

type s3Rule = Rule[models.S3Inventory]

// EvaluateS3 runs the S3 catalogue. Buckets are attributed to their
// GetBucketLocation region.
func EvaluateS3(inv models.S3Inventory, opts Options) models.ServiceReport {
	idx := NewRegionIndex()
	for _, b := range inv.Buckets {
		idx.Asset(b.Name, b.Region)
	}
	t := NewTally(idx)
	if t.Exists(existenceChecks[models.ServiceS3], len(inv.Buckets) > 0,
		"S3 buckets are present.",
		"No S3 buckets found (no checks applicable if none exist).") {
		s3Catalogue.Run(t, inv, opts.withDefaults())
	}
	return t.Report()
}

func bucket(b models.S3Bucket) Offender { return Offender{ID: b.Name} }

// bucketsWhere is the common shape of the per-bucket checks.
func bucketsWhere(bad func(models.S3Bucket) bool) func(models.S3Inventory, Options) []Offender {
	return func(inv models.S3Inventory, _ Options) []Offender {
		return offenders(inv.Buckets, bucket, bad)
	}
}

// bucketPolicy parses the bucket policy. ok is false when the bucket has
// none; a policy that cannot be parsed is returned as err.
func bucketPolicy(b models.S3Bucket) (doc *policydoc.Document, ok bool, err error) {
	if b.Policy == nil {
		return nil, false, nil
	}
	doc, err = policydoc.Parse(*b.Policy)
	return doc, true, err
}

// enforcesTLS holds when the bucket policy denies requests made without
// aws:SecureTransport. Missing or unreadable policies do not enforce it.
func enforcesTLS(b models.S3Bucket) bool {
	doc, ok, err := bucketPolicy(b)
	return ok && err == nil && doc.DeniesInsecureTransport()
}

func publicGrant(g models.S3Grant) bool {
	return g.GranteeURI == models.S3AllUsersURI || g.GranteeURI == models.S3AuthenticatedUsersURI
}

var s3Catalogue = NewCatalogue(
	s3Rule{
		Name:  "Server-Side Encryption",
		Pass:  "All buckets have server-side encryption enabled.",
		Fail:  "Some buckets (%s) lack encryption.",
		Check: bucketsWhere(func(b models.S3Bucket) bool { return b.Encryption == nil }),
	},
	s3Rule{
		Name:  "Versioning Enabled",
		Pass:  "All buckets have versioning enabled.",
		Fail:  "Some buckets (%s) lack versioning.",
		Check: bucketsWhere(func(b models.S3Bucket) bool { return b.VersioningStatus != "Enabled" }),
	},
	s3Rule{
		Name:  "Block Public Access",
		Pass:  "All buckets block public access.",
		Fail:  "Some buckets (%s) do not fully block public access.",
		Check: bucketsWhere(func(b models.S3Bucket) bool { return !b.PublicAccessBlock.FullyBlocked() }),
	},
	s3Rule{
		Name: "No Public ACLs",
		Pass: "No buckets have public ACLs granting access.",
		Fail: "Some buckets (%s) have public ACLs granting access.",
		Check: bucketsWhere(func(b models.S3Bucket) bool {
			for _, g := range b.ACL {
				if publicGrant(g) && g.Permission != "READ" {
					return true
				}
			}
			return false
		}),
	},
	s3Rule{
		Name:  "Bucket Policy Exists",
		Pass:  "All buckets have a bucket policy.",
		Fail:  "Some buckets (%s) lack a bucket policy.",
		Check: bucketsWhere(func(b models.S3Bucket) bool { return b.Policy == nil }),
	},
	s3Rule{
		Name:  "Deny Unencrypted PUT",
		Pass:  "All bucket policies deny unencrypted PUT operations.",
		Fail:  "Some buckets (%s) allow unencrypted PUT operations.",
		Check: bucketsWhere(func(b models.S3Bucket) bool { return !enforcesTLS(b) }),
	},
	s3Rule{
		Name:  "Logging Enabled",
		Pass:  "All buckets have logging enabled.",
		Fail:  "Some buckets (%s) lack logging.",
		Check: bucketsWhere(func(b models.S3Bucket) bool { return !b.LoggingEnabled }),
	},
	s3Rule{
		Name:  "Lifecycle Rules",
		Pass:  "All buckets have lifecycle rules.",
		Fail:  "Some buckets (%s) lack lifecycle rules.",
		Check: bucketsWhere(func(b models.S3Bucket) bool { return b.LifecycleRules == 0 }),
	},
	s3Rule{
		Name:  "Bucket Tagging",
		Pass:  "All buckets are tagged.",
		Fail:  "Some buckets (%s) lack tags.",
		Check: bucketsWhere(func(b models.S3Bucket) bool { return len(b.Tags) == 0 }),
	},
	s3Rule{
		Name:  "Enforce SSL",
		Pass:  "All buckets enforce SSL via policy.",
		Fail:  "Some buckets (%s) do not enforce SSL.",
		Check: bucketsWhere(func(b models.S3Bucket) bool { return !enforcesTLS(b) }),
	},
	s3Rule{
		Name: "No Overly Permissive Policies",
		Pass: "No buckets have overly permissive policies.",
		Fail: "Some buckets (%s) have overly permissive policies.",
		Check: bucketsWhere(func(b models.S3Bucket) bool {
			doc, ok, err := bucketPolicy(b)
			if !ok {
				return false
			}
			// A policy that cannot be read cannot be shown to be restrictive.
			return err != nil || doc.PubliclyAccessible()
		}),
	},
	s3Rule{
		Name:  "Object Lock Enabled",
		Pass:  "All buckets have object lock enabled.",
		Fail:  "Some buckets (%s) lack object lock (optional for compliance).",
		Check: bucketsWhere(func(b models.S3Bucket) bool { return !b.ObjectLockEnabled }),
	},
	s3Rule{
		Name: "KMS Encryption",
		Pass: "All buckets use KMS for default encryption.",
		Fail: "Some buckets (%s) use AES-256 or no default encryption instead of KMS.",
		Check: bucketsWhere(func(b models.S3Bucket) bool {
			if b.Encryption == nil {
				return true
			}
			for _, alg := range b.Encryption.Algorithms {
				if alg == "aws:kms" || alg == "aws:kms:dsse" {
					return false
				}
			}
			return true
		}),
	},
	s3Rule{
		Name:  "No Public Objects",
		Pass:  "No buckets have publicly readable objects (sampled).",
		Fail:  "Some buckets (%s) have publicly readable objects (sampled).",
		Check: bucketsWhere(func(b models.S3Bucket) bool { return len(b.PublicObjectKeys) > 0 }),
	},
)
