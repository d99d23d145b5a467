package rules

import (
	"strings"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

type ec2Rule = Rule[models.EC2Inventory]

// nitroFamilies are the instance family prefixes treated as Nitro-based.
var nitroFamilies = []string{"t3", "t4g", "m5", "c5", "r5"}

const (
	// currentAMIPrefix marks images published with the long-form id scheme.
	currentAMIPrefix = "ami-0"

	// maxSecurityGroupRules is the rule count across an instance's security
	// groups above which the instance is flagged.
	maxSecurityGroupRules = 50
)

// EvaluateEC2 runs the EC2 catalogue over the instances of every scanned
// region.
func EvaluateEC2(inv models.EC2Inventory, opts Options) models.ServiceReport {
	idx := NewRegionIndex()
	for _, in := range inv.Instances {
		idx.Asset(in.InstanceID, in.Region)
	}
	t := NewTally(idx)
	if t.Exists(existenceChecks[models.ServiceEC2], len(inv.Instances) > 0,
		"EC2 instances are present.",
		"No EC2 instances found (no checks applicable if none exist).") {
		ec2Catalogue.Run(t, inv, opts.withDefaults())
	}
	return t.Report()
}

func instancesWhere(bad func(models.EC2Instance) bool) func(models.EC2Inventory, Options) []Offender {
	return func(inv models.EC2Inventory, _ Options) []Offender {
		return offenders(inv.Instances, func(in models.EC2Instance) Offender {
			return Offender{ID: in.InstanceID}
		}, bad)
	}
}

func hasPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

var ec2Catalogue = NewCatalogue(
	ec2Rule{
		Name:  "EC2 Key Pair Check",
		Pass:  "All instances have key pairs.",
		Fail:  "Some instances (%s) lack key pairs.",
		Check: instancesWhere(func(in models.EC2Instance) bool { return in.KeyName == "" }),
	},
	ec2Rule{
		Name:  "IMDSv2 Enabled",
		Pass:  "All instances use IMDSv2.",
		Fail:  "Some instances (%s) do not enforce IMDSv2.",
		Check: instancesWhere(func(in models.EC2Instance) bool { return in.MetadataHTTPTokens != "required" }),
	},
	ec2Rule{
		Name:  "Instances in VPC",
		Pass:  "All instances are in a VPC.",
		Fail:  "Some instances (%s) are not in a VPC (EC2-Classic is deprecated).",
		Check: instancesWhere(func(in models.EC2Instance) bool { return in.VPCID == "" }),
	},
	ec2Rule{
		Name:  "No Public IPs",
		Pass:  "No instances have public IPs.",
		Fail:  "Some instances (%s) have public IPs, consider using private subnets.",
		Check: instancesWhere(func(in models.EC2Instance) bool { return in.PublicIP != "" }),
	},
	ec2Rule{
		Name:  "Security Groups Attached",
		Pass:  "All instances have security groups.",
		Fail:  "Some instances (%s) lack security groups.",
		Check: instancesWhere(func(in models.EC2Instance) bool { return len(in.SecurityGroupIDs) == 0 }),
	},
	ec2Rule{
		Name: "EBS Encryption",
		Pass: "All EBS volumes are encrypted.",
		Fail: "Some instances (%s) have unencrypted EBS volumes.",
		Check: instancesWhere(func(in models.EC2Instance) bool {
			for _, v := range in.Volumes {
				// A volume that could not be described is not known to be encrypted.
				if v.Encrypted == nil || !*v.Encrypted {
					return true
				}
			}
			return false
		}),
	},
	ec2Rule{
		Name:  "Instances Running",
		Pass:  "All instances are running.",
		Fail:  "Some instances (%s) are stopped or terminated.",
		Check: instancesWhere(func(in models.EC2Instance) bool { return in.State != "running" }),
	},
	ec2Rule{
		Name:  "IAM Instance Profile",
		Pass:  "All instances have IAM profiles.",
		Fail:  "Some instances (%s) lack IAM profiles for least privilege access.",
		Check: instancesWhere(func(in models.EC2Instance) bool { return in.IAMInstanceProfileARN == "" }),
	},
	ec2Rule{
		Name:  "Detailed Monitoring",
		Pass:  "All instances have detailed monitoring enabled.",
		Fail:  "Some instances (%s) lack detailed monitoring.",
		Check: instancesWhere(func(in models.EC2Instance) bool { return in.MonitoringState != "enabled" }),
	},
	ec2Rule{
		Name:  "Latest AMI",
		Pass:  "All instances use a recent AMI.",
		Fail:  "Some instances (%s) may be using outdated AMIs.",
		Check: instancesWhere(func(in models.EC2Instance) bool { return !strings.HasPrefix(in.ImageID, currentAMIPrefix) }),
	},
	ec2Rule{
		Name:  "Instance Tagging",
		Pass:  "All instances are tagged.",
		Fail:  "Some instances (%s) lack tags.",
		Check: instancesWhere(func(in models.EC2Instance) bool { return len(in.Tags) == 0 }),
	},
	ec2Rule{
		Name:  "Auto Scaling Group",
		Pass:  "All instances are in an Auto Scaling group.",
		Fail:  "Some instances (%s) are not in an Auto Scaling group.",
		Check: instancesWhere(func(in models.EC2Instance) bool { return in.AutoScalingGroup == "" }),
	},
	ec2Rule{
		Name: "Termination Protection",
		Pass: "All instances have termination protection.",
		Fail: "Some instances (%s) lack termination protection.",
		Check: instancesWhere(func(in models.EC2Instance) bool {
			return in.TerminationProtection == nil || !*in.TerminationProtection
		}),
	},
	ec2Rule{
		Name:  "Nitro Instance Types",
		Pass:  "All instances use Nitro-based types.",
		Fail:  "Some instances (%s) use older instance types.",
		Check: instancesWhere(func(in models.EC2Instance) bool { return !hasPrefix(in.InstanceType, nitroFamilies) }),
	},
	ec2Rule{
		Name: "Reasonable SG Rules",
		Pass: "All instances have a reasonable number of security group rules.",
		Fail: "Some instances (%s) have excessive security group rules.",
		Check: instancesWhere(func(in models.EC2Instance) bool {
			return in.SecurityGroupRuleCount > maxSecurityGroupRules
		}),
	},
)
