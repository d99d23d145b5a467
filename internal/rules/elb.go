package rules

import (
	"strconv"
	"strings"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

type elbRule = Rule[models.ELBInventory]

// maxIdleTimeoutSeconds is the idle timeout above which a load balancer is
// flagged.
const maxIdleTimeoutSeconds = 4000

// EvaluateELB runs the ELB catalogue over classic and v2 load balancers.
// Classic load balancers are identified by name, v2 by ARN.
func EvaluateELB(inv models.ELBInventory, opts Options) models.ServiceReport {
	idx := NewRegionIndex()
	for _, lb := range inv.LoadBalancers {
		idx.Asset(lb.ID(), lb.Region)
	}
	t := NewTally(idx)
	if t.Exists(existenceChecks[models.ServiceELB], len(inv.LoadBalancers) > 0,
		"Elastic Load Balancers are present.", "No ELBs found.") {
		elbCatalogue.Run(t, inv, opts.withDefaults())
	}
	return t.Report()
}

func loadBalancersWhere(bad func(models.LoadBalancer) bool) func(models.ELBInventory, Options) []Offender {
	return func(inv models.ELBInventory, _ Options) []Offender {
		return offenders(inv.LoadBalancers, func(lb models.LoadBalancer) Offender {
			return Offender{ID: lb.ID(), Label: lb.Name}
		}, bad)
	}
}

// only restricts bad to load balancers of the given kinds.
func only(bad func(models.LoadBalancer) bool, kinds ...models.LoadBalancerKind) func(models.LoadBalancer) bool {
	return func(lb models.LoadBalancer) bool {
		for _, k := range kinds {
			if lb.Kind == k {
				return bad(lb)
			}
		}
		return false
	}
}

// attrEnabled reports whether the boolean attribute key is "true". A load
// balancer whose attributes could not be read has nothing enabled.
func attrEnabled(lb models.LoadBalancer, key string) bool {
	return strings.EqualFold(lb.Attributes[key], "true")
}

func hasListener(lb models.LoadBalancer, protocol string, needCert bool) bool {
	for _, l := range lb.Listeners {
		if strings.EqualFold(l.Protocol, protocol) && (!needCert || l.CertificateID != "") {
			return true
		}
	}
	return false
}

var elbCatalogue = NewCatalogue(
	elbRule{
		Name: "HTTPS Listeners",
		Pass: "All ELBs use HTTPS listeners (or internal).",
		Fail: "Some ELBs (%s) lack HTTPS listeners.",
		Check: loadBalancersWhere(only(func(lb models.LoadBalancer) bool {
			return !hasListener(lb, "HTTPS", false)
		}, models.LoadBalancerClassic, models.LoadBalancerApplication)),
	},
	elbRule{
		Name: "Deletion Protection",
		Pass: "All modern ELBs have deletion protection enabled.",
		Fail: "Some modern ELBs (%s) lack deletion protection.",
		Check: loadBalancersWhere(only(func(lb models.LoadBalancer) bool {
			return !attrEnabled(lb, models.LBAttrDeletionProtection)
		}, models.LoadBalancerApplication, models.LoadBalancerNetwork, models.LoadBalancerGateway)),
	},
	elbRule{
		Name:  "ELBs in VPC",
		Pass:  "All ELBs are in a VPC.",
		Fail:  "Some ELBs (%s) are not in a VPC.",
		Check: loadBalancersWhere(func(lb models.LoadBalancer) bool { return lb.VPCID == "" }),
	},
	elbRule{
		Name: "Security Groups Assigned",
		Pass: "All internet-facing ELBs have security groups.",
		Fail: "Some ELBs (%s) lack security groups.",
		Check: loadBalancersWhere(func(lb models.LoadBalancer) bool {
			return lb.Scheme == "internet-facing" && len(lb.SecurityGroups) == 0
		}),
	},
	elbRule{
		Name:  "Access Logging",
		Pass:  "All ELBs have access logging enabled.",
		Fail:  "Some ELBs (%s) lack access logging.",
		Check: loadBalancersWhere(func(lb models.LoadBalancer) bool { return !attrEnabled(lb, models.LBAttrAccessLogs) }),
	},
	elbRule{
		Name:  "ELB Tagging",
		Pass:  "All ELBs are tagged.",
		Fail:  "Some ELBs (%s) lack tags.",
		Check: loadBalancersWhere(func(lb models.LoadBalancer) bool { return len(lb.Tags) == 0 }),
	},
	elbRule{
		Name: "Modern TLS Policies (Classic)",
		Pass: "All Classic ELBs use HTTPS with certificates.",
		Fail: "Some Classic ELBs (%s) lack modern TLS.",
		Check: loadBalancersWhere(only(func(lb models.LoadBalancer) bool {
			return !hasListener(lb, "HTTPS", true)
		}, models.LoadBalancerClassic)),
	},
	elbRule{
		Name: "Health Checks (Classic)",
		Pass: "All Classic ELBs have health checks configured.",
		Fail: "Some Classic ELBs (%s) lack health checks.",
		Check: loadBalancersWhere(only(func(lb models.LoadBalancer) bool {
			return lb.HealthCheckTarget == ""
		}, models.LoadBalancerClassic)),
	},
	elbRule{
		Name: "WAF Integration (ALB)",
		Pass: "All Application Load Balancers have WAF integration.",
		Fail: "Some ALBs (%s) lack WAF integration.",
		Check: loadBalancersWhere(only(func(lb models.LoadBalancer) bool {
			for k := range lb.Attributes {
				if strings.HasPrefix(k, "waf.") {
					return false
				}
			}
			return true
		}, models.LoadBalancerApplication)),
	},
	elbRule{
		Name:  "Cross-Zone Load Balancing",
		Pass:  "All ELBs have cross-zone load balancing enabled.",
		Fail:  "Some ELBs (%s) lack cross-zone balancing.",
		Check: loadBalancersWhere(func(lb models.LoadBalancer) bool { return !attrEnabled(lb, models.LBAttrCrossZone) }),
	},
	elbRule{
		Name: "Reasonable Idle Timeout",
		Pass: "All ELBs have an idle timeout of 4000 seconds or less.",
		Fail: "Some ELBs (%s) have excessive idle timeouts.",
		Check: loadBalancersWhere(func(lb models.LoadBalancer) bool {
			n, err := strconv.Atoi(lb.Attributes[models.LBAttrIdleTimeout])
			return err == nil && n > maxIdleTimeoutSeconds
		}),
	},
	elbRule{
		Name: "Multiple AZs",
		Pass: "All ELBs span multiple Availability Zones.",
		Fail: "Some ELBs (%s) do not span multiple AZs.",
		Check: loadBalancersWhere(func(lb models.LoadBalancer) bool {
			zones := make(map[string]struct{}, len(lb.AvailabilityZones))
			for _, z := range lb.AvailabilityZones {
				zones[z] = struct{}{}
			}
			return len(zones) < 2
		}),
	},
	elbRule{
		Name: "Connection Draining (Classic)",
		Pass: "All Classic ELBs have connection draining enabled.",
		Fail: "Some Classic ELBs (%s) lack connection draining.",
		Check: loadBalancersWhere(only(func(lb models.LoadBalancer) bool {
			return !attrEnabled(lb, models.LBAttrConnectionDraining)
		}, models.LoadBalancerClassic)),
	},
	elbRule{
		Name: "ELB Descriptions",
		Pass: "All ELBs have descriptions (via tags or meaningful names).",
		Fail: "Some ELBs (%s) lack descriptions.",
		Check: loadBalancersWhere(func(lb models.LoadBalancer) bool {
			_, tagged := lb.Tags["Description"]
			return !tagged && len(lb.Name) <= 3
		}),
	},
)
