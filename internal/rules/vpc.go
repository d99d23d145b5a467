package rules

import (
	"strings"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

type vpcRule = Rule[models.VPCInventory]

const (
	// defaultDenyRuleNumber is the catch-all rule every network ACL ends with.
	defaultDenyRuleNumber = 32767

	// minSubnetFreeIPs is the free address count at or below which a subnet
	// is considered exhausted.
	minSubnetFreeIPs = 10
)

// EvaluateVPC runs the VPC catalogue. VPCs, subnets and security groups are
// counted as assets; route tables, network ACLs and internet gateways can be
// flagged but do not add to the asset total.
func EvaluateVPC(inv models.VPCInventory, opts Options) models.ServiceReport {
	idx := NewRegionIndex()
	for _, v := range inv.VPCs {
		idx.Asset(v.VPCID, v.Region)
	}
	for _, s := range inv.Subnets {
		idx.Asset(s.SubnetID, s.Region)
	}
	for _, sg := range inv.SecurityGroups {
		idx.Asset(sg.GroupID, sg.Region)
	}
	for _, n := range inv.NetworkACLs {
		idx.Track(n.NetworkACLID, n.Region)
	}
	for _, rt := range inv.RouteTables {
		idx.Track(rt.RouteTableID, rt.Region)
	}
	for _, igw := range inv.InternetGateways {
		idx.Track(igw.InternetGatewayID, igw.Region)
	}

	t := NewTally(idx)
	if t.Exists(existenceChecks[models.ServiceVPC], len(inv.VPCs) > 0, "VPCs are present.", "No VPCs found.") {
		vpcCatalogue.Run(t, inv, opts.withDefaults())
	}
	return t.Report()
}

func vpcsWhere(bad func(models.VPC, models.VPCInventory) bool) func(models.VPCInventory, Options) []Offender {
	return func(inv models.VPCInventory, _ Options) []Offender {
		return offenders(inv.VPCs, func(v models.VPC) Offender { return Offender{ID: v.VPCID} },
			func(v models.VPC) bool { return bad(v, inv) })
	}
}

func subnetsWhere(bad func(models.Subnet, models.VPCInventory) bool) func(models.VPCInventory, Options) []Offender {
	return func(inv models.VPCInventory, _ Options) []Offender {
		return offenders(inv.Subnets, func(s models.Subnet) Offender { return Offender{ID: s.SubnetID} },
			func(s models.Subnet) bool { return bad(s, inv) })
	}
}

func groupsWhere(bad func(models.SecurityGroup) bool) func(models.VPCInventory, Options) []Offender {
	return func(inv models.VPCInventory, _ Options) []Offender {
		return offenders(inv.SecurityGroups, func(sg models.SecurityGroup) Offender {
			return Offender{ID: sg.GroupID}
		}, bad)
	}
}

// routeTablesFor returns the route tables explicitly associated with subnet.
func routeTablesFor(inv models.VPCInventory, subnetID string) []models.RouteTable {
	var out []models.RouteTable
	for _, rt := range inv.RouteTables {
		for _, id := range rt.SubnetIDs {
			if id == subnetID {
				out = append(out, rt)
				break
			}
		}
	}
	return out
}

func internetGateway(id string) bool { return strings.HasPrefix(id, "igw-") }

func anyRoute(v string) bool { return v == "0.0.0.0/0" || v == "::/0" }

var vpcCatalogue = NewCatalogue(
	vpcRule{
		Name:  "VPC Flow Logs Enabled",
		Pass:  "All VPCs have flow logs enabled.",
		Fail:  "Some VPCs (%s) lack flow logs.",
		Check: vpcsWhere(func(v models.VPC, _ models.VPCInventory) bool { return !v.FlowLogs }),
	},
	vpcRule{
		Name: "Subnets Routed",
		Pass: "All subnets are associated with a route table.",
		Fail: "Some subnets (%s) lack route table associations.",
		Check: subnetsWhere(func(s models.Subnet, inv models.VPCInventory) bool {
			return len(routeTablesFor(inv, s.SubnetID)) == 0
		}),
	},
	vpcRule{
		Name: "No Public Subnets",
		Pass: "No subnets are public.",
		Fail: "Some subnets (%s) are public.",
		Check: subnetsWhere(func(s models.Subnet, inv models.VPCInventory) bool {
			for _, rt := range routeTablesFor(inv, s.SubnetID) {
				for _, r := range rt.Routes {
					if internetGateway(r.GatewayID) {
						return true
					}
				}
			}
			return false
		}),
	},
	vpcRule{
		Name: "Multiple AZ Subnets",
		Pass: "All VPCs have subnets in multiple AZs.",
		Fail: "Some VPCs (%s) lack subnets in multiple AZs.",
		Check: vpcsWhere(func(v models.VPC, inv models.VPCInventory) bool {
			zones := make(map[string]struct{})
			for _, s := range inv.Subnets {
				if s.VPCID == v.VPCID {
					zones[s.AvailabilityZone] = struct{}{}
				}
			}
			return len(zones) < 2
		}),
	},
	vpcRule{
		Name: "Network ACLs Present",
		Pass: "All VPCs have Network ACLs.",
		Fail: "Some VPCs (%s) lack Network ACLs.",
		Check: vpcsWhere(func(v models.VPC, inv models.VPCInventory) bool {
			subnets := make(map[string]struct{})
			for _, s := range inv.Subnets {
				if s.VPCID == v.VPCID {
					subnets[s.SubnetID] = struct{}{}
				}
			}
			for _, n := range inv.NetworkACLs {
				for _, id := range n.SubnetIDs {
					if _, ok := subnets[id]; ok {
						return false
					}
				}
			}
			return true
		}),
	},
	vpcRule{
		Name: "NACL Deny Inbound Default",
		Pass: "All NACLs deny inbound traffic by default.",
		Fail: "Some NACLs (%s) do not deny inbound by default.",
		Check: func(inv models.VPCInventory, _ Options) []Offender {
			return offenders(inv.NetworkACLs, func(n models.NetworkACL) Offender {
				return Offender{ID: n.NetworkACLID}
			}, func(n models.NetworkACL) bool {
				for _, e := range n.Entries {
					if e.RuleNumber == defaultDenyRuleNumber && !e.Egress && e.Action == "deny" {
						return false
					}
				}
				return true
			})
		},
	},
	vpcRule{
		Name: "No Overly Permissive SG Rules",
		Pass: "No security groups have overly permissive rules.",
		Fail: "Some security groups (%s) allow traffic from 0.0.0.0/0.",
		Check: groupsWhere(func(sg models.SecurityGroup) bool {
			for _, cidr := range sg.IngressCIDRs {
				if anyRoute(cidr) {
					return true
				}
			}
			return false
		}),
	},
	vpcRule{
		Name: "DNS Support Enabled",
		Pass: "All VPCs have DNS support enabled.",
		Fail: "Some VPCs (%s) lack DNS support.",
		Check: vpcsWhere(func(v models.VPC, _ models.VPCInventory) bool {
			return v.DNSSupport == nil || !*v.DNSSupport
		}),
	},
	vpcRule{
		Name: "DNS Hostnames Enabled",
		Pass: "All VPCs have DNS hostnames enabled.",
		Fail: "Some VPCs (%s) lack DNS hostnames.",
		Check: vpcsWhere(func(v models.VPC, _ models.VPCInventory) bool {
			return v.DNSHostnames == nil || !*v.DNSHostnames
		}),
	},
	vpcRule{
		Name: "No Untrusted Routes",
		Pass: "No route tables have untrusted destinations.",
		Fail: "Some route tables (%s) have untrusted routes.",
		Check: func(inv models.VPCInventory, _ Options) []Offender {
			return offenders(inv.RouteTables, func(rt models.RouteTable) Offender {
				return Offender{ID: rt.RouteTableID}
			}, func(rt models.RouteTable) bool {
				for _, r := range rt.Routes {
					if anyRoute(r.Destination) && !internetGateway(r.GatewayID) {
						return true
					}
				}
				return false
			})
		},
	},
	vpcRule{
		Name:  "VPC Tagging",
		Pass:  "All VPCs are tagged.",
		Fail:  "Some VPCs (%s) lack tags.",
		Check: vpcsWhere(func(v models.VPC, _ models.VPCInventory) bool { return len(v.Tags) == 0 }),
	},
	vpcRule{
		Name: "IGWs Attached",
		Pass: "All Internet Gateways are attached to a VPC.",
		Fail: "Some Internet Gateways (%s) are unattached.",
		Check: func(inv models.VPCInventory, _ Options) []Offender {
			return offenders(inv.InternetGateways, func(igw models.InternetGateway) Offender {
				return Offender{ID: igw.InternetGatewayID}
			}, func(igw models.InternetGateway) bool { return len(igw.AttachedVPCIDs) == 0 })
		},
	},
	vpcRule{
		Name: "Sufficient Subnet IPs",
		Pass: "All subnets have sufficient IP addresses.",
		Fail: "Some subnets (%s) have fewer than 10 available IPs.",
		Check: subnetsWhere(func(s models.Subnet, _ models.VPCInventory) bool {
			return s.AvailableIPs <= minSubnetFreeIPs
		}),
	},
	vpcRule{
		Name: "SG Descriptions",
		Pass: "All security groups have descriptions.",
		Fail: "Some security groups (%s) lack descriptions.",
		Check: groupsWhere(func(sg models.SecurityGroup) bool {
			return strings.TrimSpace(sg.Description) == ""
		}),
	},
)
