package rules

import (
	"testing"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

func healthyNetwork() models.VPCInventory {
	const region = "us-east-1"
	return models.VPCInventory{
		VPCs: []models.VPC{{
			VPCID: "vpc-1", Region: region, DNSSupport: ptr(true), DNSHostnames: ptr(true),
			FlowLogs: true, Tags: map[string]string{"Name": "main"},
		}},
		Subnets: []models.Subnet{
			{SubnetID: "subnet-a", VPCID: "vpc-1", Region: region, AvailabilityZone: "us-east-1a", AvailableIPs: 200},
			{SubnetID: "subnet-b", VPCID: "vpc-1", Region: region, AvailabilityZone: "us-east-1b", AvailableIPs: 200},
		},
		RouteTables: []models.RouteTable{{
			RouteTableID: "rtb-1", VPCID: "vpc-1", Region: region,
			SubnetIDs: []string{"subnet-a", "subnet-b"},
			Routes:    []models.Route{{Destination: "10.0.0.0/16", GatewayID: "local"}},
		}},
		NetworkACLs: []models.NetworkACL{{
			NetworkACLID: "acl-1", VPCID: "vpc-1", Region: region,
			SubnetIDs: []string{"subnet-a", "subnet-b"},
			Entries:   []models.NACLEntry{{RuleNumber: 32767, Action: "deny", CIDR: "0.0.0.0/0"}},
		}},
		SecurityGroups: []models.SecurityGroup{{
			GroupID: "sg-1", GroupName: "app", VPCID: "vpc-1", Region: region,
			Description: "app tier", IngressCIDRs: []string{"10.0.0.0/8"},
		}},
		InternetGateways: []models.InternetGateway{{
			InternetGatewayID: "igw-1", Region: region, AttachedVPCIDs: []string{"vpc-1"},
		}},
	}
}

func TestEvaluateVPC_NoVPCs(t *testing.T) {
	rep := EvaluateVPC(models.VPCInventory{}, testOptions())
	if rep.TotalChecks != 1 || rep.Details[0].Message != "No VPCs found." {
		t.Errorf("got %+v", rep)
	}
}

func TestEvaluateVPC_HealthyNetwork(t *testing.T) {
	rep := EvaluateVPC(healthyNetwork(), testOptions())
	assertConsistent(t, rep)
	if rep.TotalPassed != rep.TotalChecks {
		for _, d := range rep.Details {
			if !d.Passed {
				t.Logf("failed: %s: %s", d.Name, d.Message)
			}
		}
		t.Fatalf("passed %d of %d", rep.TotalPassed, rep.TotalChecks)
	}
	// vpc + 2 subnets + 1 security group; route tables, ACLs and gateways
	// are not counted.
	if rep.TotalAssets != 4 {
		t.Errorf("TotalAssets: got %d; want 4", rep.TotalAssets)
	}
}

func TestEvaluateVPC_Violations(t *testing.T) {
	inv := healthyNetwork()
	inv.RouteTables[0].Routes = append(inv.RouteTables[0].Routes,
		models.Route{Destination: "0.0.0.0/0", Target: "pcx-9"},
		models.Route{Destination: "::/0", GatewayID: "igw-1"},
	)
	inv.NetworkACLs[0].Entries = nil
	inv.SecurityGroups[0].IngressCIDRs = []string{"0.0.0.0/0"}
	inv.SecurityGroups[0].Description = "  "
	inv.VPCs[0].DNSHostnames = nil
	inv.Subnets[1].AvailableIPs = 10
	inv.InternetGateways = append(inv.InternetGateways, models.InternetGateway{InternetGatewayID: "igw-2", Region: "us-east-1"})

	rep := EvaluateVPC(inv, testOptions())
	assertConsistent(t, rep)

	tests := []struct {
		check string
		ids   []string
	}{
		{"No Public Subnets", []string{"subnet-a", "subnet-b"}},
		{"NACL Deny Inbound Default", []string{"acl-1"}},
		{"No Overly Permissive SG Rules", []string{"sg-1"}},
		{"SG Descriptions", []string{"sg-1"}},
		{"DNS Hostnames Enabled", []string{"vpc-1"}},
		{"No Untrusted Routes", []string{"rtb-1"}},
		{"Sufficient Subnet IPs", []string{"subnet-b"}},
		{"IGWs Attached", []string{"igw-2"}},
	}
	for _, tc := range tests {
		got := check(t, rep, tc.check).ViolatingIDs
		if len(got) != len(tc.ids) {
			t.Errorf("%s: got %v; want %v", tc.check, got, tc.ids)
			continue
		}
		for i := range got {
			if got[i] != tc.ids[i] {
				t.Errorf("%s: got %v; want %v", tc.check, got, tc.ids)
			}
		}
	}
	assertPassed(t, rep, "Subnets Routed", "Multiple AZ Subnets", "Network ACLs Present", "DNS Support Enabled")

	// vpc-1, subnet-a, subnet-b, sg-1, acl-1, rtb-1, igw-2
	if rep.AssetsAtRisk != 7 {
		t.Errorf("AssetsAtRisk: got %d; want 7", rep.AssetsAtRisk)
	}
	if got := rep.RegionStats["us-east-1"]; got.TotalAssets != 4 || got.AssetsAtRisk != 7 {
		t.Errorf("region stat: got %+v", got)
	}
	if rep.SafeAssets != 0 {
		t.Errorf("SafeAssets: got %d; want 0", rep.SafeAssets)
	}
}

func TestEvaluateVPC_UnroutedSingleAZ(t *testing.T) {
	inv := healthyNetwork()
	inv.Subnets[1].AvailabilityZone = "us-east-1a"
	inv.RouteTables[0].SubnetIDs = []string{"subnet-a"}
	inv.NetworkACLs[0].SubnetIDs = nil

	rep := EvaluateVPC(inv, testOptions())
	if !flagged(t, rep, "Subnets Routed", "subnet-b") {
		t.Error("subnet-b should be unrouted")
	}
	if !flagged(t, rep, "Multiple AZ Subnets", "vpc-1") {
		t.Error("vpc-1 should be single-AZ")
	}
	if !flagged(t, rep, "Network ACLs Present", "vpc-1") {
		t.Error("vpc-1 should lack NACL associations")
	}
}
