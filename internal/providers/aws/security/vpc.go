package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

// CollectVPC gathers VPCs and their network resources in the target regions.
func (c *DefaultSecurityCollector) CollectVPC(ctx context.Context, target Target) (models.VPCInventory, error) {
	parts, err := perRegion(ctx, c, target, func(ctx context.Context, clients *secClients, region string) (models.VPCInventory, error) {
		return c.collectVPCRegion(ctx, clients.EC2, region)
	})
	if err != nil {
		return models.VPCInventory{}, err
	}

	var inv models.VPCInventory
	for _, p := range parts {
		inv.VPCs = append(inv.VPCs, p.VPCs...)
		inv.Subnets = append(inv.Subnets, p.Subnets...)
		inv.RouteTables = append(inv.RouteTables, p.RouteTables...)
		inv.NetworkACLs = append(inv.NetworkACLs, p.NetworkACLs...)
		inv.SecurityGroups = append(inv.SecurityGroups, p.SecurityGroups...)
		inv.InternetGateways = append(inv.InternetGateways, p.InternetGateways...)
	}
	return inv, nil
}

// collectVPCRegion reads one region. Every listing is primary; flow logs and
// the DNS attributes are detail lookups.
func (c *DefaultSecurityCollector) collectVPCRegion(ctx context.Context, client ec2APIClient, region string) (models.VPCInventory, error) {
	var inv models.VPCInventory

	vpcs, err := listVPCs(ctx, client)
	if err != nil {
		return inv, err
	}
	if len(vpcs) == 0 {
		return inv, nil
	}

	flowLogs := vpcsWithFlowLogs(ctx, client)
	for _, v := range vpcs {
		id := aws.ToString(v.VpcId)
		inv.VPCs = append(inv.VPCs, models.VPC{
			VPCID:     id,
			Region:    region,
			CIDR:      aws.ToString(v.CidrBlock),
			IsDefault: aws.ToBool(v.IsDefault),
			FlowLogs:  flowLogs[id],
			Tags:      ec2Tags(v.Tags),
		})
	}
	if err := c.eachDetail(ctx, len(inv.VPCs), func(ctx context.Context, i int) {
		id := inv.VPCs[i].VPCID
		inv.VPCs[i].DNSSupport = vpcAttribute(ctx, client, id, ec2types.VpcAttributeNameEnableDnsSupport)
		inv.VPCs[i].DNSHostnames = vpcAttribute(ctx, client, id, ec2types.VpcAttributeNameEnableDnsHostnames)
	}); err != nil {
		return inv, err
	}

	if inv.Subnets, err = listSubnets(ctx, client, region); err != nil {
		return inv, err
	}
	if inv.RouteTables, err = listRouteTables(ctx, client, region); err != nil {
		return inv, err
	}
	if inv.NetworkACLs, err = listNetworkACLs(ctx, client, region); err != nil {
		return inv, err
	}

	groups, err := listSecurityGroups(ctx, client)
	if err != nil {
		return inv, err
	}
	for _, g := range groups {
		inv.SecurityGroups = append(inv.SecurityGroups, toSecurityGroup(g, region))
	}

	if inv.InternetGateways, err = listInternetGateways(ctx, client, region); err != nil {
		return inv, err
	}
	return inv, nil
}

func listVPCs(ctx context.Context, client ec2APIClient) ([]ec2types.Vpc, error) {
	paginator := ec2svc.NewDescribeVpcsPaginator(client, &ec2svc.DescribeVpcsInput{})
	var vpcs []ec2types.Vpc
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe VPCs: %w", err)
		}
		vpcs = append(vpcs, page.Vpcs...)
	}
	return vpcs, nil
}

// vpcsWithFlowLogs returns the set of resource ids with at least one flow
// log. A failed listing yields an empty set.
func vpcsWithFlowLogs(ctx context.Context, client ec2APIClient) map[string]bool {
	out := make(map[string]bool)
	paginator := ec2svc.NewDescribeFlowLogsPaginator(client, &ec2svc.DescribeFlowLogsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return out
		}
		for _, fl := range page.FlowLogs {
			out[aws.ToString(fl.ResourceId)] = true
		}
	}
	return out
}

// vpcAttribute reads one boolean VPC attribute; nil when the lookup failed.
func vpcAttribute(ctx context.Context, client ec2APIClient, vpcID string, name ec2types.VpcAttributeName) *bool {
	out, err := client.DescribeVpcAttribute(ctx, &ec2svc.DescribeVpcAttributeInput{
		VpcId:     aws.String(vpcID),
		Attribute: name,
	})
	if err != nil {
		return nil
	}
	var v *ec2types.AttributeBooleanValue
	switch name {
	case ec2types.VpcAttributeNameEnableDnsSupport:
		v = out.EnableDnsSupport
	case ec2types.VpcAttributeNameEnableDnsHostnames:
		v = out.EnableDnsHostnames
	}
	if v == nil || v.Value == nil {
		return nil
	}
	return aws.Bool(*v.Value)
}

func listSubnets(ctx context.Context, client ec2APIClient, region string) ([]models.Subnet, error) {
	paginator := ec2svc.NewDescribeSubnetsPaginator(client, &ec2svc.DescribeSubnetsInput{})
	var subnets []models.Subnet
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe subnets: %w", err)
		}
		for _, s := range page.Subnets {
			subnets = append(subnets, models.Subnet{
				SubnetID:         aws.ToString(s.SubnetId),
				VPCID:            aws.ToString(s.VpcId),
				Region:           region,
				AvailabilityZone: aws.ToString(s.AvailabilityZone),
				AvailableIPs:     aws.ToInt32(s.AvailableIpAddressCount),
			})
		}
	}
	return subnets, nil
}

func listRouteTables(ctx context.Context, client ec2APIClient, region string) ([]models.RouteTable, error) {
	paginator := ec2svc.NewDescribeRouteTablesPaginator(client, &ec2svc.DescribeRouteTablesInput{})
	var tables []models.RouteTable
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe route tables: %w", err)
		}
		for _, rt := range page.RouteTables {
			table := models.RouteTable{
				RouteTableID: aws.ToString(rt.RouteTableId),
				VPCID:        aws.ToString(rt.VpcId),
				Region:       region,
				SubnetIDs: stringsOf(rt.Associations, func(a ec2types.RouteTableAssociation) *string {
					return a.SubnetId
				}),
			}
			for _, r := range rt.Routes {
				table.Routes = append(table.Routes, models.Route{
					Destination: firstNonEmpty(r.DestinationCidrBlock, r.DestinationIpv6CidrBlock),
					GatewayID:   aws.ToString(r.GatewayId),
					Target: firstNonEmpty(r.GatewayId, r.NatGatewayId, r.VpcPeeringConnectionId,
						r.TransitGatewayId, r.NetworkInterfaceId, r.InstanceId),
				})
			}
			tables = append(tables, table)
		}
	}
	return tables, nil
}

func listNetworkACLs(ctx context.Context, client ec2APIClient, region string) ([]models.NetworkACL, error) {
	paginator := ec2svc.NewDescribeNetworkAclsPaginator(client, &ec2svc.DescribeNetworkAclsInput{})
	var acls []models.NetworkACL
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe network ACLs: %w", err)
		}
		for _, a := range page.NetworkAcls {
			acl := models.NetworkACL{
				NetworkACLID: aws.ToString(a.NetworkAclId),
				VPCID:        aws.ToString(a.VpcId),
				Region:       region,
				SubnetIDs: stringsOf(a.Associations, func(as ec2types.NetworkAclAssociation) *string {
					return as.SubnetId
				}),
			}
			for _, e := range a.Entries {
				acl.Entries = append(acl.Entries, models.NACLEntry{
					RuleNumber: aws.ToInt32(e.RuleNumber),
					Egress:     aws.ToBool(e.Egress),
					Action:     string(e.RuleAction),
					CIDR:       firstNonEmpty(e.CidrBlock, e.Ipv6CidrBlock),
				})
			}
			acls = append(acls, acl)
		}
	}
	return acls, nil
}

// listSecurityGroups pages through every security group in the client's
// region. EC2 collection reuses it for per-instance rule counts.
func listSecurityGroups(ctx context.Context, client ec2APIClient) ([]ec2types.SecurityGroup, error) {
	paginator := ec2svc.NewDescribeSecurityGroupsPaginator(client, &ec2svc.DescribeSecurityGroupsInput{})
	var groups []ec2types.SecurityGroup
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe security groups: %w", err)
		}
		groups = append(groups, page.SecurityGroups...)
	}
	return groups, nil
}

func toSecurityGroup(g ec2types.SecurityGroup, region string) models.SecurityGroup {
	sg := models.SecurityGroup{
		GroupID:     aws.ToString(g.GroupId),
		GroupName:   aws.ToString(g.GroupName),
		VPCID:       aws.ToString(g.VpcId),
		Region:      region,
		Description: aws.ToString(g.Description),
		RuleCount:   len(g.IpPermissions) + len(g.IpPermissionsEgress),
	}
	for _, p := range g.IpPermissions {
		sg.IngressCIDRs = append(sg.IngressCIDRs, stringsOf(p.IpRanges, func(r ec2types.IpRange) *string {
			return r.CidrIp
		})...)
		sg.IngressCIDRs = append(sg.IngressCIDRs, stringsOf(p.Ipv6Ranges, func(r ec2types.Ipv6Range) *string {
			return r.CidrIpv6
		})...)
	}
	return sg
}

func listInternetGateways(ctx context.Context, client ec2APIClient, region string) ([]models.InternetGateway, error) {
	paginator := ec2svc.NewDescribeInternetGatewaysPaginator(client, &ec2svc.DescribeInternetGatewaysInput{})
	var igws []models.InternetGateway
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe internet gateways: %w", err)
		}
		for _, g := range page.InternetGateways {
			igws = append(igws, models.InternetGateway{
				InternetGatewayID: aws.ToString(g.InternetGatewayId),
				Region:            region,
				AttachedVPCIDs: stringsOf(g.Attachments, func(a ec2types.InternetGatewayAttachment) *string {
					return a.VpcId
				}),
			})
		}
	}
	return igws, nil
}
