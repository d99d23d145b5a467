package awssecurity

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	elbsvc "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing/types"
	elbv2svc "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

// CollectELB gathers classic and v2 load balancers in the target regions.
// Classic load balancers come first within each region.
func (c *DefaultSecurityCollector) CollectELB(ctx context.Context, target Target) (models.ELBInventory, error) {
	parts, err := perRegion(ctx, c, target, func(ctx context.Context, clients *secClients, region string) ([]models.LoadBalancer, error) {
		classic, err := c.collectClassicLoadBalancers(ctx, clients.ELB, region)
		if err != nil {
			return nil, err
		}
		v2, err := c.collectV2LoadBalancers(ctx, clients.ELBv2, region)
		if err != nil {
			return nil, err
		}
		return append(classic, v2...), nil
	})
	if err != nil {
		return models.ELBInventory{}, err
	}
	return models.ELBInventory{LoadBalancers: flatten(parts)}, nil
}

// ---------------------------------------------------------------------------
// Classic
// ---------------------------------------------------------------------------

func (c *DefaultSecurityCollector) collectClassicLoadBalancers(ctx context.Context, client elbAPIClient, region string) ([]models.LoadBalancer, error) {
	var lbs []models.LoadBalancer
	input := &elbsvc.DescribeLoadBalancersInput{}
	for {
		out, err := client.DescribeLoadBalancers(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("describe classic load balancers: %w", err)
		}
		for _, d := range out.LoadBalancerDescriptions {
			lbs = append(lbs, toClassicLoadBalancer(d, region))
		}
		if aws.ToString(out.NextMarker) == "" {
			break
		}
		input.Marker = out.NextMarker
	}

	err := c.eachDetail(ctx, len(lbs), func(ctx context.Context, i int) {
		lbs[i].Attributes = classicAttributes(ctx, client, lbs[i].Name)
		lbs[i].Tags = classicTags(ctx, client, lbs[i].Name)
	})
	return lbs, err
}

func toClassicLoadBalancer(d elbtypes.LoadBalancerDescription, region string) models.LoadBalancer {
	lb := models.LoadBalancer{
		Name:              aws.ToString(d.LoadBalancerName),
		Region:            region,
		Kind:              models.LoadBalancerClassic,
		Scheme:            aws.ToString(d.Scheme),
		VPCID:             aws.ToString(d.VPCId),
		SecurityGroups:    d.SecurityGroups,
		AvailabilityZones: d.AvailabilityZones,
	}
	for _, ld := range d.ListenerDescriptions {
		if ld.Listener == nil {
			continue
		}
		lb.Listeners = append(lb.Listeners, models.Listener{
			Protocol:      aws.ToString(ld.Listener.Protocol),
			Port:          int32Of(ld.Listener.LoadBalancerPort),
			CertificateID: aws.ToString(ld.Listener.SSLCertificateId),
		})
	}
	if d.HealthCheck != nil {
		lb.HealthCheckTarget = aws.ToString(d.HealthCheck.Target)
	}
	return lb
}

// classicAttributes normalises the classic attribute document into the v2
// key space. It returns nil when the lookup failed.
func classicAttributes(ctx context.Context, client elbAPIClient, name string) map[string]string {
	out, err := client.DescribeLoadBalancerAttributes(ctx, &elbsvc.DescribeLoadBalancerAttributesInput{
		LoadBalancerName: aws.String(name),
	})
	if err != nil || out.LoadBalancerAttributes == nil {
		return nil
	}
	a := out.LoadBalancerAttributes
	attrs := map[string]string{}
	if a.AccessLog != nil {
		attrs[models.LBAttrAccessLogs] = strconv.FormatBool(truthy(a.AccessLog.Enabled))
	}
	if a.CrossZoneLoadBalancing != nil {
		attrs[models.LBAttrCrossZone] = strconv.FormatBool(truthy(a.CrossZoneLoadBalancing.Enabled))
	}
	if a.ConnectionDraining != nil {
		attrs[models.LBAttrConnectionDraining] = strconv.FormatBool(truthy(a.ConnectionDraining.Enabled))
	}
	if a.ConnectionSettings != nil {
		attrs[models.LBAttrIdleTimeout] = strconv.Itoa(int(int32Of(a.ConnectionSettings.IdleTimeout)))
	}
	return attrs
}

func classicTags(ctx context.Context, client elbAPIClient, name string) map[string]string {
	out, err := client.DescribeTags(ctx, &elbsvc.DescribeTagsInput{
		LoadBalancerNames: []string{name},
	})
	if err != nil {
		return nil
	}
	var tags []elbtypes.Tag
	for _, td := range out.TagDescriptions {
		tags = append(tags, td.Tags...)
	}
	return tagMap(tags, func(t elbtypes.Tag) (*string, *string) { return t.Key, t.Value })
}

// ---------------------------------------------------------------------------
// Application, network and gateway
// ---------------------------------------------------------------------------

func (c *DefaultSecurityCollector) collectV2LoadBalancers(ctx context.Context, client elbv2APIClient, region string) ([]models.LoadBalancer, error) {
	paginator := elbv2svc.NewDescribeLoadBalancersPaginator(client, &elbv2svc.DescribeLoadBalancersInput{})
	var lbs []models.LoadBalancer
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe load balancers: %w", err)
		}
		for _, lb := range page.LoadBalancers {
			lbs = append(lbs, toV2LoadBalancer(lb, region))
		}
	}

	err := c.eachDetail(ctx, len(lbs), func(ctx context.Context, i int) {
		lb := &lbs[i]
		lb.Listeners = v2Listeners(ctx, client, lb.ARN)
		lb.Attributes = v2Attributes(ctx, client, lb.ARN)
		lb.Tags = v2Tags(ctx, client, lb.ARN)
	})
	return lbs, err
}

func toV2LoadBalancer(lb elbv2types.LoadBalancer, region string) models.LoadBalancer {
	return models.LoadBalancer{
		Name:           aws.ToString(lb.LoadBalancerName),
		ARN:            aws.ToString(lb.LoadBalancerArn),
		Region:         region,
		Kind:           models.LoadBalancerKind(lb.Type),
		Scheme:         string(lb.Scheme),
		VPCID:          aws.ToString(lb.VpcId),
		SecurityGroups: lb.SecurityGroups,
		AvailabilityZones: stringsOf(lb.AvailabilityZones, func(z elbv2types.AvailabilityZone) *string {
			return z.ZoneName
		}),
	}
}

func v2Listeners(ctx context.Context, client elbv2APIClient, arn string) []models.Listener {
	out, err := client.DescribeListeners(ctx, &elbv2svc.DescribeListenersInput{
		LoadBalancerArn: aws.String(arn),
	})
	if err != nil {
		return nil
	}
	listeners := make([]models.Listener, 0, len(out.Listeners))
	for _, l := range out.Listeners {
		listener := models.Listener{
			Protocol: string(l.Protocol),
			Port:     aws.ToInt32(l.Port),
		}
		if len(l.Certificates) > 0 {
			listener.CertificateID = aws.ToString(l.Certificates[0].CertificateArn)
		}
		listeners = append(listeners, listener)
	}
	return listeners
}

// v2Attributes returns the attribute key/value pairs; nil when the lookup
// failed.
func v2Attributes(ctx context.Context, client elbv2APIClient, arn string) map[string]string {
	out, err := client.DescribeLoadBalancerAttributes(ctx, &elbv2svc.DescribeLoadBalancerAttributesInput{
		LoadBalancerArn: aws.String(arn),
	})
	if err != nil {
		return nil
	}
	attrs := make(map[string]string, len(out.Attributes))
	for _, a := range out.Attributes {
		attrs[aws.ToString(a.Key)] = aws.ToString(a.Value)
	}
	return attrs
}

func v2Tags(ctx context.Context, client elbv2APIClient, arn string) map[string]string {
	out, err := client.DescribeTags(ctx, &elbv2svc.DescribeTagsInput{
		ResourceArns: []string{arn},
	})
	if err != nil {
		return nil
	}
	var tags []elbv2types.Tag
	for _, td := range out.TagDescriptions {
		tags = append(tags, td.Tags...)
	}
	return tagMap(tags, func(t elbv2types.Tag) (*string, *string) { return t.Key, t.Value })
}
