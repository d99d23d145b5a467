package awssecurity

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	cloudwatchsvc "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	snssvc "github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	sqssvc "github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

// ---------------------------------------------------------------------------
// SNS
// ---------------------------------------------------------------------------

// CollectSNS gathers every topic in the target regions with its attributes,
// subscriptions, tags and CloudWatch metric presence.
func (c *DefaultSecurityCollector) CollectSNS(ctx context.Context, target Target) (models.SNSInventory, error) {
	parts, err := perRegion(ctx, c, target, func(ctx context.Context, clients *secClients, region string) ([]models.SNSTopic, error) {
		return c.collectTopics(ctx, clients, region)
	})
	if err != nil {
		return models.SNSInventory{}, err
	}
	return models.SNSInventory{Topics: flatten(parts)}, nil
}

func (c *DefaultSecurityCollector) collectTopics(ctx context.Context, clients *secClients, region string) ([]models.SNSTopic, error) {
	paginator := snssvc.NewListTopicsPaginator(clients.SNS, &snssvc.ListTopicsInput{})
	var topics []models.SNSTopic
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list SNS topics: %w", err)
		}
		for _, t := range page.Topics {
			topics = append(topics, models.SNSTopic{ARN: aws.ToString(t.TopicArn), Region: region})
		}
	}

	err := c.eachDetail(ctx, len(topics), func(ctx context.Context, i int) {
		t := &topics[i]
		if out, err := clients.SNS.GetTopicAttributes(ctx, &snssvc.GetTopicAttributesInput{TopicArn: aws.String(t.ARN)}); err == nil {
			t.Attributes = out.Attributes
		}
		t.Subscriptions = topicSubscriptions(ctx, clients.SNS, t.ARN)
		if out, err := clients.SNS.ListTagsForResource(ctx, &snssvc.ListTagsForResourceInput{ResourceArn: aws.String(t.ARN)}); err == nil {
			t.Tags = tagMap(out.Tags, func(tag snstypes.Tag) (*string, *string) { return tag.Key, tag.Value })
		}
		t.HasMetrics = hasMetrics(ctx, clients.CloudWatch, "AWS/SNS", "TopicName", lastSegment(t.ARN, ":"))
	})
	return topics, err
}

func topicSubscriptions(ctx context.Context, client snsAPIClient, arn string) []models.SNSSubscription {
	paginator := snssvc.NewListSubscriptionsByTopicPaginator(client, &snssvc.ListSubscriptionsByTopicInput{
		TopicArn: aws.String(arn),
	})
	var subs []models.SNSSubscription
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return subs
		}
		for _, s := range page.Subscriptions {
			subs = append(subs, models.SNSSubscription{
				ARN:      aws.ToString(s.SubscriptionArn),
				Protocol: aws.ToString(s.Protocol),
				Endpoint: aws.ToString(s.Endpoint),
			})
		}
	}
	return subs
}

// ---------------------------------------------------------------------------
// SQS
// ---------------------------------------------------------------------------

// CollectSQS gathers every queue in the target regions with all attributes,
// tags and CloudWatch metric presence.
func (c *DefaultSecurityCollector) CollectSQS(ctx context.Context, target Target) (models.SQSInventory, error) {
	parts, err := perRegion(ctx, c, target, func(ctx context.Context, clients *secClients, region string) ([]models.SQSQueue, error) {
		return c.collectQueues(ctx, clients, region)
	})
	if err != nil {
		return models.SQSInventory{}, err
	}
	return models.SQSInventory{Queues: flatten(parts)}, nil
}

func (c *DefaultSecurityCollector) collectQueues(ctx context.Context, clients *secClients, region string) ([]models.SQSQueue, error) {
	paginator := sqssvc.NewListQueuesPaginator(clients.SQS, &sqssvc.ListQueuesInput{})
	var queues []models.SQSQueue
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list SQS queues: %w", err)
		}
		for _, url := range page.QueueUrls {
			queues = append(queues, models.SQSQueue{URL: url, Region: region})
		}
	}

	err := c.eachDetail(ctx, len(queues), func(ctx context.Context, i int) {
		q := &queues[i]
		if out, err := clients.SQS.GetQueueAttributes(ctx, &sqssvc.GetQueueAttributesInput{
			QueueUrl:       aws.String(q.URL),
			AttributeNames: []sqstypes.QueueAttributeName{sqstypes.QueueAttributeNameAll},
		}); err == nil {
			q.Attributes = out.Attributes
		}
		if out, err := clients.SQS.ListQueueTags(ctx, &sqssvc.ListQueueTagsInput{QueueUrl: aws.String(q.URL)}); err == nil && len(out.Tags) > 0 {
			q.Tags = out.Tags
		}
		q.HasMetrics = hasMetrics(ctx, clients.CloudWatch, "AWS/SQS", "QueueName", lastSegment(q.URL, "/"))
	})
	return queues, err
}

// ---------------------------------------------------------------------------
// Shared
// ---------------------------------------------------------------------------

// hasMetrics reports whether CloudWatch lists any metric in namespace for the
// given dimension. Lookup failures count as no metrics.
func hasMetrics(ctx context.Context, client cloudWatchAPIClient, namespace, dimension, value string) bool {
	out, err := client.ListMetrics(ctx, &cloudwatchsvc.ListMetricsInput{
		Namespace: aws.String(namespace),
		Dimensions: []cwtypes.DimensionFilter{
			{Name: aws.String(dimension), Value: aws.String(value)},
		},
	})
	if err != nil {
		return false
	}
	return len(out.Metrics) > 0
}

func lastSegment(s, sep string) string {
	return s[strings.LastIndex(s, sep)+1:]
}
