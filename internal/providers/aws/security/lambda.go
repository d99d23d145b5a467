package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

// CollectLambda gathers every function in the target regions merged with its
// concurrency setting, tags and resource policy.
func (c *DefaultSecurityCollector) CollectLambda(ctx context.Context, target Target) (models.LambdaInventory, error) {
	parts, err := perRegion(ctx, c, target, func(ctx context.Context, clients *secClients, region string) ([]models.LambdaFunction, error) {
		return c.collectFunctions(ctx, clients.Lambda, region)
	})
	if err != nil {
		return models.LambdaInventory{}, err
	}
	return models.LambdaInventory{Functions: flatten(parts)}, nil
}

func (c *DefaultSecurityCollector) collectFunctions(ctx context.Context, client lambdaAPIClient, region string) ([]models.LambdaFunction, error) {
	paginator := lambdasvc.NewListFunctionsPaginator(client, &lambdasvc.ListFunctionsInput{})
	var functions []models.LambdaFunction
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list Lambda functions: %w", err)
		}
		for _, fn := range page.Functions {
			functions = append(functions, toLambdaFunction(fn, region))
		}
	}

	err := c.eachDetail(ctx, len(functions), func(ctx context.Context, i int) {
		fn := &functions[i]
		if out, err := client.GetFunction(ctx, &lambdasvc.GetFunctionInput{FunctionName: aws.String(fn.ARN)}); err == nil {
			if out.Configuration != nil {
				fn.LastUpdateStatus = string(out.Configuration.LastUpdateStatus)
			}
			if out.Concurrency != nil && out.Concurrency.ReservedConcurrentExecutions != nil {
				fn.ReservedConcurrency = aws.Int32(*out.Concurrency.ReservedConcurrentExecutions)
			}
			if len(out.Tags) > 0 {
				fn.Tags = out.Tags
			}
		}
		// ResourceNotFoundException means the function has no resource policy.
		if out, err := client.GetPolicy(ctx, &lambdasvc.GetPolicyInput{FunctionName: aws.String(fn.ARN)}); err == nil {
			fn.Policy = out.Policy
		}
	})
	return functions, err
}

// toLambdaFunction converts a listed function configuration to the model.
func toLambdaFunction(fn lambdatypes.FunctionConfiguration, region string) models.LambdaFunction {
	out := models.LambdaFunction{
		Name:             aws.ToString(fn.FunctionName),
		ARN:              aws.ToString(fn.FunctionArn),
		Region:           region,
		Runtime:          string(fn.Runtime),
		Role:             aws.ToString(fn.Role),
		Description:      aws.ToString(fn.Description),
		TimeoutSeconds:   aws.ToInt32(fn.Timeout),
		MemoryMB:         aws.ToInt32(fn.MemorySize),
		KMSKeyARN:        aws.ToString(fn.KMSKeyArn),
		LastUpdateStatus: string(fn.LastUpdateStatus),
		LayerARNs: stringsOf(fn.Layers, func(l lambdatypes.Layer) *string {
			return l.Arn
		}),
	}
	if fn.VpcConfig != nil {
		out.VPCID = aws.ToString(fn.VpcConfig.VpcId)
	}
	if fn.TracingConfig != nil {
		out.TracingMode = string(fn.TracingConfig.Mode)
	}
	if fn.Environment != nil {
		out.HasEnvironment = len(fn.Environment.Variables) > 0
	}
	if fn.DeadLetterConfig != nil {
		out.DeadLetterTarget = aws.ToString(fn.DeadLetterConfig.TargetArn)
	}
	return out
}
