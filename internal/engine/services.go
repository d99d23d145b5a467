package engine

import (
	"context"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
	awssecurity "github.com/pankaj-dahiya-devops/cloud-dome/internal/providers/aws/security"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/rules"
)

// service pairs the collection of one service's inventory with the
// evaluation of its rule catalogue.
type service struct {
	name models.ServiceName
	run  func(ctx context.Context, c awssecurity.SecurityCollector, target awssecurity.Target, opts rules.Options) (models.ServiceReport, error)
}

// newService binds a collector method to the evaluator of the same
// inventory type. The evaluator only runs when collection succeeded.
func newService[I any](
	name models.ServiceName,
	collect func(awssecurity.SecurityCollector, context.Context, awssecurity.Target) (I, error),
	evaluate func(I, rules.Options) models.ServiceReport,
) service {
	return service{
		name: name,
		run: func(ctx context.Context, c awssecurity.SecurityCollector, target awssecurity.Target, opts rules.Options) (models.ServiceReport, error) {
			inv, err := collect(c, ctx, target)
			if err != nil {
				return models.ServiceReport{}, err
			}
			return evaluate(inv, opts), nil
		},
	}
}

// defaultServices returns the scanned services in display order.
func defaultServices() []service {
	return []service{
		newService(models.ServiceEC2, awssecurity.SecurityCollector.CollectEC2, rules.EvaluateEC2),
		newService(models.ServiceIAM, awssecurity.SecurityCollector.CollectIAM, rules.EvaluateIAM),
		newService(models.ServiceS3, awssecurity.SecurityCollector.CollectS3, rules.EvaluateS3),
		newService(models.ServiceVPC, awssecurity.SecurityCollector.CollectVPC, rules.EvaluateVPC),
		newService(models.ServiceRDS, awssecurity.SecurityCollector.CollectRDS, rules.EvaluateRDS),
		newService(models.ServiceLambda, awssecurity.SecurityCollector.CollectLambda, rules.EvaluateLambda),
		newService(models.ServiceCloudTrail, awssecurity.SecurityCollector.CollectCloudTrail, rules.EvaluateCloudTrail),
		newService(models.ServiceEBS, awssecurity.SecurityCollector.CollectEBS, rules.EvaluateEBS),
		newService(models.ServiceELB, awssecurity.SecurityCollector.CollectELB, rules.EvaluateELB),
		newService(models.ServiceSNS, awssecurity.SecurityCollector.CollectSNS, rules.EvaluateSNS),
		newService(models.ServiceSQS, awssecurity.SecurityCollector.CollectSQS, rules.EvaluateSQS),
	}
}
