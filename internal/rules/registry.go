package rules

import (
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

// existenceChecks holds the first check of every service that short-circuits
// on an empty inventory. IAM has none.
var existenceChecks = map[models.ServiceName]string{
	models.ServiceEC2:        "EC2 Instances Exist",
	models.ServiceS3:         "S3 Buckets Exist",
	models.ServiceVPC:        "VPCs Exist",
	models.ServiceRDS:        "RDS Instances Exist",
	models.ServiceLambda:     "Lambda Functions Exist",
	models.ServiceCloudTrail: "CloudTrail Trails Exist",
	models.ServiceEBS:        "EBS Volumes Exist",
	models.ServiceELB:        "ELBs Exist",
	models.ServiceSNS:        "SNS Topics Exist",
	models.ServiceSQS:        "SQS Queues Exist",
}

// CheckNames returns the check names of service in evaluation order, the
// existence check first. It returns nil for an unknown service.
func CheckNames(service models.ServiceName) []string {
	var names []string
	switch service {
	case models.ServiceEC2:
		names = ec2Catalogue.Names()
	case models.ServiceIAM:
		return iamCatalogue.Names()
	case models.ServiceS3:
		names = s3Catalogue.Names()
	case models.ServiceVPC:
		names = vpcCatalogue.Names()
	case models.ServiceRDS:
		names = rdsCatalogue.Names()
	case models.ServiceLambda:
		names = lambdaCatalogue.Names()
	case models.ServiceCloudTrail:
		names = trailCatalogue.Names()
	case models.ServiceEBS:
		names = ebsCatalogue.Names()
	case models.ServiceELB:
		names = elbCatalogue.Names()
	case models.ServiceSNS:
		names = snsCatalogue.Names()
	case models.ServiceSQS:
		names = sqsCatalogue.Names()
	default:
		return nil
	}
	return append([]string{existenceChecks[service]}, names...)
}
