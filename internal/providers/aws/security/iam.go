package awssecurity

import (
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

// CollectIAM reads the account-wide IAM inventory once from the home region.
// Users, customer managed policies, groups and roles are primary listings;
// per-user lookups, policy documents, the account summary and the password
// policy are detail lookups.
func (c *DefaultSecurityCollector) CollectIAM(ctx context.Context, target Target) (models.IAMInventory, error) {
	client := c.global(target).IAM

	users, err := c.collectIAMUsers(ctx, client)
	if err != nil {
		return models.IAMInventory{}, err
	}
	policies, err := c.collectIAMPolicies(ctx, client)
	if err != nil {
		return models.IAMInventory{}, err
	}
	groups, err := countIAMGroups(ctx, client)
	if err != nil {
		return models.IAMInventory{}, err
	}
	roles, err := countIAMRoles(ctx, client)
	if err != nil {
		return models.IAMInventory{}, err
	}

	return models.IAMInventory{
		Summary:        accountSummary(ctx, client),
		Users:          users,
		Policies:       policies,
		Groups:         groups,
		Roles:          roles,
		PasswordPolicy: passwordPolicy(ctx, client),
	}, nil
}

// collectIAMUsers returns all IAM users in the account together with their
// MFA devices, access keys, group memberships, inline policies and console
// login profile. The ListUsers paginator handles accounts with many users.
func (c *DefaultSecurityCollector) collectIAMUsers(ctx context.Context, client iamAPIClient) ([]models.IAMUser, error) {
	paginator := iamsvc.NewListUsersPaginator(client, &iamsvc.ListUsersInput{})
	var users []models.IAMUser
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list IAM users: %w", err)
		}
		for _, u := range page.Users {
			users = append(users, models.IAMUser{
				UserName:         aws.ToString(u.UserName),
				ARN:              aws.ToString(u.Arn),
				CreateDate:       aws.ToTime(u.CreateDate),
				PasswordLastUsed: u.PasswordLastUsed,
			})
		}
	}

	err := c.eachDetail(ctx, len(users), func(ctx context.Context, i int) {
		u := &users[i]
		u.MFADevices = userMFADevices(ctx, client, u.UserName)
		u.AccessKeys = userAccessKeys(ctx, client, u.UserName)
		u.Groups = userGroups(ctx, client, u.UserName)
		u.InlinePolicies = userInlinePolicies(ctx, client, u.UserName)
		u.HasLoginProfile = userHasLoginProfile(ctx, client, u.UserName)
	})
	return users, err
}

// userMFADevices returns the number of MFA devices registered for the user.
// Errors are treated as "no MFA".
func userMFADevices(ctx context.Context, client iamAPIClient, userName string) int {
	out, err := client.ListMFADevices(ctx, &iamsvc.ListMFADevicesInput{
		UserName: aws.String(userName),
	})
	if err != nil {
		return 0
	}
	return len(out.MFADevices)
}

func userAccessKeys(ctx context.Context, client iamAPIClient, userName string) []models.IAMAccessKey {
	out, err := client.ListAccessKeys(ctx, &iamsvc.ListAccessKeysInput{
		UserName: aws.String(userName),
	})
	if err != nil {
		return nil
	}
	keys := make([]models.IAMAccessKey, 0, len(out.AccessKeyMetadata))
	for _, k := range out.AccessKeyMetadata {
		keys = append(keys, models.IAMAccessKey{
			AccessKeyID: aws.ToString(k.AccessKeyId),
			Status:      string(k.Status),
			CreateDate:  aws.ToTime(k.CreateDate),
		})
	}
	return keys
}

func userGroups(ctx context.Context, client iamAPIClient, userName string) int {
	out, err := client.ListGroupsForUser(ctx, &iamsvc.ListGroupsForUserInput{
		UserName: aws.String(userName),
	})
	if err != nil {
		return 0
	}
	return len(out.Groups)
}

func userInlinePolicies(ctx context.Context, client iamAPIClient, userName string) int {
	out, err := client.ListUserPolicies(ctx, &iamsvc.ListUserPoliciesInput{
		UserName: aws.String(userName),
	})
	if err != nil {
		return 0
	}
	return len(out.PolicyNames)
}

// userHasLoginProfile returns true when the user has a console password.
// GetLoginProfile returns NoSuchEntity when no login profile exists, which
// is treated as false like any other error.
func userHasLoginProfile(ctx context.Context, client iamAPIClient, userName string) bool {
	_, err := client.GetLoginProfile(ctx, &iamsvc.GetLoginProfileInput{
		UserName: aws.String(userName),
	})
	return err == nil
}

// collectIAMPolicies lists customer managed policies and fetches the
// document of each default version.
func (c *DefaultSecurityCollector) collectIAMPolicies(ctx context.Context, client iamAPIClient) ([]models.IAMPolicy, error) {
	paginator := iamsvc.NewListPoliciesPaginator(client, &iamsvc.ListPoliciesInput{
		Scope: iamtypes.PolicyScopeTypeLocal,
	})
	var policies []models.IAMPolicy
	var versions []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list IAM policies: %w", err)
		}
		for _, p := range page.Policies {
			policies = append(policies, models.IAMPolicy{
				Name: aws.ToString(p.PolicyName),
				ARN:  aws.ToString(p.Arn),
			})
			versions = append(versions, aws.ToString(p.DefaultVersionId))
		}
	}

	err := c.eachDetail(ctx, len(policies), func(ctx context.Context, i int) {
		policies[i].Document = policyDocument(ctx, client, policies[i].ARN, versions[i])
	})
	return policies, err
}

// policyDocument returns the decoded JSON of one policy version, or nil when
// it could not be read. IAM returns documents URL-encoded.
func policyDocument(ctx context.Context, client iamAPIClient, arn, versionID string) *string {
	out, err := client.GetPolicyVersion(ctx, &iamsvc.GetPolicyVersionInput{
		PolicyArn: aws.String(arn),
		VersionId: aws.String(versionID),
	})
	if err != nil || out.PolicyVersion == nil || out.PolicyVersion.Document == nil {
		return nil
	}
	raw := aws.ToString(out.PolicyVersion.Document)
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	return &raw
}

func countIAMGroups(ctx context.Context, client iamAPIClient) (int, error) {
	paginator := iamsvc.NewListGroupsPaginator(client, &iamsvc.ListGroupsInput{})
	n := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("list IAM groups: %w", err)
		}
		n += len(page.Groups)
	}
	return n, nil
}

func countIAMRoles(ctx context.Context, client iamAPIClient) (int, error) {
	paginator := iamsvc.NewListRolesPaginator(client, &iamsvc.ListRolesInput{})
	n := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("list IAM roles: %w", err)
		}
		n += len(page.Roles)
	}
	return n, nil
}

// accountSummary returns the GetAccountSummary map, or an empty map when the
// call failed. Root checks then fail closed.
func accountSummary(ctx context.Context, client iamAPIClient) map[string]int32 {
	out, err := client.GetAccountSummary(ctx, &iamsvc.GetAccountSummaryInput{})
	if err != nil || out.SummaryMap == nil {
		return map[string]int32{}
	}
	return out.SummaryMap
}

// passwordPolicy returns the account password policy; nil when none is set
// (NoSuchEntity) or the lookup failed.
func passwordPolicy(ctx context.Context, client iamAPIClient) *models.IAMPasswordPolicy {
	out, err := client.GetAccountPasswordPolicy(ctx, &iamsvc.GetAccountPasswordPolicyInput{})
	if err != nil || out.PasswordPolicy == nil {
		return nil
	}
	p := out.PasswordPolicy
	return &models.IAMPasswordPolicy{
		MinimumLength:    aws.ToInt32(p.MinimumPasswordLength),
		RequireSymbols:   truthy(p.RequireSymbols),
		RequireNumbers:   truthy(p.RequireNumbers),
		RequireUppercase: truthy(p.RequireUppercaseCharacters),
		RequireLowercase: truthy(p.RequireLowercaseCharacters),
	}
}
