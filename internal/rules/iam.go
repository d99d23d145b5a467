package rules

import (
	"strings"
	"time"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/policydoc"
)

// Offender ids for IAM findings that belong to the account rather than to a
// user or policy.
const (
	RootOffenderID    = "root"
	AccountOffenderID = "account"
)

type iamRule = Rule[models.IAMInventory]

// EvaluateIAM runs the IAM catalogue. IAM is global: every user counts as
// an asset of the "global" region, and the catalogue runs even when the
// account has no users.
func EvaluateIAM(inv models.IAMInventory, opts Options) models.ServiceReport {
	idx := NewRegionIndex()
	for _, u := range inv.Users {
		idx.Asset(u.UserName, models.GlobalRegion)
	}
	for _, p := range inv.Policies {
		idx.Track(p.ARN, models.GlobalRegion)
	}
	idx.Track(RootOffenderID, models.GlobalRegion)
	idx.Track(AccountOffenderID, models.GlobalRegion)

	t := NewTally(idx)
	iamCatalogue.Run(t, inv, opts.withDefaults())
	return t.Report()
}

func iamUser(u models.IAMUser) Offender { return Offender{ID: u.UserName} }

func iamPolicy(p models.IAMPolicy) Offender { return Offender{ID: p.ARN, Label: p.Name} }

func usersWhere(bad func(models.IAMUser, Options) bool) func(models.IAMInventory, Options) []Offender {
	return func(inv models.IAMInventory, opts Options) []Offender {
		return offenders(inv.Users, iamUser, func(u models.IAMUser) bool { return bad(u, opts) })
	}
}

// accountWhen reports the account-level offender id when bad holds.
func accountWhen(id string, bad func(models.IAMInventory) bool) func(models.IAMInventory, Options) []Offender {
	return func(inv models.IAMInventory, _ Options) []Offender {
		if bad(inv) {
			return []Offender{{ID: id}}
		}
		return nil
	}
}

func activeKeys(u models.IAMUser) int {
	n := 0
	for _, k := range u.AccessKeys {
		if k.Active() {
			n++
		}
	}
	return n
}

// signedInWithin reports whether the user used the console password within d
// of opts.Now.
func signedInWithin(u models.IAMUser, opts Options, d time.Duration) bool {
	return u.PasswordLastUsed != nil && opts.Now.Sub(*u.PasswordLastUsed) <= d
}

// policyViolates reports whether bad holds for the policy's default version.
// A missing document never violates; one that does not parse always does.
func policyViolates(p models.IAMPolicy, bad func(*policydoc.Document) bool) bool {
	if p.Document == nil {
		return false
	}
	doc, err := policydoc.Parse(*p.Document)
	if err != nil {
		return true
	}
	return bad(doc)
}

func strongPasswordPolicy(p *models.IAMPasswordPolicy) bool {
	return p != nil &&
		p.MinimumLength >= 8 &&
		p.RequireSymbols &&
		p.RequireNumbers &&
		p.RequireUppercase &&
		p.RequireLowercase
}

var iamCatalogue = NewCatalogue(
	iamRule{
		Name: "Root User MFA",
		Pass: "Root user has MFA enabled.",
		Fail: "Root user does not have MFA enabled (critical security risk).",
		Check: accountWhen(RootOffenderID, func(inv models.IAMInventory) bool {
			return inv.Summary["AccountMFAEnabled"] != 1
		}),
	},
	iamRule{
		Name: "No Root Access Keys",
		Pass: "No access keys exist for the root user.",
		Fail: "Root user has access keys (should be removed).",
		Check: accountWhen(RootOffenderID, func(inv models.IAMInventory) bool {
			return inv.Summary["AccountAccessKeysPresent"] != 0
		}),
	},
	iamRule{
		Name:  "All Users MFA",
		Pass:  "All IAM users have MFA enabled.",
		Fail:  "Some users (%s) lack MFA.",
		Check: usersWhere(func(u models.IAMUser, _ Options) bool { return u.MFADevices == 0 }),
	},
	iamRule{
		Name: "No Old Access Keys",
		Pass: "No active access keys older than 90 days.",
		Fail: "Some users (%s) have active access keys older than 90 days.",
		Check: usersWhere(func(u models.IAMUser, opts Options) bool {
			for _, k := range u.AccessKeys {
				if k.Active() && opts.Now.Sub(k.CreateDate) >= opts.AccessKeyMaxAge {
					return true
				}
			}
			return false
		}),
	},
	iamRule{
		Name:  "Users in Groups",
		Pass:  "All users are assigned to groups.",
		Fail:  "Some users (%s) have direct policies instead of group assignments.",
		Check: usersWhere(func(u models.IAMUser, _ Options) bool { return u.Groups == 0 }),
	},
	iamRule{
		Name:  "No Inline User Policies",
		Pass:  "No users have inline policies.",
		Fail:  "Some users (%s) have inline policies (use managed policies instead).",
		Check: usersWhere(func(u models.IAMUser, _ Options) bool { return u.InlinePolicies > 0 }),
	},
	iamRule{
		Name:  "IAM Groups Exist",
		Pass:  "IAM groups are defined.",
		Fail:  "No IAM groups exist (use groups for better management).",
		Check: accountWhen(AccountOffenderID, func(inv models.IAMInventory) bool { return inv.Groups == 0 }),
	},
	iamRule{
		Name: "Least Privilege Policies",
		Pass: "No overly permissive policies detected.",
		Fail: "Some policies (%s) are overly permissive.",
		Check: func(inv models.IAMInventory, _ Options) []Offender {
			return offenders(inv.Policies, iamPolicy, func(p models.IAMPolicy) bool {
				return strings.Contains(p.ARN, "AdministratorAccess") ||
					policyViolates(p, func(doc *policydoc.Document) bool { return doc.AllowsUnconditionally("*") })
			})
		},
	},
	iamRule{
		Name: "No Unused Users",
		Pass: "No IAM users unused for over 90 days.",
		Fail: "Some IAM users (%s) have not logged in for over 90 days.",
		Check: usersWhere(func(u models.IAMUser, opts Options) bool {
			last := u.CreateDate
			if u.PasswordLastUsed != nil {
				last = *u.PasswordLastUsed
			}
			return opts.Now.Sub(last) > opts.UnusedUserAge
		}),
	},
	iamRule{
		Name: "Strong Password Policy",
		Pass: "IAM password policy meets complexity requirements.",
		Fail: "No strong password policy defined or it lacks complexity.",
		Check: accountWhen(AccountOffenderID, func(inv models.IAMInventory) bool {
			return !strongPasswordPolicy(inv.PasswordPolicy)
		}),
	},
	iamRule{
		Name:  "No Multiple Active Keys",
		Pass:  "No users have multiple active access keys.",
		Fail:  "Some users (%s) have multiple active access keys.",
		Check: usersWhere(func(u models.IAMUser, _ Options) bool { return activeKeys(u) > 1 }),
	},
	iamRule{
		Name:  "IAM Roles Exist",
		Pass:  "IAM roles are defined.",
		Fail:  "No IAM roles exist (use roles for temporary credentials).",
		Check: accountWhen(AccountOffenderID, func(inv models.IAMInventory) bool { return inv.Roles == 0 }),
	},
	iamRule{
		Name: "No Wildcard Resources",
		Pass: "No policies use wildcard resources.",
		Fail: "Some policies (%s) use wildcard resources (*).",
		Check: func(inv models.IAMInventory, _ Options) []Offender {
			return offenders(inv.Policies, iamPolicy, func(p models.IAMPolicy) bool {
				return policyViolates(p, (*policydoc.Document).AllowsWildcardResource)
			})
		},
	},
	iamRule{
		Name: "Limited Console Access",
		Pass: "No recent console logins for programmatic users.",
		Fail: "Some users (%s) with programmatic access have recent console logins.",
		Check: usersWhere(func(u models.IAMUser, opts Options) bool {
			return activeKeys(u) > 0 && signedInWithin(u, opts, opts.UnusedUserAge)
		}),
	},
	iamRule{
		Name: "Security Contact Defined",
		Pass: "Account has a security contact defined.",
		Fail: "No security contact defined for the account.",
		Check: accountWhen(AccountOffenderID, func(inv models.IAMInventory) bool {
			return inv.Summary["AccountSecurityContact"] != 1
		}),
	},
)
