package rules

import (
	"strings"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

type rdsRule = Rule[models.RDSInventory]

// currentEngines are the engine+major.minor prefixes considered recent.
var currentEngines = []string{"mysql8.0", "postgres15", "aurora-mysql8.0", "aurora-postgresql15"}

// minBackupRetentionDays is the shortest acceptable automated backup window.
const minBackupRetentionDays = 7

// EvaluateRDS runs the RDS catalogue. Instances and snapshots are assets;
// subnet groups can be flagged but are not counted.
func EvaluateRDS(inv models.RDSInventory, opts Options) models.ServiceReport {
	idx := NewRegionIndex()
	for _, db := range inv.Instances {
		idx.Asset(db.DBInstanceID, db.Region)
	}
	for _, s := range inv.Snapshots {
		idx.Asset(s.SnapshotID, s.Region)
	}
	for _, g := range inv.SubnetGroups {
		idx.Track(g.Name, g.Region)
	}

	t := NewTally(idx)
	if t.Exists(existenceChecks[models.ServiceRDS], len(inv.Instances) > 0,
		"RDS instances are present.", "No RDS instances found.") {
		rdsCatalogue.Run(t, inv, opts.withDefaults())
	}
	return t.Report()
}

func databasesWhere(bad func(models.RDSInstance) bool) func(models.RDSInventory, Options) []Offender {
	return func(inv models.RDSInventory, _ Options) []Offender {
		return offenders(inv.Instances, func(db models.RDSInstance) Offender {
			return Offender{ID: db.DBInstanceID}
		}, bad)
	}
}

// engineRelease returns engine followed by the major.minor part of version,
// e.g. "mysql8.0" for mysql 8.0.35.
func engineRelease(engine, version string) string {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return engine + strings.Join(parts, ".")
}

var rdsCatalogue = NewCatalogue(
	rdsRule{
		Name:  "RDS Encryption",
		Pass:  "All RDS instances are encrypted.",
		Fail:  "Some instances (%s) lack encryption.",
		Check: databasesWhere(func(db models.RDSInstance) bool { return !db.StorageEncrypted }),
	},
	rdsRule{
		Name:  "Automatic Backups",
		Pass:  "All RDS instances have automatic backups enabled.",
		Fail:  "Some instances (%s) lack backups.",
		Check: databasesWhere(func(db models.RDSInstance) bool { return db.BackupRetentionDays == 0 }),
	},
	rdsRule{
		Name:  "Instances in VPC",
		Pass:  "All RDS instances are in a VPC.",
		Fail:  "Some instances (%s) are not in a VPC.",
		Check: databasesWhere(func(db models.RDSInstance) bool { return db.VPCID == "" }),
	},
	rdsRule{
		Name:  "Not Publicly Accessible",
		Pass:  "No RDS instances are publicly accessible.",
		Fail:  "Some instances (%s) are publicly accessible.",
		Check: databasesWhere(func(db models.RDSInstance) bool { return db.PubliclyAccessible }),
	},
	rdsRule{
		Name:  "Deletion Protection",
		Pass:  "All RDS instances have deletion protection.",
		Fail:  "Some instances (%s) lack deletion protection.",
		Check: databasesWhere(func(db models.RDSInstance) bool { return !db.DeletionProtection }),
	},
	rdsRule{
		Name:  "Multi-AZ Enabled",
		Pass:  "All RDS instances have Multi-AZ enabled.",
		Fail:  "Some instances (%s) lack Multi-AZ.",
		Check: databasesWhere(func(db models.RDSInstance) bool { return !db.MultiAZ }),
	},
	rdsRule{
		Name:  "Enhanced Monitoring",
		Pass:  "All RDS instances have enhanced monitoring enabled.",
		Fail:  "Some instances (%s) lack enhanced monitoring.",
		Check: databasesWhere(func(db models.RDSInstance) bool { return db.EnhancedMonitoringARN == "" }),
	},
	rdsRule{
		Name: "Custom Parameter Groups",
		Pass: "All RDS instances use custom parameter groups.",
		Fail: "Some instances (%s) use default parameter groups.",
		Check: databasesWhere(func(db models.RDSInstance) bool {
			for _, pg := range db.ParameterGroups {
				if strings.HasPrefix(pg, "default.") {
					return true
				}
			}
			return false
		}),
	},
	rdsRule{
		Name: "Snapshots Encrypted",
		Pass: "All RDS snapshots are encrypted.",
		Fail: "Some snapshots (%s) lack encryption.",
		Check: func(inv models.RDSInventory, _ Options) []Offender {
			return offenders(inv.Snapshots, func(s models.RDSSnapshot) Offender {
				return Offender{ID: s.SnapshotID}
			}, func(s models.RDSSnapshot) bool { return !s.Encrypted })
		},
	},
	rdsRule{
		Name:  "IAM Authentication",
		Pass:  "All RDS instances have IAM database authentication enabled.",
		Fail:  "Some instances (%s) lack IAM auth.",
		Check: databasesWhere(func(db models.RDSInstance) bool { return !db.IAMAuthentication }),
	},
	rdsRule{
		Name: "Subnet Groups Multi-AZ",
		Pass: "All DB subnet groups span multiple AZs.",
		Fail: "Some subnet groups (%s) do not span multiple AZs.",
		Check: func(inv models.RDSInventory, _ Options) []Offender {
			return offenders(inv.SubnetGroups, func(g models.RDSSubnetGroup) Offender {
				return Offender{ID: g.Name}
			}, func(g models.RDSSubnetGroup) bool {
				zones := make(map[string]struct{}, len(g.AvailabilityZones))
				for _, z := range g.AvailabilityZones {
					zones[z] = struct{}{}
				}
				return len(zones) < 2
			})
		},
	},
	rdsRule{
		Name:  "RDS Tagging",
		Pass:  "All RDS instances are tagged.",
		Fail:  "Some instances (%s) lack tags.",
		Check: databasesWhere(func(db models.RDSInstance) bool { return len(db.Tags) == 0 }),
	},
	rdsRule{
		Name: "Sufficient Backup Retention",
		Pass: "All RDS instances have a backup retention period of 7+ days.",
		Fail: "Some instances (%s) have short retention periods.",
		Check: databasesWhere(func(db models.RDSInstance) bool {
			return db.BackupRetentionDays < minBackupRetentionDays
		}),
	},
	rdsRule{
		Name: "Latest Engine Version",
		Pass: "All RDS instances use a recent engine version.",
		Fail: "Some instances (%s) use outdated engine versions.",
		Check: databasesWhere(func(db models.RDSInstance) bool {
			return !hasPrefix(engineRelease(db.Engine, db.EngineVersion), currentEngines)
		}),
	},
)
