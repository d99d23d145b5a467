package rules

import (
	"slices"
	"strings"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

type ebsRule = Rule[models.EBSInventory]

// modernVolumeTypes are the current-generation volume types.
var modernVolumeTypes = []string{"gp3", "io2"}

const (
	maxVolumeSizeGiB = 16384
	minIO2IOPS       = 3000
)

// EvaluateEBS runs the EBS catalogue. Volumes and snapshots both count as
// assets.
func EvaluateEBS(inv models.EBSInventory, opts Options) models.ServiceReport {
	idx := NewRegionIndex()
	for _, v := range inv.Volumes {
		idx.Asset(v.VolumeID, v.Region)
	}
	for _, s := range inv.Snapshots {
		idx.Asset(s.SnapshotID, s.Region)
	}
	t := NewTally(idx)
	if t.Exists(existenceChecks[models.ServiceEBS], len(inv.Volumes) > 0,
		"EBS volumes are present.", "No EBS volumes found.") {
		ebsCatalogue.Run(t, inv, opts.withDefaults())
	}
	return t.Report()
}

func volumesWhere(bad func(models.EBSVolume, models.EBSInventory, Options) bool) func(models.EBSInventory, Options) []Offender {
	return func(inv models.EBSInventory, opts Options) []Offender {
		return offenders(inv.Volumes, func(v models.EBSVolume) Offender {
			return Offender{ID: v.VolumeID}
		}, func(v models.EBSVolume) bool { return bad(v, inv, opts) })
	}
}

func snapshotsWhere(bad func(models.EBSSnapshot) bool) func(models.EBSInventory, Options) []Offender {
	return func(inv models.EBSInventory, _ Options) []Offender {
		return offenders(inv.Snapshots, func(s models.EBSSnapshot) Offender {
			return Offender{ID: s.SnapshotID}
		}, bad)
	}
}

var ebsCatalogue = NewCatalogue(
	ebsRule{
		Name:  "EBS Encryption",
		Pass:  "All EBS volumes are encrypted.",
		Fail:  "Some volumes (%s) lack encryption.",
		Check: volumesWhere(func(v models.EBSVolume, _ models.EBSInventory, _ Options) bool { return !v.Encrypted }),
	},
	ebsRule{
		Name:  "Volumes Attached",
		Pass:  "All EBS volumes are attached to an instance.",
		Fail:  "Some volumes (%s) are unattached.",
		Check: volumesWhere(func(v models.EBSVolume, _ models.EBSInventory, _ Options) bool { return v.Attachments == 0 }),
	},
	ebsRule{
		Name: "Snapshots Exist",
		Pass: "All EBS volumes have at least one snapshot.",
		Fail: "Some volumes (%s) lack snapshots.",
		Check: volumesWhere(func(v models.EBSVolume, inv models.EBSInventory, _ Options) bool {
			return !slices.ContainsFunc(inv.Snapshots, func(s models.EBSSnapshot) bool { return s.VolumeID == v.VolumeID })
		}),
	},
	ebsRule{
		Name:  "Snapshots Encrypted",
		Pass:  "All EBS snapshots are encrypted.",
		Fail:  "Some snapshots (%s) lack encryption.",
		Check: snapshotsWhere(func(s models.EBSSnapshot) bool { return !s.Encrypted }),
	},
	ebsRule{
		Name:  "EBS Tagging",
		Pass:  "All EBS volumes are tagged.",
		Fail:  "Some volumes (%s) lack tags.",
		Check: volumesWhere(func(v models.EBSVolume, _ models.EBSInventory, _ Options) bool { return len(v.Tags) == 0 }),
	},
	ebsRule{
		Name:  "Snapshots Tagged",
		Pass:  "All EBS snapshots are tagged.",
		Fail:  "Some snapshots (%s) lack tags.",
		Check: snapshotsWhere(func(s models.EBSSnapshot) bool { return len(s.Tags) == 0 }),
	},
	ebsRule{
		Name: "Modern Volume Types",
		Pass: "All EBS volumes use modern types (gp3 or io2).",
		Fail: "Some volumes (%s) use outdated types.",
		Check: volumesWhere(func(v models.EBSVolume, _ models.EBSInventory, _ Options) bool {
			return !slices.Contains(modernVolumeTypes, v.VolumeType)
		}),
	},
	ebsRule{
		Name:  "Snapshots Private",
		Pass:  "All EBS snapshots are private.",
		Fail:  "Some snapshots (%s) are public.",
		Check: snapshotsWhere(func(s models.EBSSnapshot) bool { return s.Public }),
	},
	ebsRule{
		Name:  "Reasonable Volume Size",
		Pass:  "All EBS volumes are 16 TiB or smaller.",
		Fail:  "Some volumes (%s) exceed 16 TiB.",
		Check: volumesWhere(func(v models.EBSVolume, _ models.EBSInventory, _ Options) bool { return v.SizeGiB > maxVolumeSizeGiB }),
	},
	ebsRule{
		Name: "Sufficient IOPS",
		Pass: "All io2 EBS volumes have sufficient IOPS (>= 3000).",
		Fail: "Some io2 volumes (%s) have low IOPS.",
		Check: volumesWhere(func(v models.EBSVolume, _ models.EBSInventory, _ Options) bool {
			return v.VolumeType == "io2" && v.IOPS < minIO2IOPS
		}),
	},
	ebsRule{
		Name: "Recent Snapshots",
		Pass: "All EBS volumes have a snapshot from the last 7 days.",
		Fail: "Some volumes (%s) lack recent snapshots.",
		Check: volumesWhere(func(v models.EBSVolume, inv models.EBSInventory, opts Options) bool {
			return !slices.ContainsFunc(inv.Snapshots, func(s models.EBSSnapshot) bool {
				return s.VolumeID == v.VolumeID && opts.Now.Sub(s.StartTime) < opts.SnapshotMaxAge
			})
		}),
	},
	ebsRule{
		Name:  "Volumes in VPC",
		Pass:  "All EBS volumes are in a VPC (via attached instances).",
		Fail:  "Some volumes (%s) are not in a VPC.",
		Check: volumesWhere(func(v models.EBSVolume, _ models.EBSInventory, _ Options) bool { return len(v.AttachedInstanceIDs) == 0 }),
	},
	ebsRule{
		Name:  "Snapshots Described",
		Pass:  "All EBS snapshots have descriptions.",
		Fail:  "Some snapshots (%s) lack descriptions.",
		Check: snapshotsWhere(func(s models.EBSSnapshot) bool { return strings.TrimSpace(s.Description) == "" }),
	},
	ebsRule{
		Name:  "KMS Encryption",
		Pass:  "All EBS volumes use KMS encryption.",
		Fail:  "Some volumes (%s) use default AES-256 instead of KMS.",
		Check: volumesWhere(func(v models.EBSVolume, _ models.EBSInventory, _ Options) bool { return v.Encrypted && v.KMSKeyID == "" }),
	},
)
