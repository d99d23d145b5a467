package models

import "time"

// ---------------------------------------------------------------------------
// Compute: EC2 and EBS
// ---------------------------------------------------------------------------

// EC2Instance is one described instance with the attributes its checks read.
// TerminationProtection is nil when DescribeInstanceAttribute failed; rules
// treat that the same as protection being off.
type EC2Instance struct {
	InstanceID             string            `json:"instance_id"`
	Region                 string            `json:"region"`
	InstanceType           string            `json:"instance_type"`
	State                  string            `json:"state"`
	ImageID                string            `json:"image_id"`
	KeyName                string            `json:"key_name,omitempty"`
	VPCID                  string            `json:"vpc_id,omitempty"`
	PublicIP               string            `json:"public_ip,omitempty"`
	MetadataHTTPTokens     string            `json:"metadata_http_tokens,omitempty"`
	SecurityGroupIDs       []string          `json:"security_group_ids,omitempty"`
	SecurityGroupRuleCount int               `json:"security_group_rule_count"`
	IAMInstanceProfileARN  string            `json:"iam_instance_profile_arn,omitempty"`
	MonitoringState        string            `json:"monitoring_state,omitempty"`
	Volumes                []AttachedVolume  `json:"volumes,omitempty"`
	AutoScalingGroup       string            `json:"auto_scaling_group,omitempty"`
	TerminationProtection  *bool             `json:"termination_protection,omitempty"`
	Tags                   map[string]string `json:"tags,omitempty"`
}

// AttachedVolume is an EBS volume referenced by an instance block device
// mapping. Encrypted is nil when the volume could not be described.
type AttachedVolume struct {
	VolumeID  string `json:"volume_id"`
	Encrypted *bool  `json:"encrypted,omitempty"`
}

// EC2Inventory is everything the EC2 checks evaluate.
type EC2Inventory struct {
	Instances []EC2Instance `json:"instances"`
}

// EBSVolume is one described EBS volume.
type EBSVolume struct {
	VolumeID            string            `json:"volume_id"`
	Region              string            `json:"region"`
	VolumeType          string            `json:"volume_type"`
	SizeGiB             int32             `json:"size_gib"`
	IOPS                int32             `json:"iops"`
	Encrypted           bool              `json:"encrypted"`
	KMSKeyID            string            `json:"kms_key_id,omitempty"`
	AttachedInstanceIDs []string          `json:"attached_instance_ids,omitempty"`
	Attachments         int               `json:"attachments"`
	Tags                map[string]string `json:"tags,omitempty"`
}

// EBSSnapshot is one snapshot owned by the scanned account. Public is true
// when createVolumePermission grants the "all" group.
type EBSSnapshot struct {
	SnapshotID  string            `json:"snapshot_id"`
	VolumeID    string            `json:"volume_id,omitempty"`
	Region      string            `json:"region"`
	Description string            `json:"description,omitempty"`
	Encrypted   bool              `json:"encrypted"`
	StartTime   time.Time         `json:"start_time"`
	Public      bool              `json:"public"`
	Tags        map[string]string `json:"tags,omitempty"`
}

// EBSInventory is everything the EBS checks evaluate.
type EBSInventory struct {
	Volumes   []EBSVolume   `json:"volumes"`
	Snapshots []EBSSnapshot `json:"snapshots"`
}

// ---------------------------------------------------------------------------
// Networking: VPC
// ---------------------------------------------------------------------------

// VPC is one described virtual private cloud. DNSSupport and DNSHostnames
// are nil when DescribeVpcAttribute failed.
type VPC struct {
	VPCID        string            `json:"vpc_id"`
	Region       string            `json:"region"`
	CIDR         string            `json:"cidr,omitempty"`
	IsDefault    bool              `json:"is_default"`
	DNSSupport   *bool             `json:"dns_support,omitempty"`
	DNSHostnames *bool             `json:"dns_hostnames,omitempty"`
	FlowLogs     bool              `json:"flow_logs"`
	Tags         map[string]string `json:"tags,omitempty"`
}

// Subnet is one described subnet.
type Subnet struct {
	SubnetID         string `json:"subnet_id"`
	VPCID            string `json:"vpc_id"`
	Region           string `json:"region"`
	AvailabilityZone string `json:"availability_zone"`
	AvailableIPs     int32  `json:"available_ips"`
}

// Route is one entry of a route table. Destination holds the IPv4 or IPv6
// CIDR; Target holds whichever gateway, NAT or peering id the route uses.
type Route struct {
	Destination string `json:"destination"`
	GatewayID   string `json:"gateway_id,omitempty"`
	Target      string `json:"target,omitempty"`
}

// RouteTable is one described route table with its explicit subnet
// associations.
type RouteTable struct {
	RouteTableID string   `json:"route_table_id"`
	VPCID        string   `json:"vpc_id"`
	Region       string   `json:"region"`
	SubnetIDs    []string `json:"subnet_ids,omitempty"`
	Routes       []Route  `json:"routes,omitempty"`
}

// NACLEntry is one numbered network ACL rule.
type NACLEntry struct {
	RuleNumber int32  `json:"rule_number"`
	Egress     bool   `json:"egress"`
	Action     string `json:"action"`
	CIDR       string `json:"cidr,omitempty"`
}

// NetworkACL is one described network ACL.
type NetworkACL struct {
	NetworkACLID string      `json:"network_acl_id"`
	VPCID        string      `json:"vpc_id"`
	Region       string      `json:"region"`
	SubnetIDs    []string    `json:"subnet_ids,omitempty"`
	Entries      []NACLEntry `json:"entries,omitempty"`
}

// SecurityGroup is one described security group. IngressCIDRs flattens the
// IPv4 and IPv6 source ranges of every inbound permission.
type SecurityGroup struct {
	GroupID      string   `json:"group_id"`
	GroupName    string   `json:"group_name"`
	VPCID        string   `json:"vpc_id,omitempty"`
	Region       string   `json:"region"`
	Description  string   `json:"description,omitempty"`
	IngressCIDRs []string `json:"ingress_cidrs,omitempty"`
	RuleCount    int      `json:"rule_count"`
}

// InternetGateway is one described internet gateway.
type InternetGateway struct {
	InternetGatewayID string   `json:"internet_gateway_id"`
	Region            string   `json:"region"`
	AttachedVPCIDs    []string `json:"attached_vpc_ids,omitempty"`
}

// VPCInventory is everything the VPC checks evaluate.
type VPCInventory struct {
	VPCs             []VPC             `json:"vpcs"`
	Subnets          []Subnet          `json:"subnets"`
	RouteTables      []RouteTable      `json:"route_tables"`
	NetworkACLs      []NetworkACL      `json:"network_acls"`
	SecurityGroups   []SecurityGroup   `json:"security_groups"`
	InternetGateways []InternetGateway `json:"internet_gateways"`
}

// ---------------------------------------------------------------------------
// Databases: RDS
// ---------------------------------------------------------------------------

// RDSInstance is one described database instance.
type RDSInstance struct {
	DBInstanceID          string            `json:"db_instance_id"`
	ARN                   string            `json:"arn"`
	Region                string            `json:"region"`
	Engine                string            `json:"engine"`
	EngineVersion         string            `json:"engine_version"`
	StorageEncrypted      bool              `json:"storage_encrypted"`
	PubliclyAccessible    bool              `json:"publicly_accessible"`
	DeletionProtection    bool              `json:"deletion_protection"`
	MultiAZ               bool              `json:"multi_az"`
	IAMAuthentication     bool              `json:"iam_authentication"`
	BackupRetentionDays   int32             `json:"backup_retention_days"`
	VPCID                 string            `json:"vpc_id,omitempty"`
	EnhancedMonitoringARN string            `json:"enhanced_monitoring_arn,omitempty"`
	ParameterGroups       []string          `json:"parameter_groups,omitempty"`
	Tags                  map[string]string `json:"tags,omitempty"`
}

// RDSSnapshot is one described manual or automated DB snapshot.
type RDSSnapshot struct {
	SnapshotID string `json:"snapshot_id"`
	Region     string `json:"region"`
	Encrypted  bool   `json:"encrypted"`
}

// RDSSubnetGroup is one DB subnet group with the zones its subnets span.
type RDSSubnetGroup struct {
	Name              string   `json:"name"`
	Region            string   `json:"region"`
	AvailabilityZones []string `json:"availability_zones,omitempty"`
}

// RDSInventory is everything the RDS checks evaluate.
type RDSInventory struct {
	Instances    []RDSInstance    `json:"instances"`
	Snapshots    []RDSSnapshot    `json:"snapshots"`
	SubnetGroups []RDSSubnetGroup `json:"subnet_groups"`
}

// ---------------------------------------------------------------------------
// Load balancing: ELB classic and v2
// ---------------------------------------------------------------------------

// LoadBalancerKind distinguishes classic load balancers from the v2 types.
type LoadBalancerKind string

const (
	LoadBalancerClassic     LoadBalancerKind = "classic"
	LoadBalancerApplication LoadBalancerKind = "application"
	LoadBalancerNetwork     LoadBalancerKind = "network"
	LoadBalancerGateway     LoadBalancerKind = "gateway"
)

// Attribute keys shared by classic and v2 load balancers. Classic attributes
// are normalised into the v2 key space when collected.
const (
	LBAttrAccessLogs         = "access_logs.s3.enabled"
	LBAttrDeletionProtection = "deletion_protection.enabled"
	LBAttrCrossZone          = "load_balancing.cross_zone.enabled"
	LBAttrIdleTimeout        = "idle_timeout.timeout_seconds"
	LBAttrConnectionDraining = "connection_draining.enabled"
)

// Listener is one front-end listener of a load balancer.
type Listener struct {
	Protocol      string `json:"protocol"`
	Port          int32  `json:"port"`
	CertificateID string `json:"certificate_id,omitempty"`
}

// LoadBalancer is one classic or v2 load balancer. ARN is empty for classic
// load balancers, which are identified by name. Attributes is nil when the
// attribute lookup failed.
type LoadBalancer struct {
	Name              string            `json:"name"`
	ARN               string            `json:"arn,omitempty"`
	Region            string            `json:"region"`
	Kind              LoadBalancerKind  `json:"kind"`
	Scheme            string            `json:"scheme,omitempty"`
	VPCID             string            `json:"vpc_id,omitempty"`
	SecurityGroups    []string          `json:"security_groups,omitempty"`
	AvailabilityZones []string          `json:"availability_zones,omitempty"`
	Listeners         []Listener        `json:"listeners,omitempty"`
	HealthCheckTarget string            `json:"health_check_target,omitempty"`
	Attributes        map[string]string `json:"attributes,omitempty"`
	Tags              map[string]string `json:"tags,omitempty"`
}

// ID returns the service-native identifier: the name for classic load
// balancers and the ARN for v2.
func (lb LoadBalancer) ID() string {
	if lb.Kind == LoadBalancerClassic || lb.ARN == "" {
		return lb.Name
	}
	return lb.ARN
}

// ELBInventory is everything the ELB checks evaluate.
type ELBInventory struct {
	LoadBalancers []LoadBalancer `json:"load_balancers"`
}
