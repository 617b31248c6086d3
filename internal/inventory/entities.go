package inventory

import (
	"strings"
	"time"
)

// Purpose classifies what a subnet is reserved for.
type Purpose string

const (
	PurposePrivate   Purpose = "PRIVATE"
	PurposePSC       Purpose = "PSC"
	PurposeProxyOnly Purpose = "PROXY_ONLY"
	PurposeOther     Purpose = "OTHER"
)

// ParsePurpose maps the provider purpose string onto Purpose.
func ParsePurpose(raw string) Purpose {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "PRIVATE", "PRIVATE_RFC_1918":
		return PurposePrivate
	case "PRIVATE_SERVICE_CONNECT":
		return PurposePSC
	case "REGIONAL_MANAGED_PROXY", "GLOBAL_MANAGED_PROXY", "INTERNAL_HTTPS_LOAD_BALANCER":
		return PurposeProxyOnly
	default:
		return PurposeOther
	}
}

// Scheme combines the two independent load balancing facets of a forwarding rule.
type Scheme struct {
	Internal bool
	Managed  bool
}

// ParseScheme reads a loadBalancingScheme value such as "INTERNAL_MANAGED".
func ParseScheme(raw string) Scheme {
	raw = strings.ToUpper(strings.TrimSpace(raw))

	return Scheme{
		Internal: strings.HasPrefix(raw, "INTERNAL"),
		Managed:  strings.HasSuffix(raw, "_MANAGED"),
	}
}

func (s Scheme) String() string {
	reach := "EXTERNAL"
	if s.Internal {
		reach = "INTERNAL"
	}

	mode := "PASSTHROUGH"
	if s.Managed {
		mode = "MANAGED"
	}

	return reach + "_" + mode
}

type Project struct {
	Resource
	DisplayName string
	Number      int64
	State       string
	Labels      map[string]string
	ParentType  string
	ParentID    string
}

type Peering struct {
	Name string
	// Network is the peer network locator.
	Network string
	State   string
}

type Network struct {
	Resource
	Peerings          []Peering
	SubnetCount       int
	MTU               int64
	RoutingMode       string
	AutoCreateSubnets bool
}

type SecondaryRange struct {
	Name string
	CIDR string
}

type Subnet struct {
	Resource
	CIDR               string
	PrefixLength       int
	UsableAddressCount int64
	Purpose            Purpose
	RawPurpose         string
	GatewayAddress     string
	SecondaryRanges    []SecondaryRange
	// IAMMembers is filled by a second round trip; see WithIAMMembers.
	IAMMembers []string
}

// WithIAMMembers returns a copy of the subnet carrying members, sorted and
// deduplicated so repeated or reordered attachment yields the same value.
func (s Subnet) WithIAMMembers(members []string) Subnet {
	s.IAMMembers = sortedUnique(members)

	return s
}

// HasMember reports whether member is granted on the subnet.
func (s Subnet) HasMember(member string) bool {
	for _, m := range s.IAMMembers {
		if m == member {
			return true
		}
	}

	return false
}

// NetworkInterface is one NIC of an instance. Its Resource is keyed below
// the owning instance: {instance key}/{nic name}.
type NetworkInterface struct {
	Resource
	InstanceKey      string
	InstanceName     string
	Address          string
	ExternalAddress  string
	AccessConfigName string
	AccessConfigType string
}

type Instance struct {
	Resource
	MachineType  string
	Status       string
	CanIPForward bool
	Interfaces   []NetworkInterface
}

type ForwardingRule struct {
	Resource
	Address    string
	IPProtocol string
	Ports      string
	// Target is the host-relative locator of the target proxy, pool or service.
	Target    string
	RawScheme string
	Scheme    Scheme
}

type TargetProxy struct {
	Resource
	URLMap string
	// CertificateKeys are the composite keys of the attached certificates.
	CertificateKeys []string
}

// ReferencesCertificate reports whether key is among the attached certificates.
func (p TargetProxy) ReferencesCertificate(key string) bool {
	for _, k := range p.CertificateKeys {
		if k == key {
			return true
		}
	}

	return false
}

type NATGateway struct {
	Resource
	RouterKey        string
	AllocationOption string
	MinPortsPerVM    int64
	MaxPortsPerVM    int64
	// Addresses holds the manually allocated NAT addresses by name.
	Addresses []string
}

type BGPPeer struct {
	Name          string
	Address       string
	PeerAddress   string
	PeerASN       int64
	RoutePriority int64
}

type Router struct {
	Resource
	ASN      int64
	BGPPeers []BGPPeer
	NATs     []NATGateway
}

type FirewallRule struct {
	Resource
	Direction    string
	Priority     int64
	Disabled     bool
	SourceRanges []string
	TargetTags   []string
	Allowed      []string
	Denied       []string
}

type Certificate struct {
	Resource
	Type           string
	CommonName     string
	Subject        string
	Issuer         string
	ExpiresAt      time.Time
	IsExpired      bool
	IsExpiringSoon bool
}

// ExpiresWithin reports whether the certificate expires before now+window.
func (c Certificate) ExpiresWithin(now time.Time, window time.Duration) bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now.Add(window))
}

type Cluster struct {
	Resource
	Location          string
	Status            string
	EndpointAddresses []string
	PodRangeName      string
	ServiceRangeName  string
	MasterCIDR        string
}

type Database struct {
	Resource
	Version   string
	State     string
	Tier      string
	Addresses []string
}

type SecurityPolicyRule struct {
	Priority    int64
	Action      string
	Preview     bool
	Description string
	Expressions []string
}

type SecurityPolicy struct {
	Resource
	Type string
	// Rules are ordered by ascending priority.
	Rules []SecurityPolicyRule
}

// PrivateConnection is a private services access peering. It is keyed as
// {network key}/{peering name}.
type PrivateConnection struct {
	Resource
	PeerNetworkName string
	ServiceName     string
	ReservedRanges  []string
}
