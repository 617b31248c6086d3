package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kedare/netscope/internal/gcp"
	"github.com/kedare/netscope/internal/logger"
	cloudresourcemanager "google.golang.org/api/cloudresourcemanager/v1"
	"google.golang.org/api/compute/v1"
	container "google.golang.org/api/container/v1"
	servicenetworking "google.golang.org/api/servicenetworking/v1"
	sqladmin "google.golang.org/api/sqladmin/v1beta4"
)

// DefaultExpiringSoon is the window after which a certificate is flagged as expiring soon.
const DefaultExpiringSoon = 21 * 24 * time.Hour

var (
	// ErrUnsupportedKind is returned for kinds that do not normalize into an entity.
	ErrUnsupportedKind = errors.New("unsupported resource kind")
	// ErrDecode wraps JSON decoding failures of a raw item.
	ErrDecode = errors.New("cannot decode raw item")
)

// Normalizer converts raw items into entities. It is safe for concurrent use.
type Normalizer struct {
	now          func() time.Time
	expiringSoon time.Duration
	// projectIDs resolves project numbers found in some locators to ids.
	projectIDs map[string]string
	metrics    *gcp.Metrics
}

// Option customises a Normalizer.
type Option func(*Normalizer)

// WithClock sets the wall clock used for certificate expiry flags.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// WithExpiringSoon overrides DefaultExpiringSoon.
func WithExpiringSoon(window time.Duration) Option {
	return func(n *Normalizer) {
		n.expiringSoon = window
	}
}

// WithProjectNumbers maps project numbers to project ids.
func WithProjectNumbers(numbers map[string]string) Option {
	return func(n *Normalizer) {
		n.projectIDs = numbers
	}
}

// WithMetrics counts dropped items on m.
func WithMetrics(m *gcp.Metrics) Option {
	return func(n *Normalizer) {
		n.metrics = m
	}
}

func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{now: time.Now, expiringSoon: DefaultExpiringSoon}
	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Normalize decodes raw as kind. Items whose locator yields no key are
// rejected with gcp.ErrMalformedLocator.
func (n *Normalizer) Normalize(kind gcp.Kind, raw gcp.RawItem) (Entity, error) {
	switch kind {
	case gcp.KindProject:
		return n.project(raw)
	case gcp.KindNetwork:
		return n.network(raw)
	case gcp.KindSubnet:
		return n.subnet(raw)
	case gcp.KindInstance:
		return n.instance(raw)
	case gcp.KindForwardingRule:
		return n.forwardingRule(raw)
	case gcp.KindTargetProxy:
		return n.targetProxy(raw)
	case gcp.KindRouter:
		return n.router(raw)
	case gcp.KindFirewallRule:
		return n.firewallRule(raw)
	case gcp.KindCertificate:
		return n.certificate(raw)
	case gcp.KindCluster:
		return n.cluster(raw)
	case gcp.KindDatabase:
		return n.database(raw)
	case gcp.KindSecurityPolicy:
		return n.securityPolicy(raw)
	case gcp.KindPrivateConnection:
		return n.privateConnection(raw)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
}

// NormalizeAll normalizes every item as kind and keeps the ones of type T.
// Rejected items are logged, counted and skipped.
func NormalizeAll[T Entity](n *Normalizer, kind gcp.Kind, items []gcp.RawItem) []T {
	out := make([]T, 0, len(items))
	dropped := 0

	for _, raw := range items {
		entity, err := n.Normalize(kind, raw)
		if err != nil {
			dropped++
			logger.Log.Debugf("Dropping %s item: %v", kind, err)

			continue
		}

		if typed, ok := entity.(T); ok {
			out = append(out, typed)
		}
	}

	n.metrics.ObserveDropped(kind, dropped)

	return out
}

func decode(kind gcp.Kind, raw gcp.RawItem, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, kind, err)
	}

	return nil
}

// base fills the shared fields from the item's own locator.
func (n *Normalizer) base(kind gcp.Kind, locator, name, description, created string) (Resource, error) {
	loc, err := gcp.ParseLocator(locator)
	loc.Project = n.resolveProject(loc.Project)

	r := Resource{
		Kind:        kind,
		Name:        name,
		Description: description,
		CreatedAt:   parseTime(created),
		Scope:       loc.Scope,
		Region:      loc.Region,
		Zone:        loc.Zone,
		ProjectID:   loc.Project,
		Locator:     loc.Path,
		Key:         loc.Key(),
	}

	if r.Name == "" {
		r.Name = loc.Name
	}

	if err != nil || r.Key == "" {
		return r, fmt.Errorf("%w: %s %q", gcp.ErrMalformedLocator, kind, locator)
	}

	return r, nil
}

// attach derives the network and subnet foreign keys from embedded references.
func (n *Normalizer) attach(r *Resource, network, subnetwork string) {
	if network != "" {
		if loc, err := gcp.ParseLocator(network); err == nil {
			loc.Project = n.resolveProject(loc.Project)
			r.NetworkKey = loc.Key()
			r.NetworkName = loc.Name
			r.NetworkProjectID = loc.Project
		}
	}

	if subnetwork != "" {
		if loc, err := gcp.ParseLocator(subnetwork); err == nil {
			loc.Project = n.resolveProject(loc.Project)
			r.SubnetKey = loc.Key()
			r.SubnetName = loc.Name
			if r.NetworkProjectID == "" {
				r.NetworkProjectID = loc.Project
			}
		}
	}
}

func (n *Normalizer) resolveProject(project string) string {
	if id, ok := n.projectIDs[project]; ok {
		return id
	}

	return project
}

func (n *Normalizer) project(raw gcp.RawItem) (Entity, error) {
	var item cloudresourcemanager.Project
	if err := decode(gcp.KindProject, raw, &item); err != nil {
		return nil, err
	}

	if item.ProjectId == "" {
		return nil, fmt.Errorf("%w: project without id", gcp.ErrMalformedLocator)
	}

	p := Project{
		Resource: Resource{
			Kind:      gcp.KindProject,
			Name:      item.ProjectId,
			CreatedAt: parseTime(item.CreateTime),
			Scope:     gcp.ScopeGlobal,
			ProjectID: item.ProjectId,
			Locator:   "projects/" + item.ProjectId,
			Key:       item.ProjectId,
		},
		DisplayName: item.Name,
		Number:      item.ProjectNumber,
		State:       item.LifecycleState,
		Labels:      item.Labels,
	}

	if item.Parent != nil {
		p.ParentType = item.Parent.Type
		p.ParentID = item.Parent.Id
	}

	return p, nil
}

func (n *Normalizer) network(raw gcp.RawItem) (Entity, error) {
	var item compute.Network
	if err := decode(gcp.KindNetwork, raw, &item); err != nil {
		return nil, err
	}

	r, err := n.base(gcp.KindNetwork, item.SelfLink, item.Name, item.Description, item.CreationTimestamp)
	if err != nil {
		return nil, err
	}

	r.NetworkKey = r.Key
	r.NetworkName = r.Name
	r.NetworkProjectID = r.ProjectID

	network := Network{
		Resource:          r,
		SubnetCount:       len(item.Subnetworks),
		MTU:               item.Mtu,
		AutoCreateSubnets: item.AutoCreateSubnetworks,
	}

	if item.RoutingConfig != nil {
		network.RoutingMode = item.RoutingConfig.RoutingMode
	}

	for _, peering := range item.Peerings {
		network.Peerings = append(network.Peerings, Peering{
			Name:    peering.Name,
			Network: peering.Network,
			State:   peering.State,
		})
	}

	return network, nil
}

func (n *Normalizer) subnet(raw gcp.RawItem) (Entity, error) {
	var item compute.Subnetwork
	if err := decode(gcp.KindSubnet, raw, &item); err != nil {
		return nil, err
	}

	r, err := n.base(gcp.KindSubnet, item.SelfLink, item.Name, item.Description, item.CreationTimestamp)
	if err != nil {
		return nil, err
	}

	n.attach(&r, item.Network, "")
	r.SubnetKey = r.Key
	r.SubnetName = r.Name
	if r.NetworkProjectID == "" {
		r.NetworkProjectID = r.ProjectID
	}

	subnet := Subnet{
		Resource:       r,
		CIDR:           item.IpCidrRange,
		Purpose:        ParsePurpose(item.Purpose),
		RawPurpose:     item.Purpose,
		GatewayAddress: item.GatewayAddress,
	}

	if prefix, err := netip.ParsePrefix(item.IpCidrRange); err == nil && prefix.Addr().Is4() {
		subnet.PrefixLength = prefix.Bits()
		subnet.UsableAddressCount = UsableAddresses(prefix.Bits())
	}

	for _, secondary := range item.SecondaryIpRanges {
		subnet.SecondaryRanges = append(subnet.SecondaryRanges, SecondaryRange{
			Name: secondary.RangeName,
			CIDR: secondary.IpCidrRange,
		})
	}

	return subnet, nil
}

// UsableAddresses returns 2^(32-bits) - 4, the addresses left once the
// provider reserves network, gateway, second-to-last and broadcast.
func UsableAddresses(bits int) int64 {
	if bits < 0 || bits > 32 {
		return 0
	}

	usable := int64(1)<<(32-bits) - 4
	if usable < 0 {
		return 0
	}

	return usable
}

func (n *Normalizer) instance(raw gcp.RawItem) (Entity, error) {
	var item compute.Instance
	if err := decode(gcp.KindInstance, raw, &item); err != nil {
		return nil, err
	}

	r, err := n.base(gcp.KindInstance, item.SelfLink, item.Name, item.Description, item.CreationTimestamp)
	if err != nil {
		return nil, err
	}

	instance := Instance{
		MachineType:  gcp.ResourceName(item.MachineType),
		Status:       item.Status,
		CanIPForward: item.CanIpForward,
	}

	for _, nic := range item.NetworkInterfaces {
		iface := NetworkInterface{
			Resource: Resource{
				Kind:      KindNetworkInterface,
				Name:      nic.Name,
				CreatedAt: r.CreatedAt,
				Scope:     r.Scope,
				Region:    r.Region,
				Zone:      r.Zone,
				ProjectID: r.ProjectID,
				Locator:   r.Locator + "/networkInterfaces/" + nic.Name,
				Key:       r.Key + "/" + nic.Name,
			},
			InstanceKey:  r.Key,
			InstanceName: r.Name,
			Address:      nic.NetworkIP,
		}
		n.attach(&iface.Resource, nic.Network, nic.Subnetwork)

		for _, access := range nic.AccessConfigs {
			iface.AccessConfigName = access.Name
			iface.AccessConfigType = access.Type
			iface.ExternalAddress = access.NatIP
		}

		instance.Interfaces = append(instance.Interfaces, iface)
	}

	if len(item.NetworkInterfaces) > 0 {
		n.attach(&r, item.NetworkInterfaces[0].Network, item.NetworkInterfaces[0].Subnetwork)
	}

	instance.Resource = r

	return instance, nil
}

func (n *Normalizer) forwardingRule(raw gcp.RawItem) (Entity, error) {
	var item compute.ForwardingRule
	if err := decode(gcp.KindForwardingRule, raw, &item); err != nil {
		return nil, err
	}

	r, err := n.base(gcp.KindForwardingRule, item.SelfLink, item.Name, item.Description, item.CreationTimestamp)
	if err != nil {
		return nil, err
	}

	n.attach(&r, item.Network, item.Subnetwork)

	rule := ForwardingRule{
		Resource:   r,
		Address:    item.IPAddress,
		IPProtocol: item.IPProtocol,
		RawScheme:  item.LoadBalancingScheme,
		Scheme:     ParseScheme(item.LoadBalancingScheme),
	}

	switch {
	case item.PortRange != "":
		rule.Ports = item.PortRange
	case len(item.Ports) > 0:
		rule.Ports = strings.Join(item.Ports, ",")
	default:
		rule.Ports = "all"
	}

	if item.Target != "" {
		target, _ := gcp.ParseLocator(item.Target)
		rule.Target = target.Path
	}

	return rule, nil
}

func (n *Normalizer) targetProxy(raw gcp.RawItem) (Entity, error) {
	var item compute.TargetHttpsProxy
	if err := decode(gcp.KindTargetProxy, raw, &item); err != nil {
		return nil, err
	}

	r, err := n.base(gcp.KindTargetProxy, item.SelfLink, item.Name, item.Description, item.CreationTimestamp)
	if err != nil {
		return nil, err
	}

	proxy := TargetProxy{Resource: r, URLMap: gcp.ResourceName(item.UrlMap)}

	for _, ref := range item.SslCertificates {
		loc, err := gcp.ParseLocator(ref)
		if err != nil {
			continue
		}

		loc.Project = n.resolveProject(loc.Project)
		if key := loc.Key(); key != "" {
			proxy.CertificateKeys = append(proxy.CertificateKeys, key)
		}
	}

	return proxy, nil
}

func (n *Normalizer) router(raw gcp.RawItem) (Entity, error) {
	var item compute.Router
	if err := decode(gcp.KindRouter, raw, &item); err != nil {
		return nil, err
	}

	r, err := n.base(gcp.KindRouter, item.SelfLink, item.Name, item.Description, item.CreationTimestamp)
	if err != nil {
		return nil, err
	}

	n.attach(&r, item.Network, "")

	router := Router{Resource: r}

	if item.Bgp != nil {
		router.ASN = item.Bgp.Asn
	}

	for _, peer := range item.BgpPeers {
		router.BGPPeers = append(router.BGPPeers, BGPPeer{
			Name:          peer.Name,
			Address:       peer.IpAddress,
			PeerAddress:   peer.PeerIpAddress,
			PeerASN:       peer.PeerAsn,
			RoutePriority: peer.AdvertisedRoutePriority,
		})
	}

	for _, nat := range item.Nats {
		gateway := NATGateway{
			Resource: Resource{
				Kind:             KindNATGateway,
				Name:             nat.Name,
				CreatedAt:        r.CreatedAt,
				Scope:            r.Scope,
				Region:           r.Region,
				ProjectID:        r.ProjectID,
				Locator:          r.Locator + "/nats/" + nat.Name,
				Key:              r.Key + "/" + nat.Name,
				NetworkKey:       r.NetworkKey,
				NetworkName:      r.NetworkName,
				NetworkProjectID: r.NetworkProjectID,
			},
			RouterKey:        r.Key,
			AllocationOption: nat.NatIpAllocateOption,
			MinPortsPerVM:    nat.MinPortsPerVm,
			MaxPortsPerVM:    nat.MaxPortsPerVm,
		}

		for _, address := range nat.NatIps {
			gateway.Addresses = append(gateway.Addresses, gcp.ResourceName(address))
		}

		router.NATs = append(router.NATs, gateway)
	}

	return router, nil
}

func (n *Normalizer) firewallRule(raw gcp.RawItem) (Entity, error) {
	var item compute.Firewall
	if err := decode(gcp.KindFirewallRule, raw, &item); err != nil {
		return nil, err
	}

	r, err := n.base(gcp.KindFirewallRule, item.SelfLink, item.Name, item.Description, item.CreationTimestamp)
	if err != nil {
		return nil, err
	}

	n.attach(&r, item.Network, "")

	rule := FirewallRule{
		Resource:     r,
		Direction:    item.Direction,
		Priority:     item.Priority,
		Disabled:     item.Disabled,
		SourceRanges: item.SourceRanges,
		TargetTags:   item.TargetTags,
	}

	for _, allowed := range item.Allowed {
		rule.Allowed = append(rule.Allowed, protocolPorts(allowed.IPProtocol, allowed.Ports))
	}

	for _, denied := range item.Denied {
		rule.Denied = append(rule.Denied, protocolPorts(denied.IPProtocol, denied.Ports))
	}

	return rule, nil
}

func protocolPorts(protocol string, ports []string) string {
	if len(ports) == 0 {
		return protocol
	}

	return protocol + ":" + strings.Join(ports, ",")
}

func (n *Normalizer) certificate(raw gcp.RawItem) (Entity, error) {
	var item compute.SslCertificate
	if err := decode(gcp.KindCertificate, raw, &item); err != nil {
		return nil, err
	}

	r, err := n.base(gcp.KindCertificate, item.SelfLink, item.Name, item.Description, item.CreationTimestamp)
	if err != nil {
		return nil, err
	}

	cert := Certificate{
		Resource:   r,
		Type:       item.Type,
		Issuer:     unknownField,
		Subject:    unknownField,
		CommonName: unknownField,
		ExpiresAt:  parseTime(item.ExpireTime),
	}

	if item.Managed != nil {
		cert.Issuer = managedIssuer
		if len(item.Managed.Domains) > 0 {
			cert.CommonName = item.Managed.Domains[0]
		}
	} else if item.Certificate != "" {
		if details, err := parsePEMCertificate(item.Certificate); err == nil {
			cert.Issuer = details.issuer
			cert.Subject = details.subject
			if details.commonName != "" {
				cert.CommonName = details.commonName
			}
		} else {
			logger.Log.Debugf("Cannot parse certificate %s: %v", r.Key, err)
		}
	}

	if name := preferredSAN(item.SubjectAlternativeNames); name != "" {
		cert.CommonName = name
	}

	if !cert.ExpiresAt.IsZero() {
		now := n.now()
		cert.IsExpired = cert.ExpiresAt.Before(now)
		cert.IsExpiringSoon = cert.ExpiresAt.Before(now.Add(n.expiringSoon))
	}

	return cert, nil
}

// preferredSAN returns the first non-wildcard name, or the first name when
// all of them are wildcards.
func preferredSAN(names []string) string {
	for _, name := range names {
		if !strings.HasPrefix(name, "*") {
			return name
		}
	}

	if len(names) > 0 {
		return names[0]
	}

	return ""
}

func (n *Normalizer) cluster(raw gcp.RawItem) (Entity, error) {
	var item container.Cluster
	if err := decode(gcp.KindCluster, raw, &item); err != nil {
		return nil, err
	}

	r, err := n.base(gcp.KindCluster, item.SelfLink, item.Name, item.Description, item.CreateTime)
	if err != nil {
		return nil, err
	}

	if item.NetworkConfig != nil {
		n.attach(&r, item.NetworkConfig.Network, item.NetworkConfig.Subnetwork)
	}

	cluster := Cluster{Resource: r, Location: item.Location, Status: item.Status}

	if pcc := item.PrivateClusterConfig; pcc != nil {
		if pcc.PublicEndpoint != "" {
			cluster.EndpointAddresses = append(cluster.EndpointAddresses, pcc.PublicEndpoint)
		}
		if pcc.EnablePrivateEndpoint && pcc.PrivateEndpoint != "" {
			cluster.EndpointAddresses = append(cluster.EndpointAddresses, pcc.PrivateEndpoint)
		}
		cluster.MasterCIDR = pcc.MasterIpv4CidrBlock
	} else if item.Endpoint != "" {
		cluster.EndpointAddresses = append(cluster.EndpointAddresses, item.Endpoint)
	}

	if policy := item.IpAllocationPolicy; policy != nil {
		cluster.PodRangeName = policy.ClusterSecondaryRangeName
		cluster.ServiceRangeName = policy.ServicesSecondaryRangeName
	}

	return cluster, nil
}

func (n *Normalizer) database(raw gcp.RawItem) (Entity, error) {
	var item sqladmin.DatabaseInstance
	if err := decode(gcp.KindDatabase, raw, &item); err != nil {
		return nil, err
	}

	locator := item.SelfLink
	if locator == "" && item.Project != "" {
		locator = "projects/" + item.Project + "/instances/" + item.Name
	}

	r, err := n.base(gcp.KindDatabase, locator, item.Name, "", item.CreateTime)
	if err != nil {
		return nil, err
	}

	// Instance locators carry no region segment.
	if item.Region != "" {
		r.Scope = gcp.ScopeRegional
		r.Region = item.Region
		r.Key = gcp.ComposeKey(r.Scope, r.ProjectID, r.Region, "", r.Name)
	}

	db := Database{Resource: r, Version: item.DatabaseVersion, State: item.State}

	if settings := item.Settings; settings != nil {
		db.Tier = settings.Tier
		if settings.IpConfiguration != nil {
			n.attach(&db.Resource, settings.IpConfiguration.PrivateNetwork, "")
		}
	}

	for _, mapping := range item.IpAddresses {
		if mapping.IpAddress != "" {
			db.Addresses = append(db.Addresses, mapping.IpAddress)
		}
	}

	return db, nil
}

func (n *Normalizer) securityPolicy(raw gcp.RawItem) (Entity, error) {
	var item compute.SecurityPolicy
	if err := decode(gcp.KindSecurityPolicy, raw, &item); err != nil {
		return nil, err
	}

	r, err := n.base(gcp.KindSecurityPolicy, item.SelfLink, item.Name, item.Description, item.CreationTimestamp)
	if err != nil {
		return nil, err
	}

	policy := SecurityPolicy{Resource: r, Type: item.Type}

	for _, rule := range item.Rules {
		entry := SecurityPolicyRule{
			Priority:    rule.Priority,
			Action:      rule.Action,
			Preview:     rule.Preview,
			Description: rule.Description,
		}

		if match := rule.Match; match != nil {
			if match.Expr != nil && match.Expr.Expression != "" {
				entry.Expressions = append(entry.Expressions, match.Expr.Expression)
			}
			if match.Config != nil && len(match.Config.SrcIpRanges) > 0 {
				entry.Expressions = append(entry.Expressions, "srcIpRanges: "+strings.Join(match.Config.SrcIpRanges, ","))
			}
		}

		policy.Rules = append(policy.Rules, entry)
	}

	sort.SliceStable(policy.Rules, func(i, j int) bool {
		return policy.Rules[i].Priority < policy.Rules[j].Priority
	})

	return policy, nil
}

func (n *Normalizer) privateConnection(raw gcp.RawItem) (Entity, error) {
	var item servicenetworking.Connection
	if err := decode(gcp.KindPrivateConnection, raw, &item); err != nil {
		return nil, err
	}

	var r Resource
	n.attach(&r, item.Network, "")
	if r.NetworkKey == "" {
		return nil, fmt.Errorf("%w: %s network %q", gcp.ErrMalformedLocator, gcp.KindPrivateConnection, item.Network)
	}

	service := strings.TrimPrefix(item.Service, "services/")
	network, _ := gcp.ParseLocator(item.Network)

	r.Kind = gcp.KindPrivateConnection
	r.Name = service
	r.Scope = gcp.ScopeGlobal
	r.ProjectID = r.NetworkProjectID
	r.Locator = network.Path
	r.Key = r.NetworkKey + "/" + service

	return PrivateConnection{
		Resource:        r,
		PeerNetworkName: item.Peering,
		ServiceName:     service,
		ReservedRanges:  item.ReservedPeeringRanges,
	}, nil
}

// NetworkUserRole is the role granting use of shared VPC subnets.
const NetworkUserRole = "roles/compute.networkUser"

// IAMMembers returns the distinct members of the policy bindings for role,
// or of every binding when role is empty. Deleted principals are skipped.
func IAMMembers(raw gcp.RawItem, role string) ([]string, error) {
	var policy compute.Policy
	if err := decode(gcp.KindIAMPolicy, raw, &policy); err != nil {
		return nil, err
	}

	var members []string
	for _, binding := range policy.Bindings {
		if role != "" && binding.Role != role {
			continue
		}

		for _, member := range binding.Members {
			if !strings.HasPrefix(member, "deleted:") {
				members = append(members, member)
			}
		}
	}

	return sortedUnique(members), nil
}

// RouterNATAddresses returns every NAT address reported by a router status,
// both automatically and manually allocated.
func RouterNATAddresses(raw gcp.RawItem) ([]string, error) {
	var status compute.RouterStatusResponse
	if err := decode(gcp.KindRouterStatus, raw, &status); err != nil {
		return nil, err
	}

	if status.Result == nil {
		return nil, nil
	}

	var addresses []string
	for _, nat := range status.Result.NatStatus {
		addresses = append(addresses, nat.AutoAllocatedNatIps...)
		addresses = append(addresses, nat.UserAllocatedNatIps...)
	}

	return sortedUnique(addresses), nil
}

// XpnHost returns the shared VPC host project id of a getXpnHost response,
// or "" when the project is not attached to a host.
func XpnHost(raw gcp.RawItem) (string, error) {
	var project compute.Project
	if err := decode(gcp.KindXpnHost, raw, &project); err != nil {
		return "", err
	}

	return project.Name, nil
}

// XpnServiceProjects returns the project ids listed by getXpnResources.
func XpnServiceProjects(items []gcp.RawItem) []string {
	var projects []string
	for _, raw := range items {
		var resource compute.XpnResourceId
		if err := decode(gcp.KindXpnResources, raw, &resource); err != nil {
			logger.Log.Debugf("Skipping shared VPC resource: %v", err)

			continue
		}

		if resource.Type == "PROJECT" && resource.Id != "" {
			projects = append(projects, resource.Id)
		}
	}

	return sortedUnique(projects)
}

// ProjectNumbers maps each project number to its id.
func ProjectNumbers(projects []Project) map[string]string {
	numbers := make(map[string]string, len(projects))
	for _, p := range projects {
		if p.Number != 0 {
			numbers[strconv.FormatInt(p.Number, 10)] = p.ProjectID
		}
	}

	return numbers
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}

	return t
}

func sortedUnique(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	out := append([]string(nil), values...)
	sort.Strings(out)

	unique := out[:1]
	for _, v := range out[1:] {
		if v != unique[len(unique)-1] {
			unique = append(unique, v)
		}
	}

	return unique
}
