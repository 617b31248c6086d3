package gcp

import (
	"net/url"
	"strings"
)

const computePrefix = "compute/v1/"

// TargetsFor returns the collection targets that list every resource of kind
// in project. When regions is non-empty, regional kinds are listed per region
// instead of through the aggregated endpoint.
func TargetsFor(kind Kind, project string, regions []string) []Target {
	project = strings.TrimSpace(project)
	if project == "" {
		return nil
	}

	switch kind {
	case KindNetwork:
		return []Target{computeTarget(kind, project, "global/networks")}
	case KindSubnet:
		return regionalOrAggregated(kind, project, "subnetworks", regions)
	case KindInstance:
		return []Target{computeTarget(kind, project, "aggregated/instances")}
	case KindForwardingRule:
		// The aggregated listing also reports global rules; callers dedupe by key.
		return append(regionalOrAggregated(kind, project, "forwardingRules", regions),
			computeTarget(kind, project, "global/forwardingRules"))
	case KindRouter:
		return regionalOrAggregated(kind, project, "routers", regions)
	case KindFirewallRule:
		return []Target{computeTarget(kind, project, "global/firewalls")}
	case KindCertificate:
		return append([]Target{computeTarget(kind, project, "global/sslCertificates")},
			regionalOrAggregated(kind, project, "sslCertificates", regions)...)
	case KindTargetProxy:
		return append([]Target{computeTarget(kind, project, "global/targetHttpsProxies")},
			regionalOrAggregated(kind, project, "targetHttpsProxies", regions)...)
	case KindSecurityPolicy:
		return []Target{computeTarget(kind, project, "global/securityPolicies")}
	case KindCluster:
		return []Target{{Kind: kind, API: "container", Path: "v1/projects/" + project + "/locations/-/clusters"}}
	case KindDatabase:
		return []Target{{Kind: kind, API: "sqladmin", Path: "v1/projects/" + project + "/instances"}}
	case KindXpnHost:
		return []Target{XpnHostTarget(project)}
	case KindXpnResources:
		return []Target{XpnResourcesTarget(project)}
	default:
		return nil
	}
}

// ProjectTarget fetches a single Resource Manager project by id.
func ProjectTarget(project string) Target {
	return Target{Kind: KindProject, API: "cloudresourcemanager", Path: "v1/projects/" + project, Shape: ShapeSingleton}
}

// ProjectsTarget lists every project visible to the caller, optionally
// narrowed by a Resource Manager filter expression.
func ProjectsTarget(filter string) Target {
	target := Target{Kind: KindProject, API: "cloudresourcemanager", Path: "v1/projects"}
	if filter = strings.TrimSpace(filter); filter != "" {
		target.Query = url.Values{"filter": {filter}}.Encode()
	}

	return target
}

// XpnHostTarget returns the shared VPC host of a service project.
func XpnHostTarget(project string) Target {
	return Target{Kind: KindXpnHost, API: "compute", Path: computePrefix + "projects/" + project + "/getXpnHost"}
}

// XpnResourcesTarget lists the service projects attached to a host project.
func XpnResourcesTarget(hostProject string) Target {
	return Target{Kind: KindXpnResources, API: "compute", Path: computePrefix + "projects/" + hostProject + "/getXpnResources"}
}

// IAMPolicyTarget fetches the IAM policy of the resource at locator.
func IAMPolicyTarget(locator string) Target {
	return Target{
		Kind:  KindIAMPolicy,
		API:   "compute",
		Path:  computePrefix + projectRelative(locator) + "/getIamPolicy",
		Query: url.Values{"optionsRequestedPolicyVersion": {"1"}}.Encode(),
	}
}

// RouterStatusTarget fetches the runtime status of a Cloud Router, which
// carries the NAT addresses allocated by each gateway.
func RouterStatusTarget(locator string) Target {
	return Target{Kind: KindRouterStatus, API: "compute", Path: computePrefix + projectRelative(locator) + "/getRouterStatus"}
}

// PrivateConnectionsTarget lists the private service connections of service
// established on the network at networkLocator.
func PrivateConnectionsTarget(service, networkLocator string) Target {
	return Target{
		Kind:  KindPrivateConnection,
		API:   "servicenetworking",
		Path:  "v1/services/" + service + "/connections",
		Query: url.Values{"network": {projectRelative(networkLocator)}}.Encode(),
	}
}

func computeTarget(kind Kind, project, collection string) Target {
	return Target{Kind: kind, API: "compute", Path: computePrefix + "projects/" + project + "/" + collection}
}

func regionalOrAggregated(kind Kind, project, collection string, regions []string) []Target {
	if len(regions) == 0 {
		return []Target{computeTarget(kind, project, "aggregated/"+collection)}
	}

	targets := make([]Target, 0, len(regions))
	for _, region := range regions {
		if region = strings.TrimSpace(region); region == "" {
			continue
		}

		targets = append(targets, computeTarget(kind, project, "regions/"+region+"/"+collection))
	}

	return targets
}

// projectRelative trims a locator down to its "projects/..." suffix.
func projectRelative(locator string) string {
	path := stripHost(locator)
	if strings.HasPrefix(path, "projects/") {
		return path
	}

	if idx := strings.Index(path, "/projects/"); idx >= 0 {
		return path[idx+1:]
	}

	return path
}
