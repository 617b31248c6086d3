package collector

import (
	"context"

	"github.com/kedare/netscope/internal/gcp"
	"github.com/kedare/netscope/internal/inventory"
	"github.com/kedare/netscope/internal/logger"
	"github.com/kedare/netscope/internal/report"
)

// auxiliary maps each second round trip target back to what it describes.
type auxiliary struct {
	targets  []gcp.Target
	subnets  map[gcp.Target]string
	routers  map[gcp.Target]string
	projects []string
	services []gcp.Target
}

func (a *auxiliary) add(target gcp.Target, index map[gcp.Target]string, key string) {
	a.targets = append(a.targets, target)
	if index != nil {
		index[target] = key
	}
}

// attach runs the auxiliary round trips of needs in one fan-out and records
// their data in the snapshot side maps. Entities are never modified in place.
func (c *Collector) attach(ctx context.Context, needs report.Needs, opts Options, host string,
	s *inventory.Snapshot, listing *gcp.FanOutResult,
) error {
	aux := &auxiliary{
		subnets: map[gcp.Target]string{},
		routers: map[gcp.Target]string{},
	}

	if needs.SubnetIAM {
		for _, subnet := range s.Subnets {
			if host != "" && subnet.ProjectID != host {
				continue
			}

			aux.add(gcp.IAMPolicyTarget(subnet.Locator), aux.subnets, subnet.Key)
		}
	}

	if needs.RouterStatus {
		for _, router := range s.Routers {
			if len(router.NATs) > 0 {
				aux.add(gcp.RouterStatusTarget(router.Locator), aux.routers, router.Key)
			}
		}
	}

	if needs.SharedVPC {
		services := inventory.XpnServiceProjects(listing.ItemsOfKind(gcp.KindXpnResources))
		s.ServiceProjects = map[string][]string{host: services}

		logger.Log.Debugf("Host project %s has %d service projects", host, len(services))

		for _, id := range services {
			if !hasProject(s.Projects, id) {
				aux.add(gcp.ProjectTarget(id), nil, "")
				aux.projects = append(aux.projects, id)
			}
		}
	}

	if needs.PrivateServices {
		numbers := projectNumbersByID(s.Projects)

		for _, network := range report.PeeredNetworks(s.Networks, opts.PrivateServices) {
			locator := network.Locator
			if number, ok := numbers[network.ProjectID]; ok {
				locator = "projects/" + number + "/global/networks/" + network.Name
			}

			for _, service := range report.PeeredServices(network, opts.PrivateServices) {
				target := gcp.PrivateConnectionsTarget(service, locator)
				aux.add(target, nil, "")
				aux.services = append(aux.services, target)
			}
		}
	}

	if len(aux.targets) == 0 {
		return nil
	}

	logger.Log.Debugf("Running %d auxiliary requests", len(aux.targets))

	res := c.executor.FetchAll(ctx, aux.targets)
	if err := ctx.Err(); err != nil {
		return err
	}
	warnIncomplete(res)

	if len(aux.subnets) > 0 {
		s.SubnetMembers = subnetMembers(res, aux.subnets)
	}

	if len(aux.routers) > 0 {
		s.RouterNATAddresses = routerAddresses(res, aux.routers)
	}

	normalizer := c.normalizer(s.Projects, s.TakenAt, opts.ExpiringSoon)

	for _, id := range aux.projects {
		found := inventory.NormalizeAll[inventory.Project](normalizer, gcp.KindProject, res.Items(gcp.ProjectTarget(id)))
		if len(found) == 1 {
			s.Projects = append(s.Projects, found[0])
		} else {
			logger.Log.Debugf("Service project %s not readable, skipping", id)
		}
	}

	if len(aux.projects) > 0 {
		s.Projects = inventory.Dedupe(s.Projects)
		// Service project numbers resolve the project numbers of connection locators.
		normalizer = c.normalizer(s.Projects, s.TakenAt, opts.ExpiringSoon)
	}

	var connections []inventory.PrivateConnection
	for _, target := range aux.services {
		connections = append(connections,
			inventory.NormalizeAll[inventory.PrivateConnection](normalizer, gcp.KindPrivateConnection, res.Items(target))...)
	}

	s.PrivateConnections = inventory.Dedupe(inventory.Select(connections, opts.Filter.Keep))

	return nil
}

func subnetMembers(res *gcp.FanOutResult, index map[gcp.Target]string) map[string][]string {
	members := make(map[string][]string, len(index))

	for target, key := range index {
		for _, raw := range res.Items(target) {
			granted, err := inventory.IAMMembers(raw, inventory.NetworkUserRole)
			if err != nil {
				logger.Log.Debugf("Ignoring IAM policy of %s: %v", key, err)

				continue
			}

			members[key] = append(members[key], granted...)
		}
	}

	return members
}

func routerAddresses(res *gcp.FanOutResult, index map[gcp.Target]string) map[string][]string {
	addresses := make(map[string][]string, len(index))

	for target, key := range index {
		for _, raw := range res.Items(target) {
			found, err := inventory.RouterNATAddresses(raw)
			if err != nil {
				logger.Log.Debugf("Ignoring status of router %s: %v", key, err)

				continue
			}

			if len(found) > 0 {
				addresses[key] = append(addresses[key], found...)
			}
		}
	}

	return addresses
}
