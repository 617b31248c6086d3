// Package inventory turns raw API items into typed, keyed entities that can
// be joined in memory.
package inventory

import (
	"time"

	"github.com/kedare/netscope/internal/gcp"
)

// KindNetworkInterface tags the NIC sub-entities owned by an Instance.
const KindNetworkInterface gcp.Kind = "network_interface"

// KindNATGateway tags the NAT sub-entities owned by a Router.
const KindNATGateway gcp.Kind = "nat_gateway"

// Resource carries the fields shared by every entity kind. The network
// fields are empty for kinds that do not attach to a VPC network.
type Resource struct {
	Kind        gcp.Kind
	Name        string
	Description string
	// CreatedAt is the zero time when the provider omitted it.
	CreatedAt time.Time
	Scope     gcp.Scope
	Region    string
	Zone      string
	ProjectID string
	// Locator is the provider identifier relative to the API host.
	Locator string
	// Key is derived from Locator and never supplied by the provider.
	Key string

	NetworkKey       string
	NetworkName      string
	NetworkProjectID string
	SubnetKey        string
	SubnetName       string
}

// Base returns the shared fields of the entity.
func (r Resource) Base() Resource {
	return r
}

// Entity is implemented by every concrete kind through its embedded Resource.
type Entity interface {
	Base() Resource
}

// Dedupe keeps the first entity of every key, preserving input order. The
// same resource is often observed through both a targeted and an aggregated
// listing.
func Dedupe[T Entity](entities []T) []T {
	seen := make(map[string]struct{}, len(entities))
	out := make([]T, 0, len(entities))

	for _, entity := range entities {
		key := entity.Base().Key
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, entity)
	}

	return out
}

// Select returns the entities for which keep returns true.
func Select[T Entity](entities []T, keep func(Resource) bool) []T {
	out := make([]T, 0, len(entities))
	for _, entity := range entities {
		if keep(entity.Base()) {
			out = append(out, entity)
		}
	}

	return out
}

// Index maps every entity by key.
func Index[T Entity](entities []T) map[string]T {
	index := make(map[string]T, len(entities))
	for _, entity := range entities {
		index[entity.Base().Key] = entity
	}

	return index
}
