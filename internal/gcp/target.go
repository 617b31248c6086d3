package gcp

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Kind tags the resource type a target collects.
type Kind string

const (
	KindProject           Kind = "project"
	KindNetwork           Kind = "network"
	KindSubnet            Kind = "subnet"
	KindInstance          Kind = "instance"
	KindForwardingRule    Kind = "forwarding_rule"
	KindRouter            Kind = "router"
	KindRouterStatus      Kind = "router_status"
	KindFirewallRule      Kind = "firewall_rule"
	KindCertificate       Kind = "certificate"
	KindTargetProxy       Kind = "target_proxy"
	KindCluster           Kind = "cluster"
	KindDatabase          Kind = "database"
	KindSecurityPolicy    Kind = "security_policy"
	KindPrivateConnection Kind = "private_connection"
	KindXpnHost           Kind = "xpn_host"
	KindXpnResources      Kind = "xpn_resources"
	KindIAMPolicy         Kind = "iam_policy"
)

// ErrInvalidTarget indicates a target without an API or path.
var ErrInvalidTarget = errors.New("invalid fetch target")

// Shape is the response envelope of a collection endpoint.
type Shape int

const (
	// ShapeAuto derives the envelope from the target path.
	ShapeAuto Shape = iota
	// ShapeAggregated is a map of scope name to an object holding the list.
	ShapeAggregated
	// ShapeList is a flat list under a single field.
	ShapeList
	// ShapeSingleton wraps the whole response body as one item.
	ShapeSingleton
)

func (s Shape) String() string {
	switch s {
	case ShapeAggregated:
		return "aggregated"
	case ShapeList:
		return "list"
	case ShapeSingleton:
		return "singleton"
	default:
		return "auto"
	}
}

// Target names one logical collection endpoint. Targets are comparable and
// used as map keys by the fan-out executor.
type Target struct {
	Kind Kind
	// API is the service host prefix, e.g. "compute" for compute.googleapis.com.
	API string
	// Path is relative to the API host, e.g. "compute/v1/projects/p/global/networks".
	Path string
	// Query holds extra encoded query parameters, without pageToken.
	Query string
	// Shape and Field override envelope resolution when set.
	Shape Shape
	Field string
}

// Envelope describes where the items of a response live.
type Envelope struct {
	Shape Shape
	// Field is the top level field holding the list or scope map.
	Field string
	// Inner is the per-scope list field for aggregated responses.
	Inner string
}

func (t Target) String() string {
	s := t.API + ":" + t.Path
	if t.Query != "" {
		s += "?" + t.Query
	}

	return s
}

// Validate reports whether the target can be fetched.
func (t Target) Validate() error {
	if strings.TrimSpace(t.API) == "" || strings.TrimSpace(t.Path) == "" {
		return fmt.Errorf("%w: %q", ErrInvalidTarget, t.String())
	}

	if _, err := url.ParseQuery(t.Query); err != nil {
		return fmt.Errorf("%w: bad query %q: %v", ErrInvalidTarget, t.Query, err)
	}

	return nil
}

// ResolveEnvelope derives the response envelope from the target shape:
// aggregated paths nest per-scope lists named after the trailing segment,
// get* verbs return a single object, compute lists use "items" except the
// shared VPC resource family which uses "resources", and every other API
// names the list after the trailing path segment.
func (t Target) ResolveEnvelope() Envelope {
	segments := splitPath(strings.Trim(t.Path, "/"))
	trailing := ""
	if len(segments) > 0 {
		trailing = segments[len(segments)-1]
	}

	if t.Shape != ShapeAuto {
		env := Envelope{Shape: t.Shape, Field: t.Field}
		switch t.Shape {
		case ShapeAggregated:
			if env.Field == "" {
				env.Field = "items"
			}
			env.Inner = trailing
		case ShapeList:
			if env.Field == "" {
				env.Field = trailing
			}
		}

		return env
	}

	for _, segment := range segments {
		if segment == "aggregated" {
			return Envelope{Shape: ShapeAggregated, Field: "items", Inner: trailing}
		}
	}

	if strings.HasPrefix(trailing, "get") && trailing != "getXpnResources" {
		return Envelope{Shape: ShapeSingleton}
	}

	switch t.API {
	case "compute":
		if trailing == "getXpnResources" {
			return Envelope{Shape: ShapeList, Field: "resources"}
		}

		return Envelope{Shape: ShapeList, Field: "items"}
	case "sqladmin":
		return Envelope{Shape: ShapeList, Field: "items"}
	default:
		return Envelope{Shape: ShapeList, Field: trailing}
	}
}
