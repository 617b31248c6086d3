package gcp

import (
	"errors"
	"strings"
)

// Scope describes where a resource lives, which determines the shape of its key.
type Scope string

const (
	ScopeGlobal   Scope = "GLOBAL"
	ScopeRegional Scope = "REGIONAL"
	ScopeZonal    Scope = "ZONAL"
)

// UnknownProject is reported for locators without a recognizable project segment.
const UnknownProject = "unknown"

// ErrMalformedLocator indicates a locator that cannot produce a composite key.
var ErrMalformedLocator = errors.New("malformed resource locator")

// Locator is the decomposed form of a provider resource identifier.
type Locator struct {
	// Path is the host-relative identifier starting at "projects/".
	Path       string
	Scope      Scope
	Project    string
	Region     string
	Zone       string
	Collection string
	Name       string
}

// ParseLocator decomposes a fully qualified or host-relative resource URL.
// Classification only looks at the locator structure: a /zones/ segment makes
// the resource zonal, /regions/ regional, and anything else global. GKE style
// /locations/ segments are zonal when the location is a zone name.
func ParseLocator(raw string) (Locator, error) {
	path := stripHost(raw)
	segments := splitPath(path)

	start := -1
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] == "projects" && segments[i+1] != "" {
			start = i

			break
		}
	}

	if start < 0 {
		return Locator{Path: path, Scope: ScopeGlobal, Project: UnknownProject}, ErrMalformedLocator
	}

	loc := Locator{
		Path:    strings.Join(segments[start:], "/"),
		Scope:   ScopeGlobal,
		Project: segments[start+1],
	}

	rest := segments[start+2:]
	if len(rest) >= 2 {
		switch rest[0] {
		case "zones":
			loc.Scope = ScopeZonal
			loc.Zone = rest[1]
			loc.Region = RegionFromZone(rest[1])
			rest = rest[2:]
		case "regions":
			loc.Scope = ScopeRegional
			loc.Region = rest[1]
			rest = rest[2:]
		case "locations":
			if IsZoneName(rest[1]) {
				loc.Scope = ScopeZonal
				loc.Zone = rest[1]
				loc.Region = RegionFromZone(rest[1])
			} else {
				loc.Scope = ScopeRegional
				loc.Region = rest[1]
			}
			rest = rest[2:]
		case "global":
			rest = rest[1:]
		}
	}

	if len(rest) < 2 {
		return loc, ErrMalformedLocator
	}

	loc.Collection = rest[0]
	loc.Name = rest[len(rest)-1]

	return loc, nil
}

// Key returns the composite key of the located resource, or "" when the
// locator could not be classified.
func (l Locator) Key() string {
	if l.Project == "" || l.Project == UnknownProject || l.Name == "" {
		return ""
	}

	return ComposeKey(l.Scope, l.Project, l.Region, l.Zone, l.Name)
}

// Location returns the zone for zonal resources, the region for regional ones
// and "global" otherwise.
func (l Locator) Location() string {
	switch l.Scope {
	case ScopeZonal:
		return l.Zone
	case ScopeRegional:
		return l.Region
	default:
		return "global"
	}
}

// ComposeKey builds the composite key used by every join:
//   - ZONAL:    {project}/{zone}/{name}
//   - REGIONAL: {project}/{region}/{name}
//   - GLOBAL:   {project}/{name}
func ComposeKey(scope Scope, project, region, zone, name string) string {
	switch scope {
	case ScopeZonal:
		return project + "/" + zone + "/" + name
	case ScopeRegional:
		return project + "/" + region + "/" + name
	default:
		return project + "/" + name
	}
}

// RegionFromZone drops the trailing "-<letter>" of a zone name
// (e.g. "us-central1-a" -> "us-central1"). Other values are returned unchanged.
func RegionFromZone(zone string) string {
	if IsZoneName(zone) {
		return zone[:len(zone)-2]
	}

	return zone
}

// IsZoneName reports whether the location ends with a single letter zone suffix.
func IsZoneName(location string) bool {
	n := len(location)
	if n < 3 || location[n-2] != '-' {
		return false
	}

	c := location[n-1]

	return c >= 'a' && c <= 'z'
}

// ResourceName returns the last path component of a resource URL.
func ResourceName(ref string) string {
	ref = strings.TrimRight(strings.TrimSpace(ref), "/")
	if ref == "" {
		return ""
	}

	parts := strings.Split(ref, "/")

	return parts[len(parts)-1]
}

// stripHost removes the scheme, host and any query string from a locator.
func stripHost(raw string) string {
	raw = strings.TrimSpace(raw)
	if idx := strings.Index(raw, "://"); idx >= 0 {
		raw = raw[idx+3:]
		if slash := strings.IndexByte(raw, '/'); slash >= 0 {
			raw = raw[slash+1:]
		} else {
			raw = ""
		}
	}

	if idx := strings.IndexByte(raw, '?'); idx >= 0 {
		raw = raw[:idx]
	}

	return strings.Trim(raw, "/")
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}

	return strings.Split(path, "/")
}
