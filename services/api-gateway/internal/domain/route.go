package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Route maps a path prefix to an upstream. The forwarded path is TargetPrefix
// followed by the request path with StripPrefix removed.
type Route struct {
	Prefix       string
	Upstream     string
	StripPrefix  string
	TargetPrefix string
	AuthRequired bool
}

// Matches reports whether path falls under the prefix on a segment boundary,
// so /api/patients does not match /api/patientsfoo.
func (r Route) Matches(path string) bool {
	if r.Prefix == "/" {
		return true
	}
	if !strings.HasPrefix(path, r.Prefix) {
		return false
	}
	return len(path) == len(r.Prefix) || strings.HasSuffix(r.Prefix, "/") || path[len(r.Prefix)] == '/'
}

func (r Route) UpstreamPath(path string) string {
	rest := path
	if r.StripPrefix != "" && strings.HasPrefix(path, r.StripPrefix) {
		rest = path[len(r.StripPrefix):]
	}
	out := strings.TrimSuffix(r.TargetPrefix, "/") + rest
	if !strings.HasPrefix(out, "/") {
		out = "/" + out
	}
	return out
}

// RouteTable is immutable after construction and safe for concurrent reads.
type RouteTable struct {
	routes []Route
}

func NewRouteTable(routes []Route) (*RouteTable, error) {
	seen := make(map[string]struct{}, len(routes))
	sorted := make([]Route, 0, len(routes))
	for _, route := range routes {
		route.Prefix = strings.TrimSpace(route.Prefix)
		route.Upstream = strings.TrimSpace(route.Upstream)
		if !strings.HasPrefix(route.Prefix, "/") {
			return nil, fmt.Errorf("%w: prefix %q must start with /", ErrInvalidRoute, route.Prefix)
		}
		if route.Upstream == "" {
			return nil, fmt.Errorf("%w: prefix %q has no upstream", ErrInvalidRoute, route.Prefix)
		}
		if route.StripPrefix != "" && !strings.HasPrefix(route.Prefix, route.StripPrefix) {
			return nil, fmt.Errorf("%w: strip prefix %q is not a prefix of %q", ErrInvalidRoute, route.StripPrefix, route.Prefix)
		}
		if _, dup := seen[route.Prefix]; dup {
			return nil, fmt.Errorf("%w: duplicate prefix %q", ErrInvalidRoute, route.Prefix)
		}
		seen[route.Prefix] = struct{}{}
		sorted = append(sorted, route)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})
	return &RouteTable{routes: sorted}, nil
}

// Match returns the route with the longest matching prefix.
func (t *RouteTable) Match(path string) (Route, bool) {
	for _, route := range t.routes {
		if route.Matches(path) {
			return route, true
		}
	}
	return Route{}, false
}

func (t *RouteTable) Routes() []Route {
	return append([]Route(nil), t.routes...)
}
