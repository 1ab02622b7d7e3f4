package domain_test

import (
	"errors"
	"testing"

	"github.com/patientmesh/mesh/services/api-gateway/internal/domain"
)

func TestRouteTableLongestPrefixWins(t *testing.T) {
	t.Parallel()

	table, err := domain.NewRouteTable([]domain.Route{
		{Prefix: "/api", Upstream: "legacy", StripPrefix: "/api", AuthRequired: true},
		{Prefix: "/api/patients", Upstream: "patient", StripPrefix: "/api", AuthRequired: true},
		{Prefix: "/auth", Upstream: "auth", StripPrefix: "/auth"},
	})
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	cases := []struct {
		path     string
		upstream string
		found    bool
	}{
		{path: "/api/patients", upstream: "patient", found: true},
		{path: "/api/patients/123", upstream: "patient", found: true},
		{path: "/api/patientsx", upstream: "legacy", found: true},
		{path: "/api/other", upstream: "legacy", found: true},
		{path: "/auth/login", upstream: "auth", found: true},
		{path: "/authx", found: false},
		{path: "/", found: false},
	}
	for _, tc := range cases {
		route, ok := table.Match(tc.path)
		if ok != tc.found || (ok && route.Upstream != tc.upstream) {
			t.Fatalf("%s: expected (%s,%v), got (%s,%v)", tc.path, tc.upstream, tc.found, route.Upstream, ok)
		}
	}
}

func TestUpstreamPath(t *testing.T) {
	t.Parallel()

	patients := domain.Route{Prefix: "/api/patients", StripPrefix: "/api"}
	if got := patients.UpstreamPath("/api/patients/42"); got != "/patients/42" {
		t.Fatalf("unexpected path %q", got)
	}
	docs := domain.Route{Prefix: "/api-docs/patients", StripPrefix: "/api-docs/patients", TargetPrefix: "/docs"}
	if got := docs.UpstreamPath("/api-docs/patients"); got != "/docs" {
		t.Fatalf("unexpected docs path %q", got)
	}
	login := domain.Route{Prefix: "/auth/login", StripPrefix: "/auth"}
	if got := login.UpstreamPath("/auth/login"); got != "/login" {
		t.Fatalf("unexpected login path %q", got)
	}
}

func TestRouteTableRejectsBadRoutes(t *testing.T) {
	t.Parallel()

	bad := [][]domain.Route{
		{{Prefix: "api", Upstream: "x"}},
		{{Prefix: "/api", Upstream: ""}},
		{{Prefix: "/api", Upstream: "x", StripPrefix: "/other"}},
		{{Prefix: "/api", Upstream: "x"}, {Prefix: "/api", Upstream: "y"}},
	}
	for _, routes := range bad {
		if _, err := domain.NewRouteTable(routes); !errors.Is(err, domain.ErrInvalidRoute) {
			t.Fatalf("%+v: expected invalid route, got %v", routes, err)
		}
	}
}
