package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/patientmesh/mesh/services/api-gateway/internal/application"
	"github.com/patientmesh/mesh/services/api-gateway/internal/domain"
)

const (
	headerUserID    = "X-User-Id"
	headerUserEmail = "X-User-Email"
	headerUserRole  = "X-User-Role"
)

type ProxyOptions struct {
	// Upstreams maps route upstream names to base URLs.
	Upstreams map[string]string
	// KeepAuthorization forwards the raw bearer token on protected routes.
	KeepAuthorization bool
}

type Proxy struct {
	gate     *application.Gate
	opts     ProxyOptions
	backends map[string]*httputil.ReverseProxy
}

func NewProxy(gate *application.Gate, routes *domain.RouteTable, opts ProxyOptions) (*Proxy, error) {
	p := &Proxy{
		gate:     gate,
		opts:     opts,
		backends: make(map[string]*httputil.ReverseProxy),
	}
	for _, route := range routes.Routes() {
		if _, ok := p.backends[route.Upstream]; ok {
			continue
		}
		raw, ok := opts.Upstreams[route.Upstream]
		if !ok {
			return nil, fmt.Errorf("%w: upstream %q for prefix %q is not configured", domain.ErrInvalidRoute, route.Upstream, route.Prefix)
		}
		target, err := url.Parse(raw)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("%w: upstream %q has invalid url %q", domain.ErrInvalidRoute, route.Upstream, raw)
		}
		p.backends[route.Upstream] = p.newBackend(target)
	}
	return p, nil
}

func (p *Proxy) newBackend(target *url.URL) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			decision, _ := pr.In.Context().Value(ctxKeyDecision).(domain.Decision)
			pr.SetURL(target)
			pr.Out.URL.Path = strings.TrimSuffix(target.Path, "/") + decision.Route.UpstreamPath(pr.In.URL.Path)
			pr.Out.URL.RawPath = ""
			pr.SetXForwarded()

			// Client supplied identity headers are never trusted.
			pr.Out.Header.Del(headerUserID)
			pr.Out.Header.Del(headerUserEmail)
			pr.Out.Header.Del(headerUserRole)
			if decision.Identity != nil {
				pr.Out.Header.Set(headerUserID, decision.Identity.UserID)
				if decision.Identity.Email != "" {
					pr.Out.Header.Set(headerUserEmail, decision.Identity.Email)
				}
				if decision.Identity.Role != "" {
					pr.Out.Header.Set(headerUserRole, decision.Identity.Role)
				}
				if !p.opts.KeepAuthorization {
					pr.Out.Header.Del("Authorization")
				}
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			httpLogger().ErrorContext(r.Context(), "upstream request failed",
				"operation", "proxy",
				"outcome", "failure",
				"upstream", target.Host,
				"path", r.URL.Path,
				"request_id", requestIDFromContext(r.Context()),
				"error", err.Error(),
			)
			reject(w, r, http.StatusBadGateway, "BAD_GATEWAY", "upstream unavailable")
		},
	}
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	decision := p.gate.Authorize(r.Context(), r.URL.Path, r.Header.Get("Authorization"))
	if !decision.Forward {
		status, code, message := rejectionResponse(decision.Reason)
		reject(w, r, status, code, message)
		return
	}
	backend := p.backends[decision.Route.Upstream]
	ctx := context.WithValue(r.Context(), ctxKeyDecision, decision)
	backend.ServeHTTP(w, r.WithContext(ctx))
}

func rejectionResponse(reason domain.Reason) (int, string, string) {
	switch reason {
	case domain.ReasonNoRoute:
		return http.StatusNotFound, "NOT_FOUND", "no route for path"
	case domain.ReasonUnauthenticated:
		return http.StatusUnauthorized, "UNAUTHORIZED", "missing or malformed bearer token"
	case domain.ReasonInvalidToken:
		return http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token"
	case domain.ReasonValidatorUnavailable:
		return http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "token validation unavailable"
	default:
		return http.StatusForbidden, "FORBIDDEN", "request rejected"
	}
}

// NewRouter serves the gateway's own probes and hands everything else to the
// proxy.
func NewRouter(proxy *Proxy) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", probe("ok"))
	r.Get("/readyz", probe("ready"))
	r.Handle("/*", proxy)
	return r
}
