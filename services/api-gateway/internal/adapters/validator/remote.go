package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patientmesh/mesh/platform/tokens"
	"github.com/patientmesh/mesh/services/api-gateway/internal/domain"
)

// Remote asks the auth service's /validate endpoint. Claims of an accepted
// token are read without re-verifying the signature.
type Remote struct {
	baseURL    string
	httpClient *http.Client
}

func NewRemote(baseURL string, timeout time.Duration, httpClient *http.Client) *Remote {
	if httpClient == nil {
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Remote{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (r *Remote) Validate(ctx context.Context, raw string) (tokens.Claims, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/validate", nil)
	if err != nil {
		return tokens.Claims{}, fmt.Errorf("%w: build request: %v", domain.ErrValidatorUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+raw)
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return tokens.Claims{}, fmt.Errorf("%w: %v", domain.ErrValidatorUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if err != nil {
		return tokens.Claims{}, fmt.Errorf("%w: read response: %v", domain.ErrValidatorUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return tokens.Claims{}, fmt.Errorf("%w: rejected by auth service", domain.ErrInvalidToken)
	case resp.StatusCode != http.StatusOK:
		return tokens.Claims{}, fmt.Errorf("%w: auth service returned %d", domain.ErrValidatorUnavailable, resp.StatusCode)
	}
	var valid bool
	if err := json.Unmarshal(body, &valid); err != nil {
		return tokens.Claims{}, fmt.Errorf("%w: decode response: %v", domain.ErrValidatorUnavailable, err)
	}
	if !valid {
		return tokens.Claims{}, domain.ErrInvalidToken
	}
	claims, err := tokens.PeekClaims(raw)
	if err != nil {
		return tokens.Claims{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	return claims, nil
}
