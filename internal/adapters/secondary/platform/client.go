package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"automl-orchestrator/internal/config"
	"automl-orchestrator/internal/core/domain"
	output "automl-orchestrator/internal/core/ports/output"
)

var ErrMissingCredentials = errors.New("platform credentials missing: set PLATFORM_TOKEN or a client id/secret")

// APIError is a non-2xx answer from the platform.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("platform api %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("platform api %d: %s", e.StatusCode, e.Message)
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client is the REST adapter for one workspace on the managed ML platform.
type Client struct {
	baseURL string
	http    *http.Client
	ref     domain.WorkspaceRef
}

// NewClient builds an authenticated client scoped to ref.
func NewClient(ctx context.Context, cfg *config.PlatformConfig, ref domain.WorkspaceRef) (*Client, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	// Token requests use the same timeout as API calls.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})

	var ts oauth2.TokenSource
	switch {
	case cfg.UsesClientCredentials():
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.ResolvedTokenURL(),
			Scopes:       cfg.Scopes,
		}
		ts = cc.TokenSource(ctx)
	case cfg.Token != "":
		ts = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
	default:
		return nil, ErrMissingCredentials
	}

	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = timeout

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = "v1"
	}

	base := fmt.Sprintf("%s/api/%s/subscriptions/%s/resourceGroups/%s/workspaces/%s",
		cfg.Endpoint, apiVersion,
		url.PathEscape(ref.SubscriptionID),
		url.PathEscape(ref.ResourceGroup),
		url.PathEscape(ref.Name),
	)

	return &Client{
		baseURL: base,
		http:    httpClient,
		ref:     ref,
	}, nil
}

// do sends a JSON request and decodes the answer into out. out may be nil,
// or a *[]byte to receive the raw body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("create platform request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	log.WithFields(log.Fields{
		"method": method,
		"path":   path,
	}).Debug("platform request")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("platform request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	switch o := out.(type) {
	case nil:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case *[]byte:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read platform response: %w", err)
		}
		*o = data
		return nil
	default:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode platform response: %w", err)
		}
		return nil
	}
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(data))}

	var env errorEnvelope
	if json.Unmarshal(data, &env) == nil && env.Error.Message != "" {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func escape(s string) string {
	return url.PathEscape(s)
}

// Ensure interface compliance
var (
	_ output.WorkspaceClient = (*Client)(nil)
	_ output.ComputeClient   = (*Client)(nil)
	_ output.DatasetClient   = (*Client)(nil)
	_ output.RunClient       = (*Client)(nil)
	_ output.ModelClient     = (*Client)(nil)
	_ output.ServiceDeployer = (*Client)(nil)
)
