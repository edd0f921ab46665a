package ghclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/spiffcs/issuebot/internal/constants"
)

// Options configures a Client.
type Options struct {
	// Endpoint is the GraphQL endpoint. Defaults to api.github.com.
	Endpoint string
	// RESTEndpoint is the REST API base URL for GitHub Enterprise. Empty
	// means api.github.com.
	RESTEndpoint string
	Token        string
	// SSLVerify disables certificate verification when false.
	SSLVerify bool
	// CAFile is an optional PEM bundle trusted in addition to the system pool.
	CAFile    string
	Owner     string
	Repo      string
	BatchSize int
}

// Client talks to one repository through the GitHub GraphQL API, with a
// go-github REST client for the few operations GraphQL does not cover.
type Client struct {
	executor  Executor
	rest      *gh.Client
	owner     string
	repo      string
	batchSize int
}

// NewClient creates a client authenticated with a static token.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("GitHub token not provided. Set api_key in the config or the GITHUB_TOKEN environment variable")
	}
	if opts.Endpoint == "" {
		opts.Endpoint = constants.DefaultGraphQLEndpoint
	}

	base, err := newBaseHTTPClient(opts.SSLVerify, opts.CAFile)
	if err != nil {
		return nil, err
	}

	// oauth2 layers the bearer token on top of the TLS-configured transport.
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: opts.Token},
	)
	tc := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, base), ts)
	tc.Timeout = constants.RequestTimeout

	rest := gh.NewClient(tc)
	if opts.RESTEndpoint != "" {
		rest, err = rest.WithEnterpriseURLs(opts.RESTEndpoint, opts.RESTEndpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid rest_endpoint: %w", err)
		}
	}

	c := NewWithExecutor(NewHTTPExecutor(tc, opts.Endpoint), opts.Owner, opts.Repo, opts.BatchSize)
	c.rest = rest
	return c, nil
}

// NewWithExecutor creates a client that sends GraphQL requests through exec.
// REST operations are unavailable on such a client.
func NewWithExecutor(exec Executor, owner, repo string, batchSize int) *Client {
	if batchSize <= 0 {
		batchSize = constants.DefaultBatchSize
	}
	if batchSize > constants.MaxBatchSize {
		batchSize = constants.MaxBatchSize
	}
	return &Client{
		executor:  exec,
		owner:     owner,
		repo:      repo,
		batchSize: batchSize,
	}
}

// Repository returns the owner/name the client operates on.
func (c *Client) Repository() string {
	return c.owner + "/" + c.repo
}

func newBaseHTTPClient(sslVerify bool, caFile string) (*http.Client, error) {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
		InsecureSkipVerify: !sslVerify, //nolint:gosec
	}

	if caFile != "" {
		pem, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read ssl_ca_file: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", caFile)
		}
		tlsConfig.RootCAs = pool
	}

	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			TLSClientConfig:     tlsConfig,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     30 * time.Second,
		},
		Timeout: constants.RequestTimeout,
	}, nil
}

