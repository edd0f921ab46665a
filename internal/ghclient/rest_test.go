package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRESTClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Options{
		Endpoint:     srv.URL + "/api/graphql",
		RESTEndpoint: srv.URL + "/api/v3/",
		Token:        "t",
		SSLVerify:    true,
		Owner:        "octo",
		Repo:         "repo",
	})
	require.NoError(t, err)
	return c
}

func TestAuthenticatedUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"login":"issuebot"}`)
	})

	login, err := newRESTClient(t, mux).AuthenticatedUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "issuebot", login)
}

func TestLabelsPaginatesAndSorts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/octo/repo/labels", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"name":"bug","node_id":"LA_bug","color":"d73a4a"}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<http://%s/api/v3/repos/octo/repo/labels?page=2>; rel="next"`, r.Host))
		fmt.Fprint(w, `[{"name":"inactive","node_id":"LA_inactive","color":"ededed","description":"No activity"}]`)
	})

	labels, err := newRESTClient(t, mux).Labels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []RepoLabel{
		{Name: "bug", NodeID: "LA_bug", Color: "d73a4a"},
		{Name: "inactive", NodeID: "LA_inactive", Color: "ededed", Description: "No activity"},
	}, labels)
}

func TestRateLimits(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/rate_limit", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"resources":{"graphql":{"limit":5000,"remaining":4990,"reset":1700000000}}}`)
	})

	limits, err := newRESTClient(t, mux).RateLimits(context.Background())
	require.NoError(t, err)
	require.NotNil(t, limits.GraphQL)
	assert.Equal(t, 4990, limits.GraphQL.Remaining)
}

func TestRESTHelpersRequireRESTClient(t *testing.T) {
	c := NewWithExecutor(&fakeExecutor{}, "octo", "repo", 10)
	ctx := context.Background()

	_, err := c.AuthenticatedUser(ctx)
	assert.ErrorIs(t, err, errNoREST)
	_, err = c.Labels(ctx)
	assert.ErrorIs(t, err, errNoREST)
	_, err = c.RateLimits(ctx)
	assert.ErrorIs(t, err, errNoREST)
}
