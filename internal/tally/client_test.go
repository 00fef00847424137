package tally_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/web3profile/internal/tally"
)

func TestVotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("Api-Key"))

		var body struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body.Query, "votes(input: $input)")
		input := body.Variables["input"].(map[string]any)
		assert.Equal(t, "0xabc", input["filters"].(map[string]any)["voter"])

		_, _ = w.Write([]byte(`{"data":{"votes":{"nodes":[
			{"type":"FOR","amount":"1500","proposal":{"id":"42","metadata":{"title":"Fee switch"},"organization":{"name":"Uniswap"}},"block":{"timestamp":"2024-05-01T10:00:00Z"}}
		]}}}`))
	}))
	defer srv.Close()

	c := tally.New(tally.WithBaseURL(srv.URL), tally.WithAPIKey("k"))
	require.True(t, c.Enabled())

	votes, err := c.Votes(context.Background(), "0xabc", 5)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, "for", votes[0].Support)
	assert.Equal(t, "Fee switch", votes[0].ProposalTitle)
	assert.Equal(t, "Uniswap", votes[0].Organization)
	assert.Equal(t, 2024, votes[0].CastAt.Year())
}

func TestVotes_GraphQLErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"rate limited"}]}`))
	}))
	defer srv.Close()

	c := tally.New(tally.WithBaseURL(srv.URL), tally.WithAPIKey("k"))
	_, err := c.Votes(context.Background(), "0xabc", 5)
	assert.ErrorContains(t, err, "rate limited")
}

func TestVotes_DisabledWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected without an api key")
	}))
	defer srv.Close()

	c := tally.New(tally.WithBaseURL(srv.URL))
	votes, err := c.Votes(context.Background(), "0xabc", 5)
	require.NoError(t, err)
	assert.Empty(t, votes)
}
