package efp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/web3profile/internal/efp"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/users/brantly.eth/stats", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"followers_count":"1200","following_count":345}`))
	})
	mux.HandleFunc("/users/brantly.eth/followers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("limit"), "limit is capped")
		assert.Equal(t, "0", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`{"followers":[
			{"address":"0x1","tags":["top8"],"is_blocked":false,"is_muted":false,"updated_at":"2024-06-01T00:00:00Z"},
			{"address":"0x2","tags":[],"is_blocked":true,"is_muted":false,"updated_at":"2024-06-01T00:00:00Z"}
		]}`))
	})
	mux.HandleFunc("/users/brantly.eth/following", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "20", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`{"following":[
			{"version":1,"record_type":"address","data":"0x3","tags":["close-friend"]},
			{"version":1,"record_type":"list","data":"0x4","tags":[]}
		]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestStats_AcceptsStringCounts(t *testing.T) {
	c := efp.New(efp.WithBaseURL(newServer(t).URL))

	stats, err := c.Stats(context.Background(), "brantly.eth")
	require.NoError(t, err)
	assert.Equal(t, 1200, stats.Followers)
	assert.Equal(t, 345, stats.Following)
}

func TestStats_UnknownUser(t *testing.T) {
	c := efp.New(efp.WithBaseURL(newServer(t).URL))

	stats, err := c.Stats(context.Background(), "nobody.eth")
	require.NoError(t, err)
	assert.Zero(t, stats.Followers)
}

func TestFollowers_SkipsBlocked(t *testing.T) {
	c := efp.New(efp.WithBaseURL(newServer(t).URL))

	followers, err := c.Followers(context.Background(), "brantly.eth", 500, -3)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "0x1", followers[0].Address)
	assert.Equal(t, []string{"top8"}, followers[0].Tags)
}

func TestFollowing_OnlyAddressRecords(t *testing.T) {
	c := efp.New(efp.WithBaseURL(newServer(t).URL))

	following, err := c.Following(context.Background(), "brantly.eth", 10, 20)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "0x3", following[0].Address)
}
