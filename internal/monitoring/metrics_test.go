package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByPattern(t *testing.T) {
	m := New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/{userId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := m.Middleware(mux)(mux)

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/"+id, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET /user/{userId}", "418")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.ActiveConnections))
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.PostCreated()
	m.LikeToggled(true)
	m.LikeToggled(true)
	m.LikeToggled(false)
	m.FollowToggledTo(false)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.PostsCreated))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.LikesToggled.WithLabelValues("like")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LikesToggled.WithLabelValues("unlike")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FollowToggled.WithLabelValues("unfollow")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.PostCreated()
		nilMetrics.LikeToggled(true)
		nilMetrics.FollowToggledTo(true)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.PostCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "pixaro_posts_created_total 1"))
}
