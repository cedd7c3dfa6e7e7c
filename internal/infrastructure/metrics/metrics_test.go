package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSetFeedMode(t *testing.T) {
	SetFeedMode("poll")
	assert.Equal(t, 1.0, testutil.ToFloat64(FeedMode.WithLabelValues("poll")))
	assert.Equal(t, 0.0, testutil.ToFloat64(FeedMode.WithLabelValues("push")))

	SetFeedMode("push")
	assert.Equal(t, 0.0, testutil.ToFloat64(FeedMode.WithLabelValues("poll")))
	assert.Equal(t, 1.0, testutil.ToFloat64(FeedMode.WithLabelValues("push")))
}
