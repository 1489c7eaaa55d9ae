package logfields

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		attr slog.Attr
		key  string
		val  string
	}{
		{Project("00_intro"), KeyProject, "00_intro"},
		{Page("index"), KeyPage, "index"},
		{Path("/projects/00_intro"), KeyPath, "/projects/00_intro"},
		{File("diagram.png"), KeyFile, "diagram.png"},
		{Route("GET /"), KeyRoute, "GET /"},
		{Method("GET"), KeyMethod, "GET"},
		{UserAgent("ua"), KeyUserAgent, "ua"},
		{RemoteAddr("1.2.3.4"), KeyRemoteAddr, "1.2.3.4"},
		{RequestID("rid"), KeyRequestID, "rid"},
		{Error(errors.New("boom")), KeyError, "boom"},
		{Error(nil), KeyError, ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.key, c.attr.Key)
		assert.Equal(t, c.val, c.attr.Value.String())
	}
}

func TestNumericHelpers(t *testing.T) {
	assert.Equal(t, int64(404), Status(404).Value.Int64())
	assert.Equal(t, int64(3), Count(3).Value.Int64())
	assert.InDelta(t, 1.5, Duration(1500*time.Microsecond).Value.Float64(), 0.0001)
}
