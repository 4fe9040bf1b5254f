package conf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUfsConf_MergeOverride(t *testing.T) {
	global := map[string]string{
		"s3.region":    "us-west-2",
		"fs.block.len": "64m",
	}
	base := New(global, false)

	merged := base.CreateMountSpecificConf(map[string]string{
		"s3.region":   "us-east-1",
		"s3.endpoint": "http://127.0.0.1:9000",
	})

	v, ok := merged.Get("s3.region")
	require.True(t, ok)
	require.Equal(t, "us-east-1", v)

	v, ok = merged.Get("fs.block.len")
	require.True(t, ok)
	require.Equal(t, "64m", v)

	require.Equal(t, "http://127.0.0.1:9000", merged.MustGet("s3.endpoint"))

	// the base conf must not observe the overrides
	v, _ = base.Get("s3.region")
	require.Equal(t, "us-west-2", v)
	_, ok = base.Get("s3.endpoint")
	require.False(t, ok)
}

func TestUfsConf_CopiesInput(t *testing.T) {
	global := map[string]string{"a": "1"}
	c := New(global, true)
	global["a"] = "2"

	require.Equal(t, "1", c.GetDefault("a", ""))
	require.True(t, c.IsReadOnly())

	snapshot := c.Entries()
	snapshot["a"] = "3"
	require.Equal(t, "1", c.GetDefault("a", ""))
}

func TestUfsConf_MustGetPanics(t *testing.T) {
	c := New(nil, false)
	require.Panics(t, func() { c.MustGet("missing") })
	require.Equal(t, "fallback", c.GetDefault("missing", "fallback"))
}
