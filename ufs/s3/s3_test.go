package s3

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stratofs/stratofs/conf"
	"github.com/stratofs/stratofs/ufs"
)

func TestNew(t *testing.T) {
	uri, err := ufs.ParseURI("s3://bucket/data/warm")
	require.NoError(t, err)

	c := conf.New(map[string]string{KeyRegion: "us-west-2"}, false).
		CreateMountSpecificConf(map[string]string{KeyRegion: "us-east-1"})

	fs, err := New(uri, c)
	require.NoError(t, err)

	s := fs.(*s3Ufs)
	require.Equal(t, "bucket", s.bucket)
	require.Equal(t, "data/warm", s.prefix)
	require.Equal(t, "us-east-1", s.Region())

	_, err = New(mustParse(t, "s3:///nobucket"), nil)
	require.Error(t, err)
}

func mustParse(t *testing.T, raw string) *ufs.URI {
	u, err := ufs.ParseURI(raw)
	require.NoError(t, err)
	return u
}

func TestKeyMapping(t *testing.T) {
	fs, err := New(mustParse(t, "s3://bucket/data"), nil)
	require.NoError(t, err)
	s := fs.(*s3Ufs)

	require.Equal(t, "data/a/b.txt", s.key("a/b.txt"))
	require.Equal(t, "data/a/b.txt", s.key("/a/../a/b.txt"))
	require.Equal(t, "data", s.key(""))

	fs, err = New(mustParse(t, "s3://bucket"), nil)
	require.NoError(t, err)
	s = fs.(*s3Ufs)
	require.Equal(t, "a/b.txt", s.key("a/b.txt"))
	require.Equal(t, "", s.key("/"))
}

func TestOperationsRequireConnect(t *testing.T) {
	fs, err := New(mustParse(t, "s3://bucket/data"), nil)
	require.NoError(t, err)

	_, err = fs.Open(context.Background(), "a.txt")
	require.Error(t, err)
}
