// SPDX-License-Identifier: AGPL-3.0-or-later
package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
	fail    bool
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.fail {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = map[string]string{}
		f.types = map[string]string{}
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = string(body)
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func writeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":          "<html></html>",
		"badges/coverage.svg": "<svg/>",
		"api/metrics.json":    "{}",
	}
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
	return dir
}

func TestPublishDir_UploadsUnderPrefix(t *testing.T) {
	dir := writeTree(t)
	client := &fakeS3{}
	p := NewPublisher(client, "site", "/metrics/main/", nil)

	n, err := p.PublishDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	keys := make([]string, 0, len(client.objects))
	for k := range client.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{
		"site/metrics/main/api/metrics.json",
		"site/metrics/main/badges/coverage.svg",
		"site/metrics/main/index.html",
	}, keys)
	assert.Equal(t, "<svg/>", client.objects["site/metrics/main/badges/coverage.svg"])
	assert.Equal(t, "image/svg+xml", client.types["site/metrics/main/badges/coverage.svg"])
}

func TestPublishDir_PropagatesFailure(t *testing.T) {
	p := NewPublisher(&fakeS3{fail: true}, "site", "", nil)

	_, err := p.PublishDir(context.Background(), writeTree(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestKey(t *testing.T) {
	assert.Equal(t, "badges/a.svg", NewPublisher(nil, "b", "", nil).Key("badges/a.svg"))
	assert.Equal(t, "p/badges/a.svg", NewPublisher(nil, "b", "p/", nil).Key("badges/a.svg"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", ContentType("x.json"))
	assert.Equal(t, "text/html; charset=utf-8", ContentType("index.html"))
	assert.Equal(t, "application/octet-stream", ContentType("blob"))
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil)
	require.Error(t, err)
}

func TestPublishDir_SkipsExcludedAndHidden(t *testing.T) {
	dir := writeTree(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "history"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "history", "all.json"), []byte("[]"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "badges", ".qualitydash-tmp-1"), []byte("x"), 0o600))
	client := &fakeS3{}

	n, err := NewPublisher(client, "site", "", nil).WithExclude("history").PublishDir(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 3, n)
	assert.NotContains(t, client.objects, "site/history/all.json")
	assert.NotContains(t, client.objects, "site/badges/.qualitydash-tmp-1")
}
