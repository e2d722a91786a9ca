package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageUpload(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "http://localhost:8083/")
	require.NoError(t, err)

	url, err := s.Upload(context.Background(), strings.NewReader("video-bytes"), "../../etc/Clip.MP4", "video/mp4")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://localhost:8083/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".mp4"))

	name := filepath.Base(url)
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))
}

func TestLocalStorageUploadCancelled(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Upload(ctx, strings.NewReader("video-bytes"), "clip.mp4", "video/mp4")
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProgressReaderReportsUpToHundred(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 1000)
	var seen []int
	r := NewProgressReader(bytes.NewReader(payload), int64(len(payload)), func(p int) {
		seen = append(seen, p)
	})

	buf := make([]byte, 250)
	for {
		_, err := r.Read(buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}

	assert.Equal(t, []int{25, 50, 75, 100}, seen)
}

func TestProgressReaderUnknownSize(t *testing.T) {
	var seen []int
	r := NewProgressReader(strings.NewReader("abc"), 0, func(p int) { seen = append(seen, p) })

	_, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []int{100}, seen)
}
