package storage_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"resource-share/src/storage"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API

	mu      sync.Mutex
	objects map[string]string
	meta    map[string]map[string]*string
	failFor string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]string{}, meta: map[string]map[string]*string{}}
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, input *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	key := aws.StringValue(input.Key)
	if f.failFor != "" && filepath.Base(key) == f.failFor {
		return nil, errors.New("service unavailable")
	}

	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.StringValue(input.Bucket)+"/"+key] = string(body)
	f.meta[key] = input.Metadata
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func writeLog(t *testing.T, dir, name, content string, modTime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
	return path
}

func TestLogUploader_ObjectKey(t *testing.T) {
	u := storage.NewLogUploaderWithClient(newFakeS3(), "bucket", quietLogger())
	key := u.ObjectKey("app_1.log", time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, "logs/2024/03/09/app_1.log", key)
}

func TestLogUploader_UploadLogFile(t *testing.T) {
	client := newFakeS3()
	u := storage.NewLogUploaderWithClient(client, "resource-share-logs", quietLogger())

	dir := t.TempDir()
	modTime := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	path := writeLog(t, dir, "app_2024-05-01_08-00-00_001.log", `{"msg":"hello"}`, modTime)

	require.NoError(t, u.UploadLogFile(context.Background(), path))

	key := "logs/2024/05/01/app_2024-05-01_08-00-00_001.log"
	assert.Equal(t, []string{"resource-share-logs/" + key}, client.keys())
	assert.Equal(t, `{"msg":"hello"}`, client.objects["resource-share-logs/"+key])
	assert.Equal(t, "resource-share-api", aws.StringValue(client.meta[key]["source"]))

	err := u.UploadLogFile(context.Background(), filepath.Join(dir, "missing.log"))
	assert.Error(t, err)
}

func TestLogUploader_UploadOldLogs(t *testing.T) {
	client := newFakeS3()
	u := storage.NewLogUploaderWithClient(client, "logs-bucket", quietLogger())

	dir := t.TempDir()
	old := time.Now().Add(-48 * time.Hour)
	oldPath := writeLog(t, dir, "old.log", "old", old)
	failPath := writeLog(t, dir, "broken.log", "broken", old)
	freshPath := writeLog(t, dir, "fresh.log", "fresh", time.Now())
	otherPath := writeLog(t, dir, "notes.txt", "not a log", old)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.log"), 0o755))

	client.failFor = "broken.log"

	uploaded, err := u.UploadOldLogs(context.Background(), dir, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, uploaded)
	require.Len(t, client.keys(), 1)
	assert.Contains(t, client.keys()[0], "/old.log")

	// アップロード済みは削除、失敗・新しい・対象外のファイルは残る
	assert.NoFileExists(t, oldPath)
	assert.FileExists(t, failPath)
	assert.FileExists(t, freshPath)
	assert.FileExists(t, otherPath)
}

func TestLogUploader_UploadOldLogs_Errors(t *testing.T) {
	u := storage.NewLogUploaderWithClient(newFakeS3(), "bucket", quietLogger())

	_, err := u.UploadOldLogs(context.Background(), filepath.Join(t.TempDir(), "missing"), time.Hour)
	assert.Error(t, err)

	dir := t.TempDir()
	writeLog(t, dir, "old.log", "old", time.Now().Add(-48*time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uploaded, err := u.UploadOldLogs(ctx, dir, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, uploaded)
}

func TestLogUploader_RunStopsOnCancel(t *testing.T) {
	u := storage.NewLogUploaderWithClient(newFakeS3(), "bucket", quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		u.Run(ctx, t.TempDir(), time.Hour, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
