package service

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"vidlink-backend/internal/models"
	"vidlink-backend/internal/store"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newDrafts() (*DraftService, *store.MemoryDraftStore) {
	s := store.NewMemoryDraftStore()
	return NewDraftService(s, quietLogger()), s
}

type fakeUsernames struct {
	has bool
	err error
}

func (f fakeUsernames) HasUsername(context.Context, string) (bool, error) { return f.has, f.err }

type fakeStorage struct {
	url      string
	err      error
	got      string
	filename string
}

func (f *fakeStorage) Upload(_ context.Context, r io.Reader, filename, _ string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.got, f.filename = string(b), filename
	return f.url, f.err
}

func videoFile(name, body string) *UploadFile {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", "video/mp4")
	return &UploadFile{
		Header:  &multipart.FileHeader{Filename: name, Header: h, Size: int64(len(body))},
		Content: strings.NewReader(body),
	}
}

// failingDraftStore fails every call with err.
type failingDraftStore struct{ err error }

func (f failingDraftStore) Load(context.Context, string) (*models.DraftRecord, error) {
	return nil, f.err
}
func (f failingDraftStore) Save(context.Context, string, []byte) error { return f.err }
func (f failingDraftStore) Delete(context.Context, string) error       { return f.err }

var errBackend = errors.New("backend down")

// flakyDraftStore fails the next failLoads calls to Load, then behaves.
type flakyDraftStore struct {
	store.DraftStore
	failLoads int
}

func (f *flakyDraftStore) Load(ctx context.Context, ownerID string) (*models.DraftRecord, error) {
	if f.failLoads > 0 {
		f.failLoads--
		return nil, errBackend
	}
	return f.DraftStore.Load(ctx, ownerID)
}
