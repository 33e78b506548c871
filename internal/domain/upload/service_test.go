package upload

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Put(ctx context.Context, r io.Reader, folder, publicID string) (string, error) {
	data, _ := io.ReadAll(r)
	args := m.Called(ctx, data, folder, publicID)
	return args.String(0), args.Error(1)
}

func fileHeader(t *testing.T, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["avatar"][0]
}

func TestAvatar_UploadsImage(t *testing.T) {
	store := new(mockStore)
	store.On("Put", mock.Anything, pngHeader, AvatarFolder, "user-7").
		Return("https://res.cloudinary.com/demo/image/upload/avatars/user-7.png", nil)

	url, err := NewService(store).Avatar(context.Background(), 7, fileHeader(t, pngHeader))

	require.NoError(t, err)
	assert.Contains(t, url, "user-7")
	store.AssertExpectations(t)
}

func TestAvatar_Rejects(t *testing.T) {
	store := new(mockStore)
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.Avatar(ctx, 1, fileHeader(t, []byte("just some text")))
	assert.ErrorIs(t, err, ErrInvalidMimeType)

	_, err = svc.Avatar(ctx, 1, fileHeader(t, nil))
	assert.ErrorIs(t, err, ErrEmptyFile)

	svc.maxSize = 4
	_, err = svc.Avatar(ctx, 1, fileHeader(t, pngHeader))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCloudinaryStore_Unconfigured(t *testing.T) {
	store, err := NewCloudinaryStore("")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), bytes.NewReader(pngHeader), AvatarFolder, "user-1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
