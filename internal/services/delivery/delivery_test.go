package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
	"github.com/admin/tg-bots/pack-store-bot/internal/ports/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transportMock struct {
	urlErr   error
	docErr   error
	textErr  error
	photoURL string
	videoURL string
	docName  string
	texts    []string
}

func (m *transportMock) SendMessage(_ context.Context, _ int64, text string) error {
	if m.textErr != nil {
		return m.textErr
	}
	m.texts = append(m.texts, text)
	return nil
}

func (m *transportMock) SendMessageWithKeyboard(context.Context, int64, string, *domain.InlineKeyboard) error {
	return nil
}

func (m *transportMock) SendPhotoByURL(_ context.Context, _ int64, url, _ string, _ *domain.InlineKeyboard) error {
	if m.urlErr != nil {
		return m.urlErr
	}
	m.photoURL = url
	return nil
}

func (m *transportMock) SendPhoto(context.Context, int64, []byte, string, string) error { return nil }

func (m *transportMock) SendVideoByURL(_ context.Context, _ int64, url, _ string) error {
	if m.urlErr != nil {
		return m.urlErr
	}
	m.videoURL = url
	return nil
}

func (m *transportMock) SendDocument(_ context.Context, _ int64, _ []byte, filename, _ string) error {
	if m.docErr != nil {
		return m.docErr
	}
	m.docName = filename
	return nil
}

func (m *transportMock) AnswerCallbackQuery(context.Context, string, string, bool) error { return nil }

type s3Mock struct {
	files     map[string][]byte
	presigned string
	getErr    error
}

func (m *s3Mock) GetFile(_ context.Context, path string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("object %s not found", path)
	}
	return data, nil
}

func (m *s3Mock) GetPresignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	if m.presigned == "" {
		return "", fmt.Errorf("presign failed for %s", path)
	}
	return m.presigned, nil
}

type cacheMock struct {
	store map[string]string
}

func newCacheMock() *cacheMock { return &cacheMock{store: make(map[string]string)} }

func (m *cacheMock) Get(_ context.Context, key string) (string, error) { return m.store[key], nil }
func (m *cacheMock) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.store[key] = value
	return nil
}
func (m *cacheMock) Delete(_ context.Context, key string) error { delete(m.store, key); return nil }
func (m *cacheMock) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.store[key]
	return ok, nil
}
func (m *cacheMock) Close() error { return nil }

func paidOrder() *domain.Order {
	return &domain.Order{
		ID:      uuid.New(),
		BuyerID: 42,
		Status:  domain.OrderStatusPaid,
	}
}

func imagePack() *domain.Product {
	return &domain.Product{
		ID:       "face_pack",
		Title:    "Портрет-пак",
		Kind:     domain.ProductKindImage,
		AssetURL: "https://cdn.example.com/full/face_pack.zip",
		AssetKey: "packs/face_pack.zip",
	}
}

func TestDeliver_ByReference(t *testing.T) {
	transport := &transportMock{}
	svc := New(transport, nil, nil, slog.Default())

	require.NoError(t, svc.Deliver(context.Background(), paidOrder(), imagePack()))
	assert.Equal(t, "https://cdn.example.com/full/face_pack.zip", transport.photoURL)
}

func TestDeliver_VideoByReference(t *testing.T) {
	transport := &transportMock{}
	svc := New(transport, nil, nil, slog.Default())

	pack := imagePack()
	pack.Kind = domain.ProductKindVideo
	require.NoError(t, svc.Deliver(context.Background(), paidOrder(), pack))
	assert.Equal(t, pack.AssetURL, transport.videoURL)
}

func TestDeliver_FallsBackToBytes(t *testing.T) {
	transport := &transportMock{urlErr: fmt.Errorf("wrong type of the web page content")}
	s3 := &s3Mock{files: map[string][]byte{"packs/face_pack.zip": []byte("zip-bytes")}}
	svc := New(transport, s3, nil, slog.Default())

	require.NoError(t, svc.Deliver(context.Background(), paidOrder(), imagePack()))
	assert.Equal(t, "face_pack.zip", transport.docName)
}

func TestDeliver_FallsBackToPresignedLink(t *testing.T) {
	transport := &transportMock{
		urlErr: fmt.Errorf("url rejected"),
		docErr: fmt.Errorf("document too large"),
	}
	s3 := &s3Mock{
		files:     map[string][]byte{"packs/face_pack.zip": []byte("zip-bytes")},
		presigned: "https://minio.example.com/presigned/face_pack.zip",
	}
	svc := New(transport, s3, nil, slog.Default())

	require.NoError(t, svc.Deliver(context.Background(), paidOrder(), imagePack()))
	require.Len(t, transport.texts, 1)
	assert.Contains(t, transport.texts[0], "https://minio.example.com/presigned/face_pack.zip")
}

func TestDeliver_TextLinkWithoutS3(t *testing.T) {
	transport := &transportMock{urlErr: fmt.Errorf("url rejected")}
	svc := New(transport, nil, nil, slog.Default())

	require.NoError(t, svc.Deliver(context.Background(), paidOrder(), imagePack()))
	require.Len(t, transport.texts, 1)
	assert.Contains(t, transport.texts[0], "https://cdn.example.com/full/face_pack.zip")
}

func TestDeliver_AllMethodsFail(t *testing.T) {
	transport := &transportMock{
		urlErr:  fmt.Errorf("url rejected"),
		docErr:  fmt.Errorf("upload rejected"),
		textErr: fmt.Errorf("chat blocked"),
	}
	s3 := &s3Mock{files: map[string][]byte{"packs/face_pack.zip": []byte("zip")}}
	svc := New(transport, s3, nil, slog.Default())

	err := svc.Deliver(context.Background(), paidOrder(), imagePack())
	assert.Error(t, err)
}

func TestDeliver_SkipsAlreadyDelivered(t *testing.T) {
	transport := &transportMock{}
	c := newCacheMock()
	svc := New(transport, nil, c, slog.Default())
	order := paidOrder()

	require.NoError(t, svc.Deliver(context.Background(), order, imagePack()))
	require.NoError(t, svc.Deliver(context.Background(), order, imagePack()))

	// вторая доставка не шлёт контент повторно
	assert.Equal(t, "https://cdn.example.com/full/face_pack.zip", transport.photoURL)
	assert.Len(t, c.store, 1)
	assert.Contains(t, c.store, cache.DeliveredKey(order.ID))
}

func TestDeliver_NoAssetAnywhere(t *testing.T) {
	transport := &transportMock{}
	svc := New(transport, nil, nil, slog.Default())

	pack := imagePack()
	pack.AssetURL = ""
	pack.AssetKey = ""

	err := svc.Deliver(context.Background(), paidOrder(), pack)
	assert.Error(t, err)
}
