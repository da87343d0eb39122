package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublicURLEscapesSegments(t *testing.T) {
	got := PublicURL("https://cdn.example.com/", "travel-reports", "receipts/abc/nota fiscal.png")
	require.Equal(t, "https://cdn.example.com/travel-reports/receipts/abc/nota%20fiscal.png", got)
}

func TestDetectContentTypeKeepsDeclaredWhenUnknown(t *testing.T) {
	require.Equal(t, "application/pdf", DetectContentType("application/pdf", []byte{0x01, 0x02}))
	png := []byte("\x89PNG\r\n\x1a\n0000")
	require.Equal(t, "image/png", DetectContentType("application/pdf", png))
}

func TestCheckContentType(t *testing.T) {
	require.NoError(t, CheckContentType("image/jpeg"))
	require.ErrorIs(t, CheckContentType("application/zip"), ErrUnsupportedType)
}

func TestMemoryPutAndFail(t *testing.T) {
	mem := NewMemory("http://local")
	url, err := mem.Put(context.Background(), Object{Bucket: "b", Name: "x/y.png", Data: []byte("1")})
	require.NoError(t, err)
	require.Equal(t, "http://local/b/x/y.png", url)
	require.Equal(t, 1, mem.Len())

	boom := errors.New("boom")
	mem.FailWith(boom)
	_, err = mem.Put(context.Background(), Object{Bucket: "b", Name: "z"})
	require.ErrorIs(t, err, boom)
}
