package util

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBase64MaybeDataURL(t *testing.T) {
	raw := []byte{0xff, 0xd8, 0xff, 0xfe, 0x01}

	b, mime, err := DecodeBase64MaybeDataURL(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, b)
	assert.Empty(t, mime)

	b, mime, err = DecodeBase64MaybeDataURL(" data:image/png;base64," + base64.StdEncoding.EncodeToString(raw) + "\n")
	require.NoError(t, err)
	assert.Equal(t, raw, b)
	assert.Equal(t, "image/png", mime)

	b, _, err = DecodeBase64MaybeDataURL(base64.URLEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, b)

	_, _, err = DecodeBase64MaybeDataURL("***")
	assert.Error(t, err)
}

func TestPickMIME(t *testing.T) {
	assert.Equal(t, "image/png", PickMIME(" image/png ", "image/webp"))
	assert.Equal(t, "image/webp", PickMIME("", "image/webp"))
	assert.Equal(t, DefaultMIME, PickMIME("", ""))
}

func TestMIMEByExt(t *testing.T) {
	assert.Equal(t, "image/jpeg", MIMEByExt("/tmp/x.JPG"))
	assert.Equal(t, "image/png", MIMEByExt("x.png"))
	assert.Equal(t, "image/webp", MIMEByExt("x.webp"))
	assert.Equal(t, "image/jpeg", MIMEByExt("x.tiff"))
}

func TestSHA256Hex(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", SHA256Hex(nil))
}
