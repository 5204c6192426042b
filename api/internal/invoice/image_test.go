package invoice

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageFromFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		file string
		mime string
	}{
		{file: "a.jpg", mime: "image/jpeg"},
		{file: "a.JPEG", mime: "image/jpeg"},
		{file: "a.png", mime: "image/png"},
		{file: "a.webp", mime: "image/webp"},
		{file: "a.gif", mime: "image/jpeg"},
		{file: "noext", mime: "image/jpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			p := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(p, []byte{1, 2, 3}, 0o644))

			img, err := ImageFromFile(p)
			require.NoError(t, err)
			assert.Equal(t, []byte{1, 2, 3}, img.Data)
			assert.Equal(t, tt.mime, img.MIMEType)
		})
	}
}

func TestImageFromFileMissing(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nope.png")
	_, err := ImageFromFile(p)
	require.Error(t, err)
	assert.Equal(t, "Image file not found at "+p, err.Error())
	assert.True(t, IsInput(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImageFromBase64(t *testing.T) {
	payload := []byte("\x89PNG fake")
	std := base64.StdEncoding.EncodeToString(payload)

	tests := []struct {
		name string
		data string
		mime string
		want string
	}{
		{name: "default mime", data: std, want: "image/jpeg"},
		{name: "explicit mime", data: std, mime: "image/png", want: "image/png"},
		{name: "data url", data: "data:image/webp;base64," + std, want: "image/webp"},
		{name: "explicit beats data url", data: "data:image/webp;base64," + std, mime: "image/png", want: "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := ImageFromBase64(tt.data, tt.mime)
			require.NoError(t, err)
			assert.Equal(t, payload, img.Data)
			assert.Equal(t, tt.want, img.MIMEType)
			assert.NotEmpty(t, img.Hash())
		})
	}
}

func TestImageFromBase64Errors(t *testing.T) {
	_, err := ImageFromBase64("", "")
	require.Error(t, err)
	assert.Equal(t, MsgNoImageData, err.Error())
	assert.True(t, IsInput(err))

	_, err = ImageFromBase64("   ", "image/png")
	assert.EqualError(t, err, MsgNoImageData)

	_, err = ImageFromBase64("%%%not-base64%%%", "")
	require.Error(t, err)
	assert.Equal(t, MsgInvalidBase64, err.Error())
	assert.True(t, IsInput(err))
}
