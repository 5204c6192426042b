package invoice

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"invoice-extractor/api/internal/util"
)

const (
	MsgNoImageData   = "No image_data provided in the request body."
	MsgInvalidBase64 = "Invalid base64 in image_data."
)

// Image is the raw invoice picture sent to the model. MIMEType is never empty.
type Image struct {
	Data     []byte
	MIMEType string
}

// Hash identifies the image bytes for caching.
func (i Image) Hash() string { return util.SHA256Hex(i.Data) }

// ImageFromFile reads a local image, inferring the MIME type from the extension.
func ImageFromFile(path string) (Image, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Image{}, InputError(fmt.Sprintf("Image file not found at %s", path), err)
		}
		return Image{}, InputError(fmt.Sprintf("Could not read image %s: %v", path, err), err)
	}
	return Image{Data: b, MIMEType: util.MIMEByExt(path)}, nil
}

// ImageFromBase64 decodes an inline payload. mimeType may be empty.
func ImageFromBase64(data, mimeType string) (Image, error) {
	if strings.TrimSpace(data) == "" {
		return Image{}, InputError(MsgNoImageData, nil)
	}
	b, hint, err := util.DecodeBase64MaybeDataURL(data)
	if err != nil {
		return Image{}, InputError(MsgInvalidBase64, err)
	}
	if len(b) == 0 {
		return Image{}, InputError(MsgNoImageData, nil)
	}
	return Image{Data: b, MIMEType: util.PickMIME(mimeType, hint)}, nil
}
