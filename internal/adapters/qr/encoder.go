// Package qr encodes QR codes as embeddable PNG data URLs.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the rendered image width in pixels.
const DefaultSize = 200

// Encoder implements domain.QREncoder.
type Encoder struct {
	size int
}

// NewEncoder returns an encoder producing size x size images. Non-positive sizes use DefaultSize.
func NewEncoder(size int) *Encoder {
	if size <= 0 {
		size = DefaultSize
	}
	return &Encoder{size: size}
}

// Encode returns content as a data:image/png;base64 URL.
func (e *Encoder) Encode(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, e.size)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
