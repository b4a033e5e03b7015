package goTOTP

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

type qrEncoder struct {
	size int
}

func newQREncoder(cfg QRConfig) *qrEncoder {
	return &qrEncoder{size: cfg.Size}
}

// DataURI renders content as a PNG QR code and returns it as a
// data:image/png;base64 URI suitable for an <img> src attribute.
func (q *qrEncoder) DataURI(content string) (string, error) {
	if q == nil {
		return "", ErrEngineNotReady
	}
	png, err := qrcode.Encode(content, qrcode.Medium, q.size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
