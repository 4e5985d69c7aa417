package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxDimension bounds the stored width and height of item photos.
const MaxDimension = 1024

// JPEGQuality is the re-encode quality for stored photos.
const JPEGQuality = 85

// allowedMIME is the accepted photo allow-list, checked against sniffed
// bytes rather than client-supplied headers.
var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Allowed reports whether a sniffed or declared MIME type is accepted.
func Allowed(mime string) bool {
	if mime == "image/jpg" {
		mime = "image/jpeg"
	}
	return allowedMIME[mime]
}

// Process validates raw photo bytes against the allow-list, scales the
// image down to MaxDimension if needed and returns it re-encoded as JPEG.
func Process(data []byte) ([]byte, error) {
	detected := http.DetectContentType(data)
	if !allowedMIME[detected] {
		return nil, fmt.Errorf("unsupported image format %s: only JPEG and PNG are accepted", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	if b := img.Bounds(); b.Dx() > MaxDimension || b.Dy() > MaxDimension {
		img = scaleDown(img)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// scaleDown resizes so the longer edge equals MaxDimension, preserving
// aspect ratio.
func scaleDown(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var newW, newH int
	if w >= h {
		newW = MaxDimension
		newH = h * MaxDimension / w
	} else {
		newH = MaxDimension
		newW = w * MaxDimension / h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
