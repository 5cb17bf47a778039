package product

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	MaxImageSize = 5 << 20
	MaxImages    = 12
)

var (
	ErrNoImages      = errors.New("no images provided")
	ErrTooManyImages = fmt.Errorf("at most %d images allowed", MaxImages)
	ErrImageType     = errors.New("only image files are allowed")
	ErrImageTooLarge = fmt.Errorf("image exceeds %d bytes", MaxImageSize)
)

var allowedExt = map[string]struct{}{".jpg": {}, ".jpeg": {}, ".png": {}}

// CheckImage validates one upload by name and declared size.
func CheckImage(fh *multipart.FileHeader) error {
	if _, ok := allowedExt[strings.ToLower(filepath.Ext(fh.Filename))]; !ok {
		return fmt.Errorf("%w: %s", ErrImageType, fh.Filename)
	}
	if fh.Size > MaxImageSize {
		return fmt.Errorf("%w: %s", ErrImageTooLarge, fh.Filename)
	}
	return nil
}

// EncodeImages validates every file before reading any, then returns their
// contents base64-encoded in upload order.
func EncodeImages(files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, ErrNoImages
	}
	if len(files) > MaxImages {
		return nil, ErrTooManyImages
	}
	for _, fh := range files {
		if err := CheckImage(fh); err != nil {
			return nil, err
		}
	}

	out := make([]string, 0, len(files))
	for _, fh := range files {
		s, err := encodeOne(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func encodeOne(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	// Size 来自客户端，按实际读取再校验一次
	b, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	if len(b) > MaxImageSize {
		return "", fmt.Errorf("%w: %s", ErrImageTooLarge, fh.Filename)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
