package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type Image struct {
	Data []byte
	Type string
}

type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (Image, error)
}

type HTTPImageFetcher struct {
	client *resty.Client
}

func NewHTTPImageFetcher(timeout time.Duration) *HTTPImageFetcher {
	return &HTTPImageFetcher{client: resty.New().SetTimeout(timeout)}
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) (Image, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return Image{}, fmt.Errorf("fetch image %s: %w", url, err)
	}
	if resp.IsError() {
		return Image{}, fmt.Errorf("fetch image %s: status %d", url, resp.StatusCode())
	}
	kind := imageType(resp.Header().Get("Content-Type"), url)
	if kind == "" {
		return Image{}, fmt.Errorf("fetch image %s: unsupported type", url)
	}
	return Image{Data: resp.Body(), Type: kind}, nil
}

// imageType maps a content type or file extension to the names gofpdf expects.
func imageType(contentType, url string) string {
	contentType = strings.ToLower(contentType)
	switch {
	case strings.Contains(contentType, "png"):
		return "PNG"
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return "JPG"
	case strings.Contains(contentType, "gif"):
		return "GIF"
	}
	lower := strings.ToLower(url)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "PNG"
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "JPG"
	case strings.HasSuffix(lower, ".gif"):
		return "GIF"
	}
	return ""
}
