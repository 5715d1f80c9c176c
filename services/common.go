package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// AllowedImageMediaTypes maps accepted upload content types to the file
// extension used on disk and in bucket keys.
var AllowedImageMediaTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageExtension returns the extension for an allowed media type. Parameters
// such as "; charset" are ignored.
func ImageExtension(mediaType string) (string, bool) {
	base := strings.ToLower(strings.TrimSpace(strings.SplitN(mediaType, ";", 2)[0]))
	ext, ok := AllowedImageMediaTypes[base]
	return ext, ok
}

// MediaTypeForExtension is the reverse of ImageExtension.
func MediaTypeForExtension(ext string) (string, bool) {
	ext = strings.ToLower(ext)
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	for mediaType, known := range AllowedImageMediaTypes {
		if known == ext {
			return mediaType, true
		}
	}
	return "", false
}

func StrPointer(str string) *string {
	if str == "" {
		return nil
	}
	return &str
}

func ReadFileFromUrl(ctx context.Context, url string) ([]byte, error) {
	httpClient := &http.Client{}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch file, status code: %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return content, nil
}

// SaveUploadToTemp copies r into a fresh directory under dir. The returned
// cleanup removes the whole directory and is safe to call more than once.
func SaveUploadToTemp(dir string, r io.Reader, ext string) (string, func(), error) {
	tmpDir, err := os.MkdirTemp(dir, "dripmate-upload-*")
	if err != nil {
		return "", func() {}, fmt.Errorf("failed to create temp dir: %w", err)
	}
	cleanup := func() {
		os.RemoveAll(tmpDir)
	}

	path := filepath.Join(tmpDir, "image"+ext)
	f, err := os.Create(path)
	if err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("failed to write temp file: %w", err)
	}
	return path, cleanup, nil
}
