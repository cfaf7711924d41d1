package khabar

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/rsaxena/khabar/docstore"
)

const (
	maxImageWidth = 1200
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

// ImageAsset is uploaded image metadata. The file itself lives under the
// static uploads directory; the store keeps this record keyed by filename.
type ImageAsset struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	URL          string    `json:"url"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Size         int       `json:"size"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// processImage decodes an image from src, scales it down to maxImageWidth if
// wider, and re-encodes it as JPEG. Returns metadata and the encoded bytes.
func processImage(src io.Reader, originalName string) (ImageAsset, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return ImageAsset{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return ImageAsset{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	ext := filepath.Ext(originalName)
	base := Slugify(strings.TrimSuffix(originalName, ext))
	if base == "" {
		base = "image"
	}

	return ImageAsset{
		Filename:     base + ".jpg",
		OriginalName: originalName,
		Width:        w,
		Height:       h,
		Size:         buf.Len(),
		UploadedAt:   time.Now().UTC(),
	}, buf.Bytes(), nil
}

// ensureUniqueFilename appends a counter while the filename collides with an
// existing upload on disk or in the store.
func (a *App) ensureUniqueFilename(c echo.Context, img *ImageAsset) {
	dir := filepath.Join(a.staticDir, uploadsSubdir)
	base := strings.TrimSuffix(img.Filename, ".jpg")
	candidate := img.Filename
	counter := 1
	for {
		_, statErr := os.Stat(filepath.Join(dir, candidate))
		_, getErr := a.Store.GetByID(c.Request().Context(), imagesCollection, candidate)
		if statErr != nil && getErr != nil {
			break
		}
		counter++
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
	img.Filename = candidate
}

func (a *App) handleImageUpload(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}

	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no image file provided")
	}
	if file.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusBadRequest, "file too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, data, err := processImage(src, file.Filename)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid image: "+err.Error())
	}

	a.ensureUniqueFilename(c, &img)
	img.URL = "/public/" + uploadsSubdir + "/" + img.Filename

	dir := filepath.Join(a.staticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, img.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	if _, err := a.Store.Put(c.Request().Context(), imagesCollection, img.Filename, map[string]any{
		"originalName": img.OriginalName,
		"url":          img.URL,
		"width":        int64(img.Width),
		"height":       int64(img.Height),
		"size":         int64(img.Size),
		"uploadedAt":   docstore.Millis(img.UploadedAt),
	}); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, img)
}

func (a *App) handleImageDelete(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}

	filename := c.Param("filename")
	if filename == "" || strings.Contains(filename, "/") || strings.Contains(filename, "..") {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filename")
	}

	// The file may already be gone; the metadata record is authoritative.
	_ = os.Remove(filepath.Join(a.staticDir, uploadsSubdir, filename))

	if err := a.Store.Delete(c.Request().Context(), imagesCollection, filename); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

func (a *App) handleImageList(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}

	docs, err := a.Store.FetchOnce(c.Request().Context(),
		docstore.C(imagesCollection).OrderBy("uploadedAt", docstore.Desc))
	if err != nil {
		return err
	}
	images := make([]ImageAsset, 0, len(docs))
	for _, d := range docs {
		images = append(images, ImageAsset{
			Filename:     d.ID,
			OriginalName: docString(d.Data, "originalName"),
			URL:          docString(d.Data, "url"),
			Width:        int(docInt64(d.Data, "width")),
			Height:       int(docInt64(d.Data, "height")),
			Size:         int(docInt64(d.Data, "size")),
			UploadedAt:   docTime(d.Data, "uploadedAt", time.Time{}),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"images": images})
}
