package httpserver

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	defaultPlaceholder = "https://via.placeholder.com/150"
	maxImageBytes      = 5 << 20
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ImageProxy serves product images from remote URLs or a local directory.
// Any failure redirects to the placeholder image.
type ImageProxy struct {
	client      httpDoer
	dir         string
	placeholder string
	logger      logrus.FieldLogger
}

func NewImageProxy(client httpDoer, dir, placeholder string, logger logrus.FieldLogger) *ImageProxy {
	if placeholder == "" {
		placeholder = defaultPlaceholder
	}
	return &ImageProxy{client: client, dir: dir, placeholder: placeholder, logger: logger}
}

// Placeholder redirects to the placeholder image.
func (p *ImageProxy) Placeholder(c *gin.Context) {
	c.Redirect(http.StatusFound, p.placeholder)
}

// Serve writes the image referenced by ref.
func (p *ImageProxy) Serve(c *gin.Context, ref string) {
	if ref == "" || ref == p.placeholder {
		p.Placeholder(c)
		return
	}

	var err error
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		err = p.proxy(c, ref)
	} else {
		err = p.local(c, ref)
	}
	if err != nil {
		p.logger.WithFields(logrus.Fields{
			"req_id": c.GetString(requestIDKey),
			"image":  ref,
		}).WithError(err).Warn("image unavailable, using placeholder")
		p.Placeholder(c)
	}
}

func (p *ImageProxy) proxy(c *gin.Context, ref string) error {
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, ref, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("unexpected content type %q", contentType)
	}

	c.Header("Cache-Control", "public, max-age=300")
	c.DataFromReader(http.StatusOK, -1, contentType, io.LimitReader(resp.Body, maxImageBytes), nil)
	return nil
}

func (p *ImageProxy) local(c *gin.Context, ref string) error {
	clean := filepath.Clean(filepath.FromSlash(ref))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("image path %q escapes image directory", ref)
	}
	path := filepath.Join(p.dir, clean)
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("image path %q is a directory", ref)
	}
	c.File(path)
	return nil
}
