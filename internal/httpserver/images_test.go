package httpserver

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"pos-storefront/internal/domain"
	"pos-storefront/internal/session"
	cartsvc "pos-storefront/internal/service/cart"
	productsvc "pos-storefront/internal/service/product"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func newImageRouter(t *testing.T, products []domain.Product) (http.Handler, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngBytes)
		case "/html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "img"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "img", "tea.png"), pngBytes, 0o600); err != nil {
		t.Fatalf("write image: %v", err)
	}

	for i := range products {
		if products[i].Image != "" && products[i].Image[0] == '/' {
			products[i].Image = upstream.URL + products[i].Image
		}
	}
	catalog := &stubCatalogService{cat: productsvc.NewCatalog("file", products, 0, nil, time.Now())}
	router, err := buildRouter(logDiscard(), nil, Deps{
		CatalogSvc: catalog,
		CartSvc:    cartsvc.New(session.New(time.Hour), catalog, logDiscard(), nil),
		Images:     NewImageProxy(upstream.Client(), dir, testPlaceholder, logDiscard()),
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router, upstream.URL
}

func TestProductImage(t *testing.T) {
	router, _ := newImageRouter(t, []domain.Product{
		{ID: "remote", Name: "Remote", Image: "/ok.png"},
		{ID: "missing", Name: "Missing", Image: "/gone.png"},
		{ID: "html", Name: "Html", Image: "/html"},
		{ID: "local", Name: "Local", Image: "img/tea.png"},
		{ID: "nofile", Name: "No file", Image: "img/none.png"},
		{ID: "placeholder", Name: "Placeholder", Image: testPlaceholder},
	})

	cases := map[string]int{
		"remote":      http.StatusOK,
		"missing":     http.StatusFound,
		"html":        http.StatusFound,
		"local":       http.StatusOK,
		"nofile":      http.StatusFound,
		"placeholder": http.StatusFound,
		"unknown":     http.StatusFound,
	}
	for id, want := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/"+id+"/image", nil))
		if rec.Code != want {
			t.Fatalf("%s: expected %d, got %d", id, want, rec.Code)
		}
		if want == http.StatusFound && rec.Header().Get("Location") != testPlaceholder {
			t.Fatalf("%s: expected placeholder redirect, got %q", id, rec.Header().Get("Location"))
		}
		if want == http.StatusOK && rec.Body.Len() != len(pngBytes) {
			t.Fatalf("%s: expected image body, got %d bytes", id, rec.Body.Len())
		}
	}
}

func TestLineImage(t *testing.T) {
	router, _ := newImageRouter(t, []domain.Product{{ID: "remote", Name: "Remote", Image: "/ok.png"}})
	cl := &client{t: t, handler: router}

	if rec := cl.do(http.MethodGet, "/cart/lines/remote/image", ""); rec.Code != http.StatusFound {
		t.Fatalf("expected placeholder for line not in cart, got %d", rec.Code)
	}
	cl.do(http.MethodPost, "/cart/lines", `{"productId":"remote"}`)
	if rec := cl.do(http.MethodGet, "/cart/lines/remote/image", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected proxied line image, got %d", rec.Code)
	}
}

func TestImageProxyRejectsEscapingPaths(t *testing.T) {
	p := NewImageProxy(http.DefaultClient, t.TempDir(), "", logDiscard())
	for _, ref := range []string{"../etc/passwd", "/etc/passwd", ".."} {
		gin.SetMode(gin.TestMode)
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		p.Serve(c, ref)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != defaultPlaceholder {
			t.Fatalf("%s: expected placeholder redirect, got %d %q", ref, rec.Code, rec.Header().Get("Location"))
		}
	}
}
