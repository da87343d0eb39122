package report

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func fakeGotenberg(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/forms/chromium/convert/html":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			require.Equal(t, "8.27", r.FormValue("paperWidth"))
			require.Equal(t, "true", r.FormValue("printBackground"))
			file, header, err := r.FormFile("files")
			require.NoError(t, err)
			require.Equal(t, "index.html", header.Filename)
			html, _ := io.ReadAll(file)
			if string(html) == "fail" {
				http.Error(w, "chromium crashed", http.StatusInternalServerError)
				return
			}
			_, _ = w.Write(append([]byte("%PDF-"), html...))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRenderHTML(t *testing.T) {
	srv := fakeGotenberg(t)
	client := NewClient(srv.URL + "/")

	pdf, err := client.RenderHTML(context.Background(), "<p>oi</p>")
	require.NoError(t, err)
	require.Equal(t, "%PDF-<p>oi</p>", string(pdf))

	_, err = client.RenderHTML(context.Background(), "fail")
	require.ErrorContains(t, err, "chromium crashed")
}

func TestNotConfigured(t *testing.T) {
	_, err := NewClient("").RenderHTML(context.Background(), "x")
	require.ErrorIs(t, err, ErrNotConfigured)
	require.ErrorIs(t, NewClient("").Ping(context.Background()), ErrNotConfigured)
}

func TestPingRoute(t *testing.T) {
	srv := fakeGotenberg(t)
	r := chi.NewRouter()
	NewHandler(NewClient(srv.URL), slog.Default()).MountRoutes(r)

	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, res.Code)

	r = chi.NewRouter()
	NewHandler(NewClient(""), slog.Default()).MountRoutes(r)
	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusServiceUnavailable, res.Code)
}

func TestWithPage(t *testing.T) {
	base := NewClient("http://x")
	letter := base.WithPage(PageOptions{PaperWidth: 8.5, PaperHeight: 11})
	require.Equal(t, "8.5", letter.page.fields()["paperWidth"])
	require.Equal(t, "8.27", base.page.fields()["paperWidth"])
	_, ok := letter.page.fields()["printBackground"]
	require.False(t, ok)
}
