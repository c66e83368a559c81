package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joseph-ayodele/nutrition-extractor/constants"
	"github.com/joseph-ayodele/nutrition-extractor/internal/entity"
	"github.com/joseph-ayodele/nutrition-extractor/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stubExtractor struct {
	calls      int
	doc        []byte
	credential string
}

func (s *stubExtractor) Process(_ context.Context, doc []byte, credential string) entity.ExtractionResult {
	s.calls++
	s.doc = doc
	s.credential = credential
	var a entity.AllergenRecord
	a.Set("milk", true)
	n := entity.NewNutrientRecord()
	n.Set("fat", "5 g")
	return entity.ExtractionResult{
		Success:       true,
		Allergens:     a,
		Nutrients:     n,
		Source:        constants.SourceLLM,
		ExtractedText: "Tej Zsír 5 g",
	}
}

func multipartBody(t *testing.T, filename string, content []byte, key string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	if key != "" {
		require.NoError(t, w.WriteField("gemini_api_key", key))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func newTestHTTP(ex Extractor, limit int64) (http.Handler, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	s := NewHTTPServer(ex, limit, metrics.New(reg), reg, nil)
	return s.Router(), reg
}

func TestHealthAndRoot(t *testing.T) {
	h, _ := newTestHTTP(&stubExtractor{}, 1<<20)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","version":"1.0.0"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"1.0.0"`)
}

func TestExtractHandler(t *testing.T) {
	pdf := []byte("%PDF-1.4 body")
	cases := []struct {
		name     string
		filename string
		content  []byte
		key      string
		limit    int64
		want     int
	}{
		{"ok", "sheet.pdf", pdf, "k", 1 << 20, http.StatusOK},
		{"upper case extension", "SHEET.PDF", pdf, "k", 1 << 20, http.StatusOK},
		{"wrong extension", "sheet.docx", pdf, "k", 1 << 20, http.StatusBadRequest},
		{"missing file", "", nil, "k", 1 << 20, http.StatusBadRequest},
		{"missing key", "sheet.pdf", pdf, "", 1 << 20, http.StatusBadRequest},
		{"too large", "sheet.pdf", bytes.Repeat([]byte("a"), 64), "k", 32, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ex := &stubExtractor{}
			h, _ := newTestHTTP(ex, tc.limit)
			body, ctype := multipartBody(t, tc.filename, tc.content, tc.key)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", body)
			req.Header.Set("Content-Type", ctype)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
			if tc.want != http.StatusOK {
				assert.Zero(t, ex.calls)
				assert.Contains(t, rec.Body.String(), "detail")
				return
			}
			assert.Equal(t, 1, ex.calls)
			assert.Equal(t, tc.key, ex.credential)

			var got map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, true, got["success"])
			assert.Equal(t, "llm", got["source"])
			assert.Equal(t, "N/A", got["nutrients"].(map[string]any)["sugar"])
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestHTTP(&stubExtractor{}, 1<<20)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "nutrition_http_requests_total"))
}

func dialBufconn(t *testing.T, ex Extractor) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterExtractorServer(srv, NewExtractorService(ex, 1<<20, nil))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestGRPCExtract(t *testing.T) {
	ex := &stubExtractor{}
	conn := dialBufconn(t, ex)

	out, err := InvokeExtract(context.Background(), conn, []byte("%PDF-1.4"), "secret")
	require.NoError(t, err)
	assert.Equal(t, "secret", ex.credential)
	assert.Equal(t, []byte("%PDF-1.4"), ex.doc)

	m := out.AsMap()
	assert.Equal(t, true, m["success"])
	assert.Equal(t, true, m["allergens"].(map[string]any)["milk"])
	assert.Equal(t, "5 g", m["nutrients"].(map[string]any)["fat"])
}

func TestGRPCExtractRejectsMissingCredential(t *testing.T) {
	ex := &stubExtractor{}
	conn := dialBufconn(t, ex)

	_, err := InvokeExtract(context.Background(), conn, []byte("%PDF-1.4"), "")
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Zero(t, ex.calls)
}
