package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
)

type rejection struct{ status int }

func (rj *rejection) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, rj.status)
	return nil
}

func TestBodyLimit(t *testing.T) {
	var read int
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		read = len(data)
		w.WriteHeader(http.StatusNoContent)
	})

	testCases := []struct {
		name     string
		maxBytes int64
		body     string
		status   int
	}{
		{name: "不限制", maxBytes: 0, body: "abc", status: http.StatusNoContent},
		{name: "未超限", maxBytes: 10, body: "abc", status: http.StatusNoContent},
		{name: "超限", maxBytes: 1, body: strings.Repeat("x", formOverhead+2), status: http.StatusRequestEntityTooLarge},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			read = 0
			req := httptest.NewRequest(http.MethodPost, "/datasets/upload", strings.NewReader(tc.body))
			w := httptest.NewRecorder()

			NewBodyLimit(tc.maxBytes, nil).Handler(next).ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusNoContent {
				assert.Equal(t, len(tc.body), read)
			}
		})
	}
}

func TestBodyLimitReject(t *testing.T) {
	var gotLimit int64
	onReject := func(r *http.Request, limit int64) render.Renderer {
		gotLimit = limit
		return &rejection{status: http.StatusRequestEntityTooLarge}
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("超限请求不应到达处理器")
	})

	req := httptest.NewRequest(http.MethodPost, "/datasets/upload", strings.NewReader(strings.Repeat("x", formOverhead+10)))
	w := httptest.NewRecorder()
	NewBodyLimit(5, onReject).Handler(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, int64(5), gotLimit)
}
