package asset

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/inamate/vecgfx/internal/document"
	"github.com/inamate/vecgfx/internal/graphic"
)

func newRouter(t *testing.T) *mux.Router {
	t.Helper()
	h := NewHandler(t.TempDir(), nil)
	r := mux.NewRouter()
	r.HandleFunc("/fonts/upload", h.Upload).Methods("POST")
	r.HandleFunc("/fonts/{fontId}", h.Remove).Methods("DELETE")
	r.PathPrefix("/fonts/").Handler(h.Serve()).Methods("GET")
	r.HandleFunc("/text", h.Text).Methods("POST")
	return r
}

func upload(t *testing.T, r http.Handler, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "font.ttf")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/fonts/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func text(t *testing.T, r http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/text", strings.NewReader(body)))
	return rec
}

func items(t *testing.T, rec *httptest.ResponseRecorder) graphic.Items {
	t.Helper()
	doc, err := document.Parse(rec.Body.Bytes())
	require.NoError(t, err)
	out, err := doc.GraphicItems()
	require.NoError(t, err)
	return out
}

func TestUploadServeAndDelete(t *testing.T) {
	r := newRouter(t)

	rec := upload(t, r, gobold.TTF)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Greater(t, res.Glyphs, 0)
	assert.Equal(t, "font.ttf", res.Name)

	get := httptest.NewRecorder()
	r.ServeHTTP(get, httptest.NewRequest(http.MethodGet, res.URL, nil))
	require.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, gobold.TTF, get.Body.Bytes())
	assert.Contains(t, get.Header().Get("Cache-Control"), "immutable")

	rec = text(t, r, `{"text": "Hi", "font": "`+res.ID+`", "size": 24}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, items(t, rec), 1)

	del := httptest.NewRecorder()
	r.ServeHTTP(del, httptest.NewRequest(http.MethodDelete, "/fonts/"+res.ID, nil))
	assert.Equal(t, http.StatusNoContent, del.Code)

	rec = text(t, r, `{"text": "Hi", "font": "`+res.ID+`"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadRejectsNonFont(t *testing.T) {
	rec := upload(t, newRouter(t), []byte("definitely not a font"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTextDefaultFont(t *testing.T) {
	r := newRouter(t)

	rec := text(t, r, `{"text": "abc", "x": 10, "y": 40, "fill": "red", "stroke": {"width": 1, "color": "black"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := items(t, rec)
	require.Len(t, got, 1)
	p := got[0].(graphic.Path)
	assert.Equal(t, graphic.FillStyle(graphic.Red), p.Fill)
	assert.Equal(t, graphic.StrokeStyle(1, graphic.Black), p.Stroke)
	assert.False(t, p.Cache.IsSet())
}

func TestTextCachedGlyphs(t *testing.T) {
	rec := text(t, newRouter(t), `{"text": "a a", "cached": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	got := items(t, rec)
	require.Len(t, got, 2)
	assert.Equal(t, got[0].(graphic.Path).Cache.Tag, got[1].(graphic.Path).Cache.Tag)
}

func TestTextErrors(t *testing.T) {
	r := newRouter(t)
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"empty text", `{"text": ""}`, http.StatusBadRequest},
		{"bad json", `{"text": `, http.StatusBadRequest},
		{"bad color", `{"text": "a", "fill": "teal"}`, http.StatusBadRequest},
		{"bad font id", `{"text": "a", "font": "../../etc/passwd"}`, http.StatusNotFound},
		{"missing font", `{"text": "a", "font": "font_01h455vb4pex5vsknk084sn02q"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, text(t, r, tt.body).Code)
		})
	}
}
