package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ExtractPageText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents/report.pdf/pages/3/text", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "hello world"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, time.Second)
	require.NoError(t, err)

	text, err := client.ExtractPageText(context.Background(), "report.pdf", 3)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestClient_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": ""}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, time.Second)
	require.NoError(t, err)

	text, err := client.ExtractPageText(context.Background(), "report.pdf", 99)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "parse failure", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, time.Second)
	require.NoError(t, err)

	_, err = client.ExtractPageText(context.Background(), "report.pdf", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient("  ", time.Second)
	require.Error(t, err)
}
