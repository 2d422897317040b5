package web_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/fetchcr/pkg/domain/model"
	"github.com/m-mizutani/fetchcr/pkg/infra/web"
)

func TestClient_GetText(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("<html>hello</html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := web.NewClient(web.WithUserAgent("test-agent/1.0"))

	t.Run("returns body on 200", func(t *testing.T) {
		body, err := client.GetText(context.Background(), server.URL+"/ok")
		gt.NoError(t, err)
		gt.Equal(t, body, "<html>hello</html>")
		gt.Equal(t, gotUA, "test-agent/1.0")
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		_, err := client.GetText(context.Background(), server.URL+"/missing")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrUnexpectedStatus))
	})

	t.Run("transport failure is an error", func(t *testing.T) {
		_, err := client.GetText(context.Background(), "http://127.0.0.1:0/nothing")
		gt.Error(t, err)
	})
}

func TestClient_GetText_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := web.NewClient(web.WithPageTimeout(50 * time.Millisecond))
	_, err := client.GetText(context.Background(), server.URL)
	gt.Error(t, err)
}

func TestClient_Open(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/redirect" {
			http.Redirect(w, r, "/files/archive.zip", http.StatusFound)
			return
		}
		w.Header().Set("Content-Length", "5")
		w.Write([]byte("abcde"))
	}))
	defer server.Close()

	client := web.NewClient()
	resp, err := client.Open(context.Background(), server.URL+"/redirect")
	gt.NoError(t, err).Required()
	defer resp.Body.Close()

	gt.Equal(t, resp.ContentLength, int64(5))
	gt.Equal(t, resp.Request.URL.Path, "/files/archive.zip")
}
