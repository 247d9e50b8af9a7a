package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/garnizeh/hikelog/pkg/models"
)

func testRequest() *SyncRequest {
	return NewSyncRequest(&models.Hike{ID: 3, Name: "Creek Trail"}, []models.Observation{
		{ID: 1, HikeID: 3, ObservationText: "mud after the bridge"},
	}, false)
}

func TestHTTPGatewaySuccess(t *testing.T) {
	var gotAuth string
	var gotReq SyncRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/sync/hike" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(SyncResponse{Success: true, Message: "ok", HikeID: "abc", DocumentsUpdated: 2})
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, 5*time.Second, nil)
	resp, err := g.SyncHike(context.Background(), "tok123", testRequest())
	if err != nil {
		t.Fatalf("SyncHike: %v", err)
	}

	if gotAuth != "Bearer tok123" {
		t.Errorf("Authorization = %q, want Bearer tok123", gotAuth)
	}
	if gotReq.Hike.IDLocal != 3 || len(gotReq.Observations) != 1 {
		t.Errorf("server saw wrong bundle: %+v", gotReq)
	}
	if !resp.Success || resp.DocumentsUpdated != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHTTPGatewayServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index rebuild in progress", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, 5*time.Second, nil)
	_, err := g.SyncHike(context.Background(), "tok", testRequest())

	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("want RemoteError, got %T: %v", err, err)
	}
}

func TestHTTPGatewayMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, 5*time.Second, nil)
	_, err := g.SyncHike(context.Background(), "tok", testRequest())

	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("want RemoteError, got %T: %v", err, err)
	}
}

func TestHTTPGatewayNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	g := NewHTTPGateway(srv.URL, time.Second, nil)
	_, err := g.SyncHike(context.Background(), "tok", testRequest())

	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("want RemoteError, got %T: %v", err, err)
	}
}

func TestHTTPGatewayApplicationFailurePassthrough(t *testing.T) {
	// the gateway returns success=false responses untouched; the coordinator
	// turns them into a RemoteError
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SyncResponse{Success: false, Message: "embedding model offline"})
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, 5*time.Second, nil)
	resp, err := g.SyncHike(context.Background(), "tok", testRequest())
	if err != nil {
		t.Fatalf("SyncHike: %v", err)
	}
	if resp.Success {
		t.Error("Success = true, want false")
	}
	if resp.Message != "embedding model offline" {
		t.Errorf("Message = %q", resp.Message)
	}
}
