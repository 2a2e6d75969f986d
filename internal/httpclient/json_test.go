package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetJSON_DecodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol": "BTC", "price": "60000.00"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, srv.Client(), 0)

	var got struct {
		Price  string `json:"price"`
		Symbol string `json:"symbol"`
	}
	if err := client.GetJSON(context.Background(), "/ticker", &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Symbol != "BTC" || got.Price != "60000.00" {
		t.Errorf("decoded = %+v, want BTC/60000.00", got)
	}
}

func TestGetJSON_MalformedBodyIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, srv.Client(), 0)

	var got map[string]any
	err := client.GetJSON(context.Background(), "/ticker", &got)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
	if IsTransport(err) {
		t.Error("decode failure must not classify as transport")
	}
}

func TestGetJSON_TransportErrorPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, srv.Client(), 0)

	var got map[string]any
	err := client.GetJSON(context.Background(), "/ticker", &got)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if !IsTransport(err) {
		t.Error("status error must classify as transport")
	}
	if errors.Is(err, ErrDecode) {
		t.Error("status error must not wrap ErrDecode")
	}
}

func TestGetText_ReturnsRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`1,392.50원`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, srv.Client(), 0)

	text, err := client.GetText(context.Background(), "/fx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "1,392.50원" {
		t.Errorf("text = %q, want raw body", text)
	}
}
