package predict

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"screening-bot/api/internal/logx"
	"screening-bot/api/internal/payload"
	"screening-bot/api/internal/schema"
)

func TestPaths(t *testing.T) {
	want := map[schema.Kind]string{
		schema.Malaria:  "malpredict",
		schema.Diabetes: "diapredict",
		schema.Health:   "healthpredict",
		schema.Login:    "login",
		schema.Signup:   "signup",
	}
	for k, p := range want {
		if got, ok := Path(k); !ok || got != p {
			t.Errorf("Path(%s) = %q, %v", k, got, ok)
		}
	}
}

func TestSubmitPostsJSONOnce(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Method != http.MethodPost {
			t.Errorf("method %s", r.Method)
		}
		if r.URL.Path != "/diapredict" {
			t.Errorf("path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type %q", ct)
		}
		b, _ := io.ReadAll(r.Body)
		if string(b) != `{"Pregnancies":1,"Glucose":2,"BloodPressure":3,"SkinThickness":4,"Insulin":5,"BMI":6.5,"DiabetesPedigreeFunction":0.1,"Age":30}` {
			t.Errorf("body %s", b)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Outcome":1}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithLogger(logx.Discard()))
	resp, err := c.Submit(context.Background(), payload.DiabetesRequest{
		Pregnancies: 1, Glucose: 2, BloodPressure: 3, SkinThickness: 4, Insulin: 5, BMI: 6.5,
		DiabetesPedigreeFunction: 0.1, Age: 30,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !resp.OK() || resp.Status != http.StatusOK {
		t.Fatalf("status %d", resp.Status)
	}
	if resp.Body["Outcome"] != float64(1) {
		t.Fatalf("body %v", resp.Body)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected exactly one call, got %d", n)
	}
}

func TestSubmitReturnsNonSuccessBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"msg":"field required"}]}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL, WithLogger(logx.Discard())).Submit(context.Background(), payload.LoginRequest{Email: "a@b.c", Password: "x"})
	if err != nil {
		t.Fatalf("non-2xx must not be a transport error: %v", err)
	}
	if resp.OK() || resp.Status != http.StatusUnprocessableEntity {
		t.Fatalf("status %d", resp.Status)
	}
	if _, ok := resp.Body["detail"]; !ok {
		t.Fatalf("body %v", resp.Body)
	}
}

func TestSubmitNonObjectJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"ok"`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL, WithLogger(logx.Discard())).Submit(context.Background(), payload.HealthRequest{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.Body == nil || len(resp.Body) != 0 {
		t.Fatalf("expected empty object body, got %v", resp.Body)
	}
}

func TestSubmitTransportErrors(t *testing.T) {
	t.Run("unparseable body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		}))
		defer srv.Close()

		_, err := New(srv.URL, WithLogger(logx.Discard())).Submit(context.Background(), payload.MalariaRequest{})
		var te *TransportError
		if !errors.As(err, &te) || te.Op != "decode" || te.Kind != schema.Malaria {
			t.Fatalf("expected decode TransportError, got %v", err)
		}
	})

	t.Run("no response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		_, err := New(url, WithLogger(logx.Discard())).Submit(context.Background(), payload.MalariaRequest{})
		var te *TransportError
		if !errors.As(err, &te) || te.Op != "do" {
			t.Fatalf("expected do TransportError, got %v", err)
		}
	})
}

func TestNewDefaultsBaseURL(t *testing.T) {
	if c := New("  "); c.BaseURL != DefaultBaseURL {
		t.Fatalf("BaseURL = %q", c.BaseURL)
	}
}
