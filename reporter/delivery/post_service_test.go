package delivery

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func newService(t *testing.T) (*PostService, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	return New(&http.Client{Timeout: 5 * time.Second}, logger), hook
}

func TestPostSendsRequest(t *testing.T) {
	var calls int32
	var mu sync.Mutex
	var gotKey, gotType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		mu.Lock()
		defer mu.Unlock()
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		gotKey = r.Header.Get("X-ApiKey")
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	service, hook := newService(t)
	service.Post(srv.URL+"/entries", "K", []byte(`{"details":{}}`))
	if !service.Flush(5 * time.Second) {
		t.Fatal("delivery did not complete")
	}

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected exactly one request, got %d", n)
	}
	mu.Lock()
	defer mu.Unlock()
	if gotKey != "K" || gotType != "application/json" {
		t.Fatalf("unexpected headers key=%q content-type=%q", gotKey, gotType)
	}
	if gotBody != `{"details":{}}` {
		t.Fatalf("unexpected body %s", gotBody)
	}
	for _, entry := range hook.AllEntries() {
		if entry.Level <= log.WarnLevel {
			t.Fatalf("expected no warning on success, got %q", entry.Message)
		}
	}
}

func TestPostStatusDiagnostics(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusBadRequest, "Bad message"},
		{http.StatusForbidden, "Invalid API Key"},
		{http.StatusRequestEntityTooLarge, "Request entity too large"},
		{http.StatusTooManyRequests, "Too Many Requests"},
		{http.StatusInternalServerError, "unexpected status - 500 Internal Server Error"},
		{http.StatusTeapot, "unexpected status - 418 I'm a teapot"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			service, hook := newService(t)
			service.Post(srv.URL, "K", []byte(`{}`))
			service.Flush(5 * time.Second)

			entry := hook.LastEntry()
			if entry == nil {
				t.Fatal("expected a diagnostic")
			}
			if !strings.Contains(entry.Message, tt.want) {
				t.Fatalf("expected diagnostic containing %q, got %q", tt.want, entry.Message)
			}
			if entry.Level != log.WarnLevel {
				t.Fatalf("expected warning, got %s", entry.Level)
			}
			if entry.Data[ComponentKey] != Component || entry.Data["status"] != tt.status {
				t.Fatalf("unexpected fields %v", entry.Data)
			}
		})
	}
}

func TestPostTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	service, hook := newService(t)
	service.Post(url, "K", []byte(`{}`))
	service.Flush(5 * time.Second)

	entry := hook.LastEntry()
	if entry == nil || !strings.Contains(entry.Message, "Error occurred during report delivery") {
		t.Fatalf("expected delivery error diagnostic, got %+v", entry)
	}
	if entry.Data[log.ErrorKey] == nil {
		t.Fatal("expected the transport error to be logged")
	}
}

func TestPostDoesNotBlockCaller(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	service, _ := newService(t)
	start := time.Now()
	service.Post(srv.URL, "K", []byte(`{}`))
	if time.Since(start) > time.Second {
		t.Fatal("Post blocked on the response")
	}
	if service.Flush(50 * time.Millisecond) {
		t.Fatal("expected flush to time out while the request is pending")
	}
}

func TestPostAndFlushConcurrently(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	service, _ := newService(t)
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			service.Post(srv.URL, "K", []byte(`{}`))
		}()
		go func() {
			defer wg.Done()
			service.Flush(time.Second)
		}()
	}
	wg.Wait()

	if !service.Flush(5 * time.Second) {
		t.Fatal("deliveries did not complete")
	}
	if got := atomic.LoadInt32(&calls); got != n {
		t.Fatalf("expected %d requests, got %d", n, got)
	}
	if !service.Flush(time.Millisecond) {
		t.Fatal("expected an idle service to flush immediately")
	}
}

func TestSharedInstance(t *testing.T) {
	const n = 16
	got := make([]*PostService, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = Instance()
		}(i)
	}
	wg.Wait()

	for i := range got {
		if got[i] == nil || got[i] != got[0] {
			t.Fatalf("expected a single shared instance, got %p and %p", got[0], got[i])
		}
	}

	if !Shutdown(time.Second) {
		t.Fatal("expected idle instance to flush")
	}
	if Instance() != nil {
		t.Fatal("expected no instance after shutdown")
	}
}
