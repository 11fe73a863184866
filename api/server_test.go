package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/matt-g-everett/ledseq/sched"
	"github.com/matt-g-everett/ledseq/stream"
)

type fakePlayer struct {
	queue   []sched.EntryInfo
	playErr error
	skipErr error
}

func (p *fakePlayer) Play(ctx context.Context, name string) error {
	if p.playErr != nil {
		return p.playErr
	}
	p.queue = append(p.queue, sched.EntryInfo{Name: name, State: "queued"})
	return nil
}

func (p *fakePlayer) Skip(ctx context.Context) error { return p.skipErr }

func (p *fakePlayer) Snapshot(ctx context.Context) ([]sched.EntryInfo, error) {
	return p.queue, nil
}

func newTestServer(t *testing.T, p *fakePlayer) *httptest.Server {
	t.Helper()
	static := t.TempDir()
	if err := os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>tree</h1>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	srv := httptest.NewServer(NewApi(p, static, zerolog.Nop()).Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestPlayAnimation(t *testing.T) {
	p := &fakePlayer{}
	srv := newTestServer(t, p)

	resp, err := http.Post(srv.URL+"/api/queue/sparkle", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	var body queueResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Queue) != 1 || body.Queue[0].Name != "sparkle" {
		t.Fatalf("unexpected queue %+v", body.Queue)
	}
}

func TestGetQueue(t *testing.T) {
	p := &fakePlayer{queue: []sched.EntryInfo{{Name: "a", State: "running"}, {Name: "b", State: "queued"}}}
	srv := newTestServer(t, p)

	resp, err := http.Get(srv.URL + "/api/queue")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected content type %q", ct)
	}
	var body queueResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Queue) != 2 || body.Queue[0].State != "running" {
		t.Fatalf("unexpected queue %+v", body.Queue)
	}
}

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{stream.ErrUnknownAnimation, http.StatusNotFound},
		{sched.ErrAlreadyQueued, http.StatusConflict},
		{sched.ErrInvalidHandle, http.StatusBadRequest},
		{stream.ErrStopped, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		srv := newTestServer(t, &fakePlayer{playErr: tc.err})
		resp, err := http.Post(srv.URL+"/api/queue/x", "application/json", nil)
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, resp.StatusCode)
		}
	}
}

func TestSkip(t *testing.T) {
	srv := newTestServer(t, &fakePlayer{})
	resp, err := http.Post(srv.URL+"/api/skip", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	srv = newTestServer(t, &fakePlayer{skipErr: stream.ErrNothingPlaying})
	resp, err = http.Post(srv.URL+"/api/skip", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestServesStaticClient(t *testing.T) {
	srv := newTestServer(t, &fakePlayer{})
	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
