package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pithecene-io/ccshost/ipc"
	"github.com/pithecene-io/ccshost/metrics"
	"github.com/pithecene-io/ccshost/types"
)

// buildInput concatenates framed payloads, as the browser would send them.
func buildInput(payloads ...string) *bytes.Buffer {
	var buf bytes.Buffer
	for _, p := range payloads {
		buf.Write(ipc.EncodeFrame([]byte(p)))
	}
	return &buf
}

// readResponses decodes every frame written by the host.
func readResponses(t *testing.T, out *bytes.Buffer) []string {
	t.Helper()
	decoder := ipc.NewFrameDecoder(bytes.NewReader(out.Bytes()))
	var responses []string
	for {
		payload, err := decoder.ReadFrame()
		if err == io.EOF {
			return responses
		}
		if err != nil {
			t.Fatalf("ReadFrame on host output failed: %v", err)
		}
		responses = append(responses, string(payload))
	}
}

func newTestHost(t *testing.T, in io.Reader, out io.Writer, m *metrics.Collector) *Host {
	t.Helper()
	host, err := NewHost(&HostConfig{
		Input:    in,
		Output:   out,
		Handlers: NewHandlers(HandlersConfig{Metrics: m}),
		Metrics:  m,
	})
	if err != nil {
		t.Fatalf("NewHost failed: %v", err)
	}
	return host
}

func TestHost_Ping(t *testing.T) {
	var out bytes.Buffer
	host := newTestHost(t, buildInput(`{"action":"ping"}`), &out, nil)

	if err := host.Run(t.Context()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := readResponses(t, &out)
	if len(got) != 1 || got[0] != `{"success":true}` {
		t.Errorf("responses = %q, want [{\"success\":true}]", got)
	}
}

func TestHost_SaveCreatesDirectories(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "x", "y.txt")
	req := `{"action":"save","path":` + quote(path) + `,"content":"hi"}`

	var out bytes.Buffer
	host := newTestHost(t, buildInput(req), &out, nil)
	if err := host.Run(t.Context()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := readResponses(t, &out)
	want := `{"success":true,"full_path":` + quote(path) + `}`
	if len(got) != 1 || got[0] != want {
		t.Errorf("responses = %q, want [%s]", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "hi" {
		t.Errorf("content = %q, want hi", data)
	}
}

func TestHost_OperationErrorsContinueLoop(t *testing.T) {
	m := metrics.NewCollector(types.Version, "")
	path := filepath.Join(t.TempDir(), "after.txt")

	var out bytes.Buffer
	host := newTestHost(t, buildInput(
		`{"action":"save","path":"relative/file.txt","content":"x"}`,
		`{"action":"ping"}`,
		`{"action":"save","path":`+quote(path)+`,"content":"ok"}`,
	), &out, m)

	if err := host.Run(t.Context()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := readResponses(t, &out)
	want := []string{
		`{"success":false,"error":"Path must be absolute"}`,
		`{"success":true}`,
		`{"success":true,"full_path":` + quote(path) + `}`,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d responses, want %d: %q", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("responses[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	s := m.Snapshot()
	if s.FramesRead != 3 || s.FramesWritten != 3 {
		t.Errorf("FramesRead/FramesWritten = %d/%d, want 3/3", s.FramesRead, s.FramesWritten)
	}
	if s.Requests["save"] != 2 || s.Requests["ping"] != 1 {
		t.Errorf("Requests = %v, want save=2 ping=1", s.Requests)
	}
	if s.SavesFailed != 1 || s.SavesSucceeded != 1 {
		t.Errorf("SavesFailed/SavesSucceeded = %d/%d, want 1/1", s.SavesFailed, s.SavesSucceeded)
	}
}

func TestHost_CleanEOF(t *testing.T) {
	var out bytes.Buffer
	host := newTestHost(t, bytes.NewReader(nil), &out, nil)

	if err := host.Run(t.Context()); err != nil {
		t.Errorf("Run = %v, want nil on empty input", err)
	}
	if out.Len() != 0 {
		t.Errorf("host wrote %d bytes on empty input", out.Len())
	}
}

func TestHost_TruncatedPrefixEndsCleanly(t *testing.T) {
	in := buildInput(`{"action":"ping"}`)
	in.Write([]byte{0x01, 0x00})

	var out bytes.Buffer
	host := newTestHost(t, in, &out, nil)
	if err := host.Run(t.Context()); err != nil {
		t.Errorf("Run = %v, want nil", err)
	}
	if got := readResponses(t, &out); len(got) != 1 {
		t.Errorf("got %d responses, want 1", len(got))
	}
}

func TestHost_TruncatedPayloadIsFatal(t *testing.T) {
	frame := ipc.EncodeFrame([]byte(`{"action":"ping"}`))
	in := buildInput(`{"action":"ping"}`)
	in.Write(frame[:len(frame)-2])

	var out bytes.Buffer
	host := newTestHost(t, in, &out, nil)
	err := host.Run(t.Context())
	if !ipc.IsFrameError(err, ipc.FrameErrorPartial) {
		t.Fatalf("Run = %v, want FrameErrorPartial", err)
	}
	if got := readResponses(t, &out); len(got) != 1 {
		t.Errorf("got %d responses, want only the first ping answered", len(got))
	}
}

func TestHost_DecodeErrorIsFatalWithoutResponse(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"unknown action", `{"action":"delete"}`},
		{"malformed JSON", `{"action":`},
		{"missing field", `{"action":"save","path":"/tmp/x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.NewCollector(types.Version, "")
			var out bytes.Buffer
			host := newTestHost(t, buildInput(tt.payload, `{"action":"ping"}`), &out, m)

			err := host.Run(t.Context())
			if !ipc.IsFrameError(err, ipc.FrameErrorDecode) {
				t.Fatalf("Run = %v, want FrameErrorDecode", err)
			}
			if out.Len() != 0 {
				t.Errorf("host wrote %d bytes after decode error, want 0", out.Len())
			}
			if m.Snapshot().DecodeErrors != 1 {
				t.Errorf("DecodeErrors = %d, want 1", m.Snapshot().DecodeErrors)
			}
		})
	}
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestHost_OutputErrorIsFatal(t *testing.T) {
	host := newTestHost(t, buildInput(`{"action":"ping"}`, `{"action":"ping"}`), brokenWriter{}, nil)

	err := host.Run(t.Context())
	if !ipc.IsFrameError(err, ipc.FrameErrorIO) {
		t.Fatalf("Run = %v, want FrameErrorIO", err)
	}
}

func TestHost_ContextCanceledBetweenFrames(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var out bytes.Buffer
	host := newTestHost(t, buildInput(`{"action":"ping"}`), &out, nil)
	if err := host.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("host wrote %d bytes after cancellation", out.Len())
	}
}

func TestHost_PayloadLimit(t *testing.T) {
	var out bytes.Buffer
	host, err := NewHost(&HostConfig{
		Input:          buildInput(`{"action":"save","path":"/tmp/a","content":"0123456789"}`),
		Output:         &out,
		Handlers:       NewHandlers(HandlersConfig{}),
		MaxPayloadSize: 16,
	})
	if err != nil {
		t.Fatalf("NewHost failed: %v", err)
	}

	if err := host.Run(t.Context()); !ipc.IsFrameError(err, ipc.FrameErrorTooLarge) {
		t.Errorf("Run = %v, want FrameErrorTooLarge", err)
	}
}

func TestNewHost_RequiresStreams(t *testing.T) {
	if _, err := NewHost(&HostConfig{Handlers: NewHandlers(HandlersConfig{})}); err == nil {
		t.Error("expected error without streams")
	}
	if _, err := NewHost(&HostConfig{Input: &bytes.Buffer{}, Output: &bytes.Buffer{}}); err == nil {
		t.Error("expected error without handlers")
	}
}

// quote renders s as a JSON string literal.
func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
