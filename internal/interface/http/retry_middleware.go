package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/config"
)

// Bodies above this size are never buffered for replay.
const replayBodyLimit = 1 << 20

var errReplayBodyTooLarge = errors.New("request body exceeds replay limit")

// withRetry replays POST requests that fail with a 5xx, up to the configured
// attempt count with exponential backoff. Image-upload endpoints are excluded
// via config so large multipart bodies are never held in memory.
func withRetry(next http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return next
	}
	excluded := make(map[string]struct{}, len(cfg.Exclude))
	for _, path := range cfg.Exclude {
		excluded[path] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}
		if _, skip := excluded[r.URL.Path]; skip {
			next.ServeHTTP(w, r)
			return
		}

		body, err := bufferBody(r)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, errReplayBodyTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			http.Error(w, err.Error(), status)
			return
		}

		for attempt := 1; ; attempt++ {
			replay := r.Clone(r.Context())
			replay.Body = io.NopCloser(bytes.NewReader(body))
			replay.ContentLength = int64(len(body))

			rec := &replayRecorder{dst: w, header: make(http.Header), status: http.StatusOK}
			next.ServeHTTP(rec, replay)

			if rec.status < http.StatusInternalServerError || attempt == cfg.MaxAttempts {
				rec.flushTo(w)
				return
			}

			logger.Warn("transient failure, retrying request", "path", r.URL.Path, "status", rec.status, "attempt", attempt)
			if delay := cfg.BaseBackoff * time.Duration(1<<(attempt-1)); delay > 0 {
				time.Sleep(delay)
			}
		}
	})
}

func bufferBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, replayBodyLimit+1))
	if err != nil {
		return nil, err
	}
	if len(data) > replayBodyLimit {
		return nil, errReplayBodyTooLarge
	}
	return data, nil
}

// replayRecorder holds a full response so a failed attempt can be discarded
// instead of reaching the client.
type replayRecorder struct {
	dst       http.ResponseWriter
	header    http.Header
	body      bytes.Buffer
	status    int
	wroteHead bool
}

func (r *replayRecorder) Header() http.Header { return r.header }

func (r *replayRecorder) WriteHeader(status int) {
	if r.wroteHead {
		return
	}
	r.status = status
	r.wroteHead = true
}

func (r *replayRecorder) Write(b []byte) (int, error) {
	return r.body.Write(b)
}

func (r *replayRecorder) Flush() {}

func (r *replayRecorder) flushTo(w http.ResponseWriter) {
	dst := w.Header()
	for k := range dst {
		dst.Del(k)
	}
	for k, values := range r.header {
		dst[k] = append([]string(nil), values...)
	}
	w.WriteHeader(r.status)
	if r.body.Len() > 0 {
		_, _ = w.Write(r.body.Bytes())
	}
}
