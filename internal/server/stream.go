package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"gocv.io/x/gocv"
)

// FrameBuffer holds the latest annotated frame as JPEG. Writers replace it;
// readers wait for a newer one. Old frames are dropped, never queued.
type FrameBuffer struct {
	mu      sync.Mutex
	jpeg    []byte
	seq     uint64
	updated chan struct{}
}

// NewFrameBuffer creates an empty FrameBuffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{updated: make(chan struct{})}
}

// Publish encodes frame as JPEG and makes it the latest frame.
func (b *FrameBuffer) Publish(frame *gocv.Mat) error {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	b.PublishJPEG(data)
	return nil
}

// PublishJPEG makes data the latest frame. data must not be modified afterwards.
func (b *FrameBuffer) PublishJPEG(data []byte) {
	b.mu.Lock()
	b.jpeg = data
	b.seq++
	close(b.updated)
	b.updated = make(chan struct{})
	b.mu.Unlock()
}

// Latest returns the latest frame and its sequence number; 0 means none yet.
func (b *FrameBuffer) Latest() ([]byte, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.jpeg, b.seq
}

// Next blocks until a frame newer than after exists or ctx ends.
func (b *FrameBuffer) Next(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		b.mu.Lock()
		data, seq, updated := b.jpeg, b.seq, b.updated
		b.mu.Unlock()

		if seq > after {
			return data, seq, nil
		}

		select {
		case <-ctx.Done():
			return nil, seq, ctx.Err()
		case <-updated:
		}
	}
}

// StreamHandler serves the frame buffer as MJPEG.
type StreamHandler struct {
	frames *FrameBuffer
}

// NewStreamHandler creates a new StreamHandler over frames.
func NewStreamHandler(frames *FrameBuffer) *StreamHandler {
	return &StreamHandler{frames: frames}
}

// ServeHTTP streams each new frame until the client goes away.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, _ := w.(http.Flusher)

	var seq uint64
	for {
		data, next, err := h.frames.Next(r.Context(), seq)
		if err != nil {
			return
		}
		seq = next

		fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(data))
		if _, err := w.Write(data); err != nil {
			return
		}
		fmt.Fprint(w, "\r\n")

		if flusher != nil {
			flusher.Flush()
		}
	}
}
