package webgl

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	og "github.com/anhaabaete/openglobus"
)

// fakeHALBuffer is a test double for hal.Buffer.
type fakeHALBuffer struct {
	label     string
	size      uint64
	usage     gputypes.BufferUsage
	data      []byte
	destroyed bool
}

// Destroy implements hal.Resource.
func (b *fakeHALBuffer) Destroy() {}

// NativeHandle implements hal.NativeHandle.
func (b *fakeHALBuffer) NativeHandle() uintptr { return 0 }

// fakeDevice implements Device.
type fakeDevice struct {
	created   []*fakeHALBuffer
	destroyed int
	createErr error
}

func (d *fakeDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	if d.createErr != nil {
		return nil, d.createErr
	}
	buf := &fakeHALBuffer{label: desc.Label, size: desc.Size, usage: desc.Usage}
	d.created = append(d.created, buf)
	return buf, nil
}

func (d *fakeDevice) DestroyBuffer(buf hal.Buffer) {
	d.destroyed++
	if fb, ok := buf.(*fakeHALBuffer); ok {
		fb.destroyed = true
	}
}

// fakeQueue implements Queue.
type fakeQueue struct {
	writes   int
	writeErr error
}

func (q *fakeQueue) WriteBuffer(buf hal.Buffer, offset uint64, data []byte) error {
	if q.writeErr != nil {
		return q.writeErr
	}
	q.writes++
	if fb, ok := buf.(*fakeHALBuffer); ok {
		fb.data = append([]byte(nil), data...)
	}
	return nil
}

// fakeSubmitter records forwarded draw calls.
type fakeSubmitter struct {
	calls []og.DrawCall
	err   error
}

func (s *fakeSubmitter) Submit(call og.DrawCall, vertices, orders, indexes hal.Buffer) error {
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, call)
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *fakeDevice, *fakeQueue) {
	t.Helper()
	device := &fakeDevice{}
	queue := &fakeQueue{}
	h, err := NewHandler(device, queue)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	return h, device, queue
}

// TestNewHandlerValidation verifies the nil-argument guards.
func TestNewHandlerValidation(t *testing.T) {
	if _, err := NewHandler(nil, &fakeQueue{}); !errors.Is(err, ErrNilDevice) {
		t.Errorf("NewHandler(nil device) error = %v, want ErrNilDevice", err)
	}
	if _, err := NewHandler(&fakeDevice{}, nil); !errors.Is(err, ErrNilQueue) {
		t.Errorf("NewHandler(nil queue) error = %v, want ErrNilQueue", err)
	}
}

// TestCreateVertexBuffer verifies descriptor contents and the uploaded
// byte encoding.
func TestCreateVertexBuffer(t *testing.T) {
	h, device, queue := newTestHandler(t)

	handle, err := h.CreateVertexBuffer([]float32{1, 2, 3, 4, 5, 6}, 3)
	if err != nil {
		t.Fatalf("CreateVertexBuffer() error = %v", err)
	}
	if handle == 0 {
		t.Fatal("handle is zero")
	}
	if h.BufferCount() != 1 || queue.writes != 1 {
		t.Errorf("buffers = %d, writes = %d, want 1/1", h.BufferCount(), queue.writes)
	}

	buf := device.created[0]
	if buf.size != 6*4 {
		t.Errorf("buffer size = %d, want 24", buf.size)
	}
	if want := gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst; buf.usage != want {
		t.Errorf("usage = %v, want %v", buf.usage, want)
	}
	// 1.0 little-endian is 00 00 80 3f.
	if got := buf.data[:4]; got[0] != 0 || got[1] != 0 || got[2] != 0x80 || got[3] != 0x3f {
		t.Errorf("encoded first float = % x, want 00 00 80 3f", got)
	}

	if _, err := h.CreateVertexBuffer(nil, 3); !errors.Is(err, ErrEmptyBuffer) {
		t.Errorf("CreateVertexBuffer(nil) error = %v, want ErrEmptyBuffer", err)
	}
}

// TestCreateIndexBuffer verifies usage flags and the index encoding.
func TestCreateIndexBuffer(t *testing.T) {
	h, device, _ := newTestHandler(t)

	if _, err := h.CreateIndexBuffer([]uint32{0, 1, 0x01020304}); err != nil {
		t.Fatalf("CreateIndexBuffer() error = %v", err)
	}
	buf := device.created[0]
	if want := gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst; buf.usage != want {
		t.Errorf("usage = %v, want %v", buf.usage, want)
	}
	if got := buf.data[8:12]; got[0] != 0x04 || got[1] != 0x03 || got[2] != 0x02 || got[3] != 0x01 {
		t.Errorf("encoded index = % x, want 04 03 02 01", got)
	}

	if _, err := h.CreateIndexBuffer(nil); !errors.Is(err, ErrEmptyBuffer) {
		t.Errorf("CreateIndexBuffer(nil) error = %v, want ErrEmptyBuffer", err)
	}
}

// TestDeleteBuffer verifies destruction and unknown-handle rejection.
func TestDeleteBuffer(t *testing.T) {
	h, device, _ := newTestHandler(t)

	handle, err := h.CreateVertexBuffer([]float32{1}, 1)
	if err != nil {
		t.Fatalf("CreateVertexBuffer() error = %v", err)
	}
	if err := h.DeleteBuffer(handle); err != nil {
		t.Fatalf("DeleteBuffer() error = %v", err)
	}
	if device.destroyed != 1 || !device.created[0].destroyed {
		t.Error("HAL buffer not destroyed")
	}
	if h.BufferCount() != 0 {
		t.Errorf("BufferCount() = %d, want 0", h.BufferCount())
	}

	if err := h.DeleteBuffer(handle); !errors.Is(err, ErrUnknownBuffer) {
		t.Errorf("double DeleteBuffer() error = %v, want ErrUnknownBuffer", err)
	}
	if err := h.DeleteBuffer(0); !errors.Is(err, ErrUnknownBuffer) {
		t.Errorf("DeleteBuffer(0) error = %v, want ErrUnknownBuffer", err)
	}
}

// TestDrawElements verifies call validation and forwarding to the
// submitter.
func TestDrawElements(t *testing.T) {
	h, _, _ := newTestHandler(t)

	vertices, _ := h.CreateVertexBuffer([]float32{1, 2, 3}, 3)
	orders, _ := h.CreateVertexBuffer([]float32{1}, 1)
	indexes, _ := h.CreateIndexBuffer([]uint32{0, 0, 0, 1})
	call := og.DrawCall{
		Vertices: vertices,
		Orders:   orders,
		Indexes:  indexes,
		Count:    4,
		Topology: og.TopologyTriangleStrip,
	}

	// No submitter installed yet.
	if err := h.DrawElements(call); !errors.Is(err, ErrNoSubmitter) {
		t.Fatalf("DrawElements() error = %v, want ErrNoSubmitter", err)
	}

	sub := &fakeSubmitter{}
	h.SetSubmitter(sub)
	if err := h.DrawElements(call); err != nil {
		t.Fatalf("DrawElements() error = %v", err)
	}
	if len(sub.calls) != 1 || sub.calls[0].Count != 4 {
		t.Errorf("submitted calls = %+v", sub.calls)
	}

	// Unknown handle.
	bad := call
	bad.Orders = 99
	if err := h.DrawElements(bad); !errors.Is(err, ErrUnknownBuffer) {
		t.Errorf("unknown orders error = %v, want ErrUnknownBuffer", err)
	}

	// A vertex buffer cannot serve as the index buffer.
	bad = call
	bad.Indexes = vertices
	if err := h.DrawElements(bad); !errors.Is(err, ErrUnknownBuffer) {
		t.Errorf("non-index handle error = %v, want ErrUnknownBuffer", err)
	}

	// Count beyond the index buffer.
	bad = call
	bad.Count = 5
	if err := h.DrawElements(bad); err == nil {
		t.Error("oversized count accepted")
	}
	bad.Count = 0
	if err := h.DrawElements(bad); err == nil {
		t.Error("zero count accepted")
	}

	// Submitter errors pass through.
	sub.err = errors.New("pipeline lost")
	if err := h.DrawElements(call); !errors.Is(err, sub.err) {
		t.Errorf("DrawElements() error = %v, want submitter error", err)
	}
}

// TestHandlerClose verifies that Close destroys the remaining buffers
// and latches the closed state.
func TestHandlerClose(t *testing.T) {
	h, device, _ := newTestHandler(t)

	if _, err := h.CreateVertexBuffer([]float32{1}, 1); err != nil {
		t.Fatalf("CreateVertexBuffer() error = %v", err)
	}
	if _, err := h.CreateIndexBuffer([]uint32{0}); err != nil {
		t.Fatalf("CreateIndexBuffer() error = %v", err)
	}

	h.Close()
	if device.destroyed != 2 {
		t.Errorf("destroyed = %d, want 2", device.destroyed)
	}
	if _, err := h.CreateVertexBuffer([]float32{1}, 1); !errors.Is(err, ErrHandlerClosed) {
		t.Errorf("create after Close error = %v, want ErrHandlerClosed", err)
	}
	if err := h.DeleteBuffer(1); !errors.Is(err, ErrHandlerClosed) {
		t.Errorf("delete after Close error = %v, want ErrHandlerClosed", err)
	}
	h.Close() // second close is safe
}

// TestCreateBufferFailure verifies that device failures surface and
// leave no tracked buffer behind.
func TestCreateBufferFailure(t *testing.T) {
	h, device, queue := newTestHandler(t)

	device.createErr = errors.New("out of device memory")
	if _, err := h.CreateVertexBuffer([]float32{1}, 1); !errors.Is(err, device.createErr) {
		t.Fatalf("CreateVertexBuffer() error = %v, want device error", err)
	}
	if h.BufferCount() != 0 || queue.writes != 0 {
		t.Errorf("buffers = %d, writes = %d after failure, want 0/0", h.BufferCount(), queue.writes)
	}
}

// TestWriteBufferFailure verifies that a failed upload destroys the
// freshly created HAL buffer and leaves the handler empty.
func TestWriteBufferFailure(t *testing.T) {
	h, device, queue := newTestHandler(t)

	queue.writeErr = errors.New("queue submission failed")
	if _, err := h.CreateVertexBuffer([]float32{1, 2, 3}, 3); !errors.Is(err, queue.writeErr) {
		t.Fatalf("CreateVertexBuffer() error = %v, want queue error", err)
	}
	if device.destroyed != 1 || !device.created[0].destroyed {
		t.Error("orphaned HAL buffer not destroyed after failed upload")
	}
	if h.BufferCount() != 0 {
		t.Errorf("BufferCount() = %d, want 0", h.BufferCount())
	}

	queue.writeErr = nil
	if _, err := h.CreateVertexBuffer([]float32{1}, 1); err != nil {
		t.Errorf("CreateVertexBuffer() after recovery error = %v", err)
	}
}

// TestNewHandlerFromProvider verifies the ecosystem provider bridge.
func TestNewHandlerFromProvider(t *testing.T) {
	if _, err := NewHandlerFromProvider(struct{}{}); !errors.Is(err, ErrNoHALProvider) {
		t.Errorf("NewHandlerFromProvider(struct{}{}) error = %v, want ErrNoHALProvider", err)
	}
	if _, err := NewHandlerFromProvider(badProvider{}); !errors.Is(err, ErrNoHALProvider) {
		t.Errorf("NewHandlerFromProvider(badProvider) error = %v, want ErrNoHALProvider", err)
	}
}

// badProvider exposes the provider methods but not HAL types.
type badProvider struct{}

func (badProvider) HalDevice() any { return 42 }
func (badProvider) HalQueue() any  { return 42 }
