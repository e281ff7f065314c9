// Package webgl implements the og.Handler GPU buffer service over
// gogpu/wgpu. It is named after the subsystem it replaces in the
// original browser engine.
//
// The handler never creates a GPU device: the host application owns
// the device, the shader pipelines and the draw loop, and hands its
// hal.Device and hal.Queue (or a provider exposing them) to NewHandler.
// Draw calls are validated here and forwarded to a host-installed
// DrawSubmitter, since pipeline selection stays on the host side.
package webgl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	og "github.com/anhaabaete/openglobus"
)

// Handler errors.
var (
	// ErrNilDevice is returned when the handler is created without a device.
	ErrNilDevice = errors.New("webgl: device is nil")

	// ErrNilQueue is returned when the handler is created without a queue.
	ErrNilQueue = errors.New("webgl: queue is nil")

	// ErrHandlerClosed is returned when operating on a closed handler.
	ErrHandlerClosed = errors.New("webgl: handler is closed")

	// ErrEmptyBuffer is returned when creating a buffer from no data.
	ErrEmptyBuffer = errors.New("webgl: buffer data is empty")

	// ErrUnknownBuffer is returned when a handle does not belong to
	// this handler or was already deleted.
	ErrUnknownBuffer = errors.New("webgl: unknown buffer handle")

	// ErrNoSubmitter is returned when a draw is issued before the host
	// installed a DrawSubmitter.
	ErrNoSubmitter = errors.New("webgl: no draw submitter installed")

	// ErrNoHALProvider is returned when a provider does not expose HAL
	// device and queue handles.
	ErrNoHALProvider = errors.New("webgl: provider does not expose HAL types")
)

// Device is the subset of hal.Device the handler uses.
type Device interface {
	CreateBuffer(*hal.BufferDescriptor) (hal.Buffer, error)
	DestroyBuffer(hal.Buffer)
}

// Queue is the subset of hal.Queue the handler uses.
type Queue interface {
	WriteBuffer(buf hal.Buffer, offset uint64, data []byte) error
}

// DrawSubmitter executes one validated draw call against the host's
// render pipeline. The three buffers are the live HAL handles behind
// the call's vertex, order and index buffer handles.
type DrawSubmitter interface {
	Submit(call og.DrawCall, vertices, orders, indexes hal.Buffer) error
}

// bufferEntry tracks one live GPU buffer.
type bufferEntry struct {
	buf      hal.Buffer
	size     uint64
	itemSize int
	index    bool
}

// Handler is the gogpu/wgpu-backed implementation of og.Handler.
// It owns the buffers it creates and destroys any that remain on Close.
//
// Handler is safe for concurrent use.
type Handler struct {
	mu sync.Mutex

	device    Device
	queue     Queue
	submitter DrawSubmitter

	buffers map[og.BufferHandle]bufferEntry
	next    uint64

	closed bool
}

var _ og.Handler = (*Handler)(nil)

// NewHandler creates a handler over a host-owned device and queue.
func NewHandler(device Device, queue Queue) (*Handler, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if queue == nil {
		return nil, ErrNilQueue
	}
	return &Handler{
		device:  device,
		queue:   queue,
		buffers: make(map[og.BufferHandle]bufferEntry),
	}, nil
}

// NewHandlerFromProvider creates a handler from a host provider that
// exposes HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue, the convention GPU frameworks in the gogpu ecosystem use
// for sharing a device.
func NewHandlerFromProvider(provider any) (*Handler, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALProvider)
	}
	return NewHandler(device, queue)
}

// SetSubmitter installs the host's draw executor. Passing nil uninstalls
// it, after which draws fail with ErrNoSubmitter.
func (h *Handler) SetSubmitter(s DrawSubmitter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.submitter = s
}

// CreateVertexBuffer uploads float data as a vertex buffer with the
// given component count per vertex.
func (h *Handler) CreateVertexBuffer(data []float32, itemSize int) (og.BufferHandle, error) {
	if len(data) == 0 {
		return 0, ErrEmptyBuffer
	}
	return h.createBuffer(floatBytes(data),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst,
		"og_vertex_buffer", itemSize, false)
}

// CreateIndexBuffer uploads index data as an index buffer.
func (h *Handler) CreateIndexBuffer(data []uint32) (og.BufferHandle, error) {
	if len(data) == 0 {
		return 0, ErrEmptyBuffer
	}
	return h.createBuffer(uint32Bytes(data),
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst,
		"og_index_buffer", 1, true)
}

func (h *Handler) createBuffer(data []byte, usage gputypes.BufferUsage, label string, itemSize int, index bool) (og.BufferHandle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0, ErrHandlerClosed
	}

	buf, err := h.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return 0, fmt.Errorf("webgl: create %s: %w", label, err)
	}
	if err := h.queue.WriteBuffer(buf, 0, data); err != nil {
		h.device.DestroyBuffer(buf)
		return 0, fmt.Errorf("webgl: upload %s: %w", label, err)
	}

	h.next++
	handle := og.BufferHandle(h.next)
	h.buffers[handle] = bufferEntry{
		buf:      buf,
		size:     uint64(len(data)),
		itemSize: itemSize,
		index:    index,
	}

	og.Logger().Debug("webgl: buffer created",
		"handle", uint64(handle), "bytes", len(data), "index", index)
	return handle, nil
}

// DeleteBuffer destroys a buffer created by this handler.
func (h *Handler) DeleteBuffer(handle og.BufferHandle) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHandlerClosed
	}
	entry, ok := h.buffers[handle]
	if !ok {
		return ErrUnknownBuffer
	}
	h.device.DestroyBuffer(entry.buf)
	delete(h.buffers, handle)
	return nil
}

// DrawElements validates the draw call and forwards it to the host's
// DrawSubmitter.
func (h *Handler) DrawElements(call og.DrawCall) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHandlerClosed
	}
	vertices, ok := h.buffers[call.Vertices]
	if !ok {
		return fmt.Errorf("%w: vertices", ErrUnknownBuffer)
	}
	orders, ok := h.buffers[call.Orders]
	if !ok {
		return fmt.Errorf("%w: orders", ErrUnknownBuffer)
	}
	indexes, ok := h.buffers[call.Indexes]
	if !ok {
		return fmt.Errorf("%w: indexes", ErrUnknownBuffer)
	}
	if !indexes.index {
		return fmt.Errorf("%w: handle %d is not an index buffer", ErrUnknownBuffer, call.Indexes)
	}
	if call.Count <= 0 || uint64(call.Count)*4 > indexes.size {
		return fmt.Errorf("webgl: draw count %d exceeds index buffer", call.Count)
	}
	if h.submitter == nil {
		return ErrNoSubmitter
	}
	return h.submitter.Submit(call, vertices.buf, orders.buf, indexes.buf)
}

// BufferCount returns the number of live buffers, for diagnostics.
func (h *Handler) BufferCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.buffers)
}

// Close destroys every remaining buffer. Close is idempotent; a closed
// handler rejects further operations.
func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	for handle, entry := range h.buffers {
		h.device.DestroyBuffer(entry.buf)
		delete(h.buffers, handle)
	}
	h.closed = true
}

// floatBytes encodes float32 data as little-endian bytes for upload.
func floatBytes(data []float32) []byte {
	out := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// uint32Bytes encodes index data as little-endian bytes for upload.
func uint32Bytes(data []uint32) []byte {
	out := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}
