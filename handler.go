package og

import "errors"

// Rendering errors.
var (
	// ErrDetached is returned when a GPU operation is requested before
	// a render handler has been attached.
	ErrDetached = errors.New("og: no render handler attached")

	// ErrInvalidPath is returned when a path is too short or malformed.
	ErrInvalidPath = errors.New("og: path must contain at least 2 points")
)

// BufferHandle identifies a GPU buffer owned by a Handler.
// The zero value is never a valid handle.
type BufferHandle uint64

// Topology selects the primitive topology of a draw call.
type Topology uint8

const (
	// TopologyTriangleStrip draws indexed triangle strips. Polyline
	// meshes rely on repeated indices to break strips between rings.
	TopologyTriangleStrip Topology = iota

	// TopologyTriangles draws plain indexed triangle lists.
	TopologyTriangles
)

// String returns the string representation of the topology.
func (t Topology) String() string {
	switch t {
	case TopologyTriangleStrip:
		return "TriangleStrip"
	case TopologyTriangles:
		return "Triangles"
	default:
		return "Unknown"
	}
}

// DrawCall carries everything a host pipeline needs to issue one
// polyline draw: the three mesh buffers, the index count and the
// per-entity shading parameters. Shader and pipeline selection stay
// on the host side.
type DrawCall struct {
	// Vertices holds duplicated 3-component positions.
	Vertices BufferHandle

	// Orders holds one extrusion order tag per vertex.
	Orders BufferHandle

	// Indexes is the triangle-strip index buffer.
	Indexes BufferHandle

	// Count is the number of indices to draw.
	Count int

	// Topology is the primitive topology, TopologyTriangleStrip for lines.
	Topology Topology

	// Thickness is the line thickness in screen pixels.
	Thickness float64

	// Color is the RGBA draw color. For picking passes it carries the
	// solid picking color with full alpha.
	Color [4]float32

	// Picking selects the solid-fill picking variant of the shader.
	Picking bool

	// Blending enables alpha blending. Off for picking passes.
	Blending bool

	// Culling enables back-face culling. Off for picking passes.
	Culling bool
}

// Handler is the GPU buffer service a render context supplies to the
// core. The webgl package provides an implementation over gogpu/wgpu;
// tests use in-process fakes.
type Handler interface {
	// CreateVertexBuffer uploads float data as a vertex buffer with the
	// given component count per vertex.
	CreateVertexBuffer(data []float32, itemSize int) (BufferHandle, error)

	// CreateIndexBuffer uploads index data as an index buffer.
	CreateIndexBuffer(data []uint32) (BufferHandle, error)

	// DeleteBuffer releases a buffer created by this handler.
	DeleteBuffer(h BufferHandle) error

	// DrawElements issues one indexed draw.
	DrawElements(call DrawCall) error
}

// ResourceState tracks the lifecycle of one GPU-backed resource.
// Mutations move a resource to ResourceDirty; the next draw rebuilds it
// and moves it to ResourceClean. Detach moves it back to ResourceDetached.
type ResourceState uint8

const (
	// ResourceDetached means no render handler is attached and no GPU
	// handle exists.
	ResourceDetached ResourceState = iota

	// ResourceDirty means CPU-side data changed and the GPU buffer must
	// be rebuilt before the next draw.
	ResourceDirty

	// ResourceClean means the GPU buffer matches the CPU-side data.
	ResourceClean
)

// String returns the string representation of the resource state.
func (s ResourceState) String() string {
	switch s {
	case ResourceDetached:
		return "Detached"
	case ResourceDirty:
		return "Dirty"
	case ResourceClean:
		return "Clean"
	default:
		return "Unknown"
	}
}
