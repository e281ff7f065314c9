// Package og implements the rendering core of a 3D globe engine.
//
// # Overview
//
// og provides the two geometry-heavy building blocks of a globe renderer:
// polyline tessellation for screen-space thick line strips, and a texture
// atlas that packs arbitrary images into one square GPU texture.
//
// Paths are supplied either as cartesian points (Vec3) or as geodetic
// coordinates (LonLat); the Ellipsoid converts between the two and derives
// the web-mercator projection consumers like picking and extent queries need.
//
// # Quick Start
//
//	import og "github.com/anhaabaete/openglobus"
//
//	pl := og.NewPolyline(og.PolylineConfig{Thickness: 2.5})
//	pl.Attach(handler, og.WGS84)
//	pl.SetPathLonLat([][]og.LonLat{{
//	    og.NewLonLat(-5.6, 51.2, 0),
//	    og.NewLonLat(2.1, 48.5, 0),
//	}}, false)
//	pl.Draw()
//
// # Architecture
//
// The library is organized into:
//   - Public API: Polyline, PolylineCollection, TextureAtlas, Ellipsoid,
//     Vec3, LonLat, Extent
//   - Internal: binpack (atlas node arena), canvas (atlas rasterization)
//   - GPU binding: webgl (buffer service over gogpu/wgpu)
//
// # GPU Model
//
// og never creates a GPU device. The host application owns the device,
// the shader pipelines and the draw loop; og produces vertex, order and
// index buffers and hands draw calls to a host-provided Handler. Buffer
// rebuilds are lazy: mutations mark resources dirty and the next Draw
// resolves them.
//
// # Concurrency
//
// The core is single-threaded by design: polylines, collections and
// atlases belong to the rendering thread of their scene. Only SetLogger
// and the webgl handler's buffer table are safe for concurrent use.
package og
