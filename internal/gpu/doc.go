// Package gpu implements the GPU-resident video plane pipeline.
//
// This is an internal package used by the video library. It keeps decoded
// YUV420 frames on the GPU and draws them as textured planes via the
// gogpu/wgpu Pure Go WebGPU implementation (zero CGO), which supports
// Vulkan, Metal, and DX12 backends depending on the platform.
//
// # Architecture Overview
//
// One Pipeline is shared by every concurrently playing video:
//
//	Upload (frame bytes -> luma/chroma textures)
//	  -> Prepare (destination rect -> uniform buffer, then sweep)
//	  -> Draw (bind per-video group, one 4-vertex strip)
//
// Key components:
//
//   - Pipeline: shared render pipeline, bind group layout, sampler, and
//     the per-video entry cache
//   - videoEntry: per-video GPU bundle (two textures, rect uniform,
//     bind group, borrowed liveness flag)
//   - Sweep: opportunistic reclamation of entries whose producer died
//
// # Resource Lifetime
//
// Entries are created lazily on the first upload for an id and destroyed
// exactly once by the sweep, which runs inside Prepare — never concurrently
// with Draw. The producer signals teardown through the shared liveness
// flag; no explicit close call crosses the render path.
//
// # Thread Safety
//
// A Pipeline is owned by the consumer (render) schedule and is not safe for
// concurrent use. The only cross-schedule state it touches are the frame
// buffer lock (held for the duration of the texture copy) and the atomic
// liveness flags.
//
// # Error Handling
//
// Allocation failure is treated as device loss and surfaced as an
// unrecoverable error. Contract violations follow the caller-bug policy:
//
//   - ErrFrameSize: frame bytes do not match the upload dimensions
//   - ErrDimensionMismatch: upload dimensions changed for a cached id
//   - Draw/WriteRect on an unknown id: silent no-op
//
// # Related Packages
//
//   - github.com/gogpu/video: producer handles and the two-phase render op
//   - github.com/gogpu/wgpu: Pure Go WebGPU implementation
package gpu
