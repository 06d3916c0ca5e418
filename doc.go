// Package video presents decoded video frames as textured planes inside a
// GoGPU render surface.
//
// # Overview
//
// video sits between a frame producer (a decoder running on its own
// goroutine) and a host render loop. The producer writes YUV420 planar
// frames into a shared FrameBuffer; the host's redraw path detects new
// frames by generation comparison and drives a two-phase render operation
// that uploads, lays out, and draws the plane. Any number of concurrently
// playing videos share one GPU pipeline object; per-video textures, uniform
// buffers, and bind groups are cached by id and reclaimed automatically once
// the owning Video is closed.
//
// # Quick Start
//
//	v, _ := video.NewVideo(1280, 720)
//	player := video.NewPlayer(v)
//	op := video.NewRenderOp()
//
//	// Decoder goroutine:
//	v.PushFrame(frameBytes) // YUV420 planar, len = video.FrameSize(w, h)
//
//	// Host redraw path (once per pass):
//	prim := player.Primitive(bounds)
//	prepared, _ := op.Prepare(gfx, prim)
//	op.Render(pass, prepared)
//
//	// Teardown:
//	v.Close() // plane resources are swept on the next prepare
//
// # Architecture
//
// The library is organized into:
//   - Public API: Video, Player, FrameBuffer, RenderOp, Graphics
//   - Internal: gpu (shared pipeline, per-video texture cache, YUV shader)
//
// The GPU core receives its device from the host; it never creates one.
package video
