// Package opengl holds the GL calls the context layer needs: the per-thread
// function table, driver info and framebuffer objects for offscreen surfaces.
package opengl

import (
	"fmt"
	"unsafe"

	"github.com/giongto35/glctx/pkg/glctx"
	"github.com/go-gl/gl/v2.1/gl"
)

// Functions is the GL function table of a thread.
type Functions struct{}

// Load resolves the GL functions with the resolver of the current context.
// It's a glctx.FunctionLoader.
func Load(resolve func(name string) unsafe.Pointer) (glctx.Functions, error) {
	if err := gl.InitWithProcAddrFunc(resolve); err != nil {
		return nil, fmt.Errorf("opengl: %w", err)
	}
	return Functions{}, nil
}

func (Functions) Flush() { gl.Flush() }

func (Functions) Finish() { gl.Finish() }

// DriverInfo describes the GL implementation of the current context.
type DriverInfo struct {
	Version string
	Vendor  string
	// This string is often the name of the GPU.
	// In the case of Mesa3d, it would be i.e "Gallium 0.4 on NVA8".
	// It might even say "Direct3D" if the Windows Direct3D wrapper is being used.
	Renderer string
	GLSL     string
}

func (i DriverInfo) String() string {
	return fmt.Sprintf("%v (%v, %v), GLSL %v", i.Version, i.Vendor, i.Renderer, i.GLSL)
}

// Info reads the driver info. Functions must be loaded.
func Info() DriverInfo {
	return DriverInfo{
		Version:  get(gl.VERSION),
		Vendor:   get(gl.VENDOR),
		Renderer: get(gl.RENDERER),
		GLSL:     get(gl.SHADING_LANGUAGE_VERSION),
	}
}

func get(name uint32) string { return gl.GoStr(gl.GetString(name)) }

type framebuffer struct {
	tex uint32
	rbo uint32
}

// Framebuffers allocates framebuffer objects with an RGBA8 color texture and
// an optional depth (and stencil) renderbuffer. It's a glctx.FramebufferAllocator.
//
// All calls must be made with the owning context current.
type Framebuffers struct {
	fbs map[uint32]framebuffer
}

func NewFramebuffers() *Framebuffers { return &Framebuffers{fbs: make(map[uint32]framebuffer)} }

func (f *Framebuffers) CreateFramebuffer(w, h int, depth, stencil bool) (uint32, error) {
	var fb framebuffer
	var fbo uint32

	gl.GenTextures(1, &fb.tex)
	gl.BindTexture(gl.TEXTURE_2D, fb.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fb.tex, 0)

	if depth {
		gl.GenRenderbuffers(1, &fb.rbo)
		gl.BindRenderbuffer(gl.RENDERBUFFER, fb.rbo)
		if stencil {
			gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, int32(w), int32(h))
			gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, fb.rbo)
		} else {
			gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(w), int32(h))
			gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, fb.rbo)
		}
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		e := gl.GetError()
		f.destroy(fbo, fb)
		return 0, fmt.Errorf("opengl: framebuffer status 0x%X, GL error 0x%X", status, e)
	}
	f.fbs[fbo] = fb
	return fbo, nil
}

func (f *Framebuffers) DeleteFramebuffer(fbo uint32) {
	fb, ok := f.fbs[fbo]
	if !ok {
		return
	}
	delete(f.fbs, fbo)
	f.destroy(fbo, fb)
}

func (f *Framebuffers) destroy(fbo uint32, fb framebuffer) {
	if fb.rbo != 0 {
		gl.DeleteRenderbuffers(1, &fb.rbo)
	}
	gl.DeleteFramebuffers(1, &fbo)
	gl.DeleteTextures(1, &fb.tex)
}

// ReadPixels reads the RGBA pixels of a framebuffer.
func ReadPixels(fbo uint32, w, h int) []byte {
	data := make([]byte, w*h*4)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&data[0]))
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return data
}

// Clear fills the framebuffer with a color.
func Clear(fbo uint32, r, g, b, a float32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Error returns the last GL error.
func Error() uint32 { return gl.GetError() }
