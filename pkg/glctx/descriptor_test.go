package glctx

import (
	"errors"
	"runtime"
	"testing"

	"github.com/giongto35/glctx/pkg/native"
	"github.com/giongto35/glctx/pkg/native/fake"
)

func TestContextDescriptorAttributes(t *testing.T) {
	tests := []struct {
		version GLVersion
		want    GLVersion
	}{
		{version: GLVersion{1, 0}, want: GLVersion{1, 0}},
		{version: GLVersion{2, 1}, want: GLVersion{1, 0}},
		{version: GLVersion{3, 0}, want: GLVersion{3, 2}},
		{version: GLVersion{3, 2}, want: GLVersion{3, 2}},
		{version: GLVersion{3, 3}, want: GLVersion{3, 2}},
		{version: GLVersion{4, 0}, want: GLVersion{4, 1}},
		{version: GLVersion{4, 6}, want: GLVersion{4, 1}},
		{version: GLVersion{5, 0}, want: GLVersion{4, 1}},
	}
	env := newTestEnv(t)
	for _, tt := range tests {
		for flags := ContextAttributeFlags(0); flags <= Alpha|Depth|Stencil; flags++ {
			attrs := ContextAttributes{Version: tt.version, Flags: flags}
			t.Run(attrs.String(), func(t *testing.T) {
				d := env.descriptor(t, attrs)
				defer d.Release()

				got := env.dev.ContextDescriptorAttributes(d)
				if got.Flags != flags {
					t.Errorf("flags = %v, want %v", got.Flags, flags)
				}
				if got.Version != tt.want {
					t.Errorf("version = %v, want %v", got.Version, tt.want)
				}
			})
		}
	}
}

func TestCreateContextDescriptorBufferSizes(t *testing.T) {
	env := newTestEnv(t)
	d := env.descriptor(t, ContextAttributes{Version: GLVersion{4, 1}, Flags: Alpha | Depth | Stencil})
	defer d.Release()

	got := native.Pairs(env.api.LastChosen)
	want := map[native.Attribute]native.Attribute{
		native.AttrOpenGLProfile: native.ProfileGL4,
		native.AttrAlphaSize:     8,
		native.AttrDepthSize:     24,
		native.AttrStencilSize:   8,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("attribute %v = %v, want %v", k, got[k], v)
		}
	}
	if _, ok := got[native.AttrAllowOfflineRenderers]; ok {
		t.Errorf("offline renderers requested on a high power adapter")
	}
	n := len(env.api.LastChosen)
	if n < 2 || env.api.LastChosen[n-1] != native.AttrEnd || env.api.LastChosen[n-2] != native.AttrEnd {
		t.Errorf("attribute list is not terminated: %v", env.api.LastChosen)
	}
}

func TestCreateContextDescriptorLowPower(t *testing.T) {
	env := newTestEnv(t, WithLowPower(true))
	d := env.descriptor(t, ContextAttributes{Version: GLVersion{3, 2}})
	defer d.Release()

	if _, ok := native.Pairs(env.api.LastChosen)[native.AttrAllowOfflineRenderers]; !ok {
		t.Errorf("offline renderers not requested on a low power adapter: %v", env.api.LastChosen)
	}
}

func TestCreateContextDescriptorErrors(t *testing.T) {
	env := newTestEnv(t)

	env.api.ChooseErr = &native.Error{Op: "choose pixel format", Code: 10002}
	_, err := env.dev.CreateContextDescriptor(ContextAttributes{})
	if !errors.Is(err, ErrPixelFormatSelectionFailed) {
		t.Errorf("err = %v, want %v", err, ErrPixelFormatSelectionFailed)
	}
	var nerr *native.Error
	if !errors.As(err, &nerr) || nerr.Code != 10002 {
		t.Errorf("native error code is lost: %v", err)
	}

	env.api.ChooseErr = nil
	env.api.NoMatch = true
	if _, err = env.dev.CreateContextDescriptor(ContextAttributes{}); !errors.Is(err, ErrNoPixelFormatFound) {
		t.Errorf("err = %v, want %v", err, ErrNoPixelFormatFound)
	}
}

func TestContextDescriptorRefCount(t *testing.T) {
	env := newTestEnv(t)
	d := env.descriptor(t, ContextAttributes{})
	pf := d.PixelFormat()

	clone := d.Clone()
	if clone.PixelFormat() != pf {
		t.Fatalf("clone has a different pixel format")
	}
	if refs := env.api.Refs(pf); refs != 2 {
		t.Errorf("refs = %v after clone, want 2", refs)
	}
	d.Release()
	d.Release()
	if refs := env.api.Refs(pf); refs != 1 {
		t.Errorf("refs = %v after double release, want 1", refs)
	}
	// a released descriptor's clone is still usable
	if got := env.dev.ContextDescriptorAttributes(clone); got.Version != (GLVersion{1, 0}) {
		t.Errorf("clone attributes = %v", got)
	}
	clone.Release()
	if refs := env.api.Refs(pf); refs != 0 {
		t.Errorf("refs = %v, want 0", refs)
	}
}

func TestCloneOfReleasedDescriptorPanics(t *testing.T) {
	env := newTestEnv(t)
	d := env.descriptor(t, ContextAttributes{})
	d.Release()

	defer func() {
		if recover() == nil {
			t.Errorf("no panic")
		}
	}()
	d.Clone()
}

func TestContextDescriptorOfContext(t *testing.T) {
	env := newTestEnv(t)
	d := env.descriptor(t, ContextAttributes{Version: GLVersion{4, 1}, Flags: Alpha | Stencil})
	c, err := env.dev.CreateContext(d)
	if err != nil {
		t.Fatal(err)
	}
	defer env.destroy(t, c)

	got := env.dev.ContextDescriptor(c)
	defer got.Release()
	if got.PixelFormat() != d.PixelFormat() {
		t.Errorf("pixel format = %#x, want %#x", got.PixelFormat(), d.PixelFormat())
	}
	d.Release()
	// held by the context and the returned descriptor
	if refs := env.api.Refs(got.PixelFormat()); refs != 2 {
		t.Errorf("refs = %v, want 2", refs)
	}
	if attrs := env.dev.ContextDescriptorAttributes(got); attrs.Flags != Alpha|Stencil {
		t.Errorf("flags = %v", attrs.Flags)
	}
}

// collectingAPI runs the GC inside the native calls that take a pixel format.
type collectingAPI struct{ *fake.API }

func collect() {
	runtime.GC()
	runtime.GC()
	runtime.Gosched()
}

func (a collectingAPI) DescribePixelFormat(pf native.PixelFormat, attr native.Attribute) (int32, error) {
	collect()
	return a.API.DescribePixelFormat(pf, attr)
}

func (a collectingAPI) CreateContext(pf native.PixelFormat) (native.Handle, error) {
	collect()
	return a.API.CreateContext(pf)
}

func (a collectingAPI) RetainPixelFormat(pf native.PixelFormat) native.PixelFormat {
	collect()
	return a.API.RetainPixelFormat(pf)
}

func TestUnreferencedDescriptorSurvivesNativeCalls(t *testing.T) {
	env := newWrappedTestEnv(t, func(api *fake.API) native.API { return collectingAPI{api} })
	attrs := ContextAttributes{Version: GLVersion{3, 2}, Flags: Alpha | Depth | Stencil}

	for i := 0; i < 20; i++ {
		desc, err := env.dev.CreateContextDescriptor(attrs)
		if err != nil {
			t.Fatal(err)
		}
		if got := env.dev.ContextDescriptorAttributes(desc); got != attrs {
			t.Fatalf("round %v: attributes = %v, want %v", i, got, attrs)
		}

		desc, err = env.dev.CreateContextDescriptor(attrs)
		if err != nil {
			t.Fatal(err)
		}
		clone := desc.Clone()
		if env.api.Refs(clone.PixelFormat()) == 0 {
			t.Fatalf("round %v: clone of a collected descriptor", i)
		}
		c, err := env.dev.CreateContext(clone)
		if err != nil {
			t.Fatalf("round %v: %v", i, err)
		}
		if got := env.dev.ContextDescriptorAttributes(env.dev.ContextDescriptor(c)); got != attrs {
			t.Errorf("round %v: attributes of the context = %v, want %v", i, got, attrs)
		}
		env.destroy(t, c)
	}
}
