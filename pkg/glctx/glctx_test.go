package glctx

import (
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/giongto35/glctx/pkg/logger"
	"github.com/giongto35/glctx/pkg/native"
	"github.com/giongto35/glctx/pkg/native/fake"
)

type testFunctions struct {
	flushes atomic.Int32
}

func (f *testFunctions) Flush() { f.flushes.Add(1) }

type testEnv struct {
	api   *fake.API
	conn  *Connection
	dev   *Device
	fns   *testFunctions
	loads atomic.Int32
	off   *Offscreen
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	return newWrappedTestEnv(t, func(api *fake.API) native.API { return api }, opts...)
}

// newWrappedTestEnv opens the connection over wrap(fake API).
func newWrappedTestEnv(t *testing.T, wrap func(*fake.API) native.API, opts ...Option) *testEnv {
	t.Helper()
	env := &testEnv{api: fake.New(), fns: &testFunctions{}, off: NewOffscreen(nil)}
	loader := func(func(string) unsafe.Pointer) (Functions, error) {
		env.loads.Add(1)
		return env.fns, nil
	}
	opts = append([]Option{
		WithRegistrar(NewRegistrar()),
		WithFunctionLoader(loader),
		WithSurfaces(env.off),
		WithLogger(logger.Nop()),
		WithLeakHandler(func(ID) {}),
	}, opts...)
	conn, err := NewConnection(wrap(env.api), opts...)
	if err != nil {
		t.Fatal(err)
	}
	a, err := conn.CreateAdapter()
	if err != nil {
		t.Fatal(err)
	}
	dev, err := conn.CreateDevice(a)
	if err != nil {
		t.Fatal(err)
	}
	env.conn, env.dev = conn, dev
	return env
}

func (env *testEnv) descriptor(t *testing.T, attrs ContextAttributes) *ContextDescriptor {
	t.Helper()
	d, err := env.dev.CreateContextDescriptor(attrs)
	if err != nil {
		t.Fatalf("descriptor: %v", err)
	}
	return d
}

func (env *testEnv) context(t *testing.T) *Context {
	t.Helper()
	d := env.descriptor(t, ContextAttributes{Version: GLVersion{3, 2}, Flags: Depth})
	defer d.Release()
	c, err := env.dev.CreateContext(d)
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	return c
}

func (env *testEnv) destroy(t *testing.T, c *Context) {
	t.Helper()
	if err := env.dev.DestroyContext(c); err != nil {
		t.Errorf("destroy: %v", err)
	}
}

func unsafePointer(b *byte) unsafe.Pointer { return unsafe.Pointer(b) }
