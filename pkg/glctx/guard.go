package glctx

import (
	"github.com/giongto35/glctx/pkg/logger"
	"github.com/giongto35/glctx/pkg/native"
)

// CurrentContextGuard restores the context that was current on the thread
// when it was made.
//
//	g, err := dev.TemporarilyMakeContextCurrent(c)
//	if err != nil {
//		return err
//	}
//	defer g.Release()
type CurrentContextGuard struct {
	api  native.API
	log  *logger.Logger
	prev native.Handle
	done bool
}

func newCurrentContextGuard(api native.API, log *logger.Logger) *CurrentContextGuard {
	return &CurrentContextGuard{api: api, log: log, prev: api.Current()}
}

// Release makes the saved context current again. Only the first call counts.
func (g *CurrentContextGuard) Release() error {
	if g.done {
		return nil
	}
	g.done = true
	if err := g.api.SetCurrent(g.prev); err != nil {
		g.log.Warn().Err(err).Msgf("couldn't restore the current context %#x", uintptr(g.prev))
		return err
	}
	return nil
}
