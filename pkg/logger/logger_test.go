package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false)
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if log.GetLevel() != InfoLevel {
		t.Errorf("level %v, want %v", log.GetLevel(), InfoLevel)
	}

	buf.Reset()
	New(&buf, true).Debug().Msg("debug")
	if !strings.Contains(buf.String(), `"level":"debug"`) {
		t.Errorf("no debug record in %q", buf.String())
	}
}

func TestExtend(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false)
	log.Extend(log.With().Str("m", "glctx")).Info().Msg("x")
	if !strings.Contains(buf.String(), `"m":"glctx"`) {
		t.Errorf("no module field in %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	Nop().Error().Msg("nothing")
}
