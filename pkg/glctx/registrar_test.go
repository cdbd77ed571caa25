package glctx

import (
	"errors"
	"testing"
)

func TestRegistrar(t *testing.T) {
	r := NewRegistrar()

	for want := ID(0); want < 3; want++ {
		var seen ID
		id, err := r.register(func(id ID) error { seen = id; return nil })
		if err != nil || id != want || seen != want {
			t.Fatalf("register = %v (saw %v), %v, want %v", id, seen, err, want)
		}
	}

	if _, err := r.register(func(ID) error { return errors.New("nope") }); err == nil {
		t.Fatal("no error")
	}
	r.release(1)

	if got := r.Live(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("live = %v, want [0 2]", got)
	}
	id, _ := r.register(func(ID) error { return nil })
	if id != 3 {
		t.Errorf("id = %v, want 3", id)
	}
	if r.Len() != 3 {
		t.Errorf("len = %v", r.Len())
	}
}
