package native

import (
	"reflect"
	"testing"
)

func TestProfileFor(t *testing.T) {
	tests := []struct {
		major uint8
		want  Attribute
	}{
		{0, ProfileLegacy},
		{1, ProfileLegacy},
		{2, ProfileLegacy},
		{3, Profile32Core},
		{4, ProfileGL4},
		{9, ProfileGL4},
	}
	for _, test := range tests {
		if got := ProfileFor(test.major); got != test.want {
			t.Errorf("ProfileFor(%v) = %#x, want %#x", test.major, got, test.want)
		}
	}
}

func TestProfileVersion(t *testing.T) {
	tests := []struct {
		profile      Attribute
		major, minor uint8
	}{
		{ProfileLegacy, 1, 0},
		{Profile32Core, 3, 2},
		{ProfileGL4, 4, 1},
	}
	for _, test := range tests {
		major, minor := ProfileVersion(test.profile)
		if major != test.major || minor != test.minor {
			t.Errorf("ProfileVersion(%#x) = %v.%v, want %v.%v", test.profile, major, minor, test.major, test.minor)
		}
	}
}

func TestPairs(t *testing.T) {
	tests := []struct {
		name  string
		attrs []Attribute
		want  map[Attribute]Attribute
	}{
		{name: "empty", attrs: nil, want: map[Attribute]Attribute{}},
		{
			name:  "pairs",
			attrs: []Attribute{AttrOpenGLProfile, Profile32Core, AttrDepthSize, 24, AttrEnd, AttrEnd},
			want:  map[Attribute]Attribute{AttrOpenGLProfile: Profile32Core, AttrDepthSize: 24},
		},
		{
			name:  "flag key",
			attrs: []Attribute{AttrAlphaSize, 8, AttrAllowOfflineRenderers, AttrStencilSize, 0, AttrEnd},
			want:  map[Attribute]Attribute{AttrAlphaSize: 8, AttrAllowOfflineRenderers: 1, AttrStencilSize: 0},
		},
		{
			name:  "stops at end",
			attrs: []Attribute{AttrAlphaSize, 8, AttrEnd, AttrDepthSize, 24},
			want:  map[Attribute]Attribute{AttrAlphaSize: 8},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Pairs(test.attrs); !reflect.DeepEqual(got, test.want) {
				t.Errorf("Pairs() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{Op: "create context", Code: 10002}
	if got, want := err.Error(), "create context: native error 0x2712"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	err.Msg = "invalid pixel format"
	if got, want := err.Error(), "create context: native error 0x2712 (invalid pixel format)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
