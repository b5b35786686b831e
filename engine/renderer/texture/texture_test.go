package texture

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/anima-render/engine/renderer/gfx/record"
	"github.com/spaghettifunk/anima-render/engine/renderer/palette"
)

func TestSolidColor(t *testing.T) {
	f := record.NewFactory()
	tex, err := SolidColor(f, 0, palette.White)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width != 1 || tex.Height != 1 || tex.View == 0 {
		t.Fatalf("texture = %+v", tex)
	}
	tex.Dispose(f)
	if f.Leaks() != 0 {
		t.Fatalf("Leaks() = %d", f.Leaks())
	}
}

func TestLoadErrors(t *testing.T) {
	f := record.NewFactory()
	if _, err := Load(f, 0, 2, 2, make([]byte, 4)); err == nil {
		t.Fatal("expected size mismatch error")
	}
	boom := errors.New("device lost")
	f.FailOn(record.KindTexture, boom)
	if _, err := Load(f, 0, 1, 1, make([]byte, 4)); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped device lost", err)
	}
}

func TestUnorm8(t *testing.T) {
	tests := []struct {
		in   float32
		want byte
	}{
		{0, 0}, {1, 255}, {0.5, 128},
	}
	for _, tt := range tests {
		if got := unorm8(tt.in); got != tt.want {
			t.Errorf("unorm8(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
