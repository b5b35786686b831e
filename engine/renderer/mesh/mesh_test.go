package mesh

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima-render/engine/renderer/gfx/record"
	"github.com/spaghettifunk/anima-render/engine/renderer/vertex"
)

func triangle() *Builder {
	return NewBuilder().
		WithPositions([]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}).
		WithNormals([]mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}).
		WithTexCoords([]mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}})
}

func TestBuildUploadsEveryStream(t *testing.T) {
	f := record.NewFactory()
	m, err := triangle().Build(f, 0)
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 3 {
		t.Fatalf("Len() = %d", m.Len())
	}
	for _, s := range vertex.Base {
		b, ok := m.Buffer(s)
		if !ok {
			t.Fatalf("missing %s buffer", s)
		}
		if got := len(f.BufferData(b)); got != int(3*s.Size()) {
			t.Errorf("%s buffer is %d bytes, want %d", s, got, 3*s.Size())
		}
	}
	if m.Has(vertex.JointIds) {
		t.Error("unexpected joint buffer")
	}

	m.Dispose(f)
	if f.Leaks() != 0 {
		t.Fatalf("Leaks() = %d after dispose", f.Leaks())
	}
}

func TestBuildRejectsMismatchedStreams(t *testing.T) {
	f := record.NewFactory()
	_, err := triangle().WithTexCoords([]mgl32.Vec2{{0, 0}}).Build(f, 0)
	if err == nil {
		t.Fatal("expected error for mismatched streams")
	}
	if f.Created(record.KindBuffer) != 0 {
		t.Fatal("buffers uploaded for an invalid mesh")
	}
}

func TestBuildReleasesOnUploadFailure(t *testing.T) {
	f := record.NewFactory()
	m, err := NewBuilder().WithPositions([]mgl32.Vec3{{0, 0, 0}}).Build(f, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Dispose(f)

	boom := errors.New("out of memory")
	f.FailAfter(record.KindBuffer, 2, boom)
	if _, err := triangle().Build(f, 0); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if got := f.Destroyed(record.KindBuffer); got != 2 {
		t.Fatalf("destroyed buffers = %d, want the two uploaded streams", got)
	}
	if got := f.Live(record.KindBuffer); got != 1 {
		t.Fatalf("live buffers = %d, want only the first mesh", got)
	}
}

func TestBindMissingStream(t *testing.T) {
	f := record.NewFactory()
	m, err := triangle().Build(f, 0)
	if err != nil {
		t.Fatal(err)
	}
	enc := record.NewEncoder(f)
	if m.Bind(enc, 0, vertex.Position, vertex.JointIds) {
		t.Fatal("Bind succeeded without joint ids")
	}
	if len(enc.Commands()) != 0 {
		t.Fatal("Bind recorded a command for an incomplete mesh")
	}
	if !m.Bind(enc, 0, vertex.Base...) {
		t.Fatal("Bind failed for base streams")
	}
	if cmds := enc.Commands(); len(cmds) != 1 || len(cmds[0].Buffers) != 3 {
		t.Fatalf("commands = %v", cmds)
	}
}
