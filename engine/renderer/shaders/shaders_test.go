package shaders

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/anima-render/engine/core"
)

func TestEveryProgramHasSource(t *testing.T) {
	for _, p := range Programs() {
		t.Run(p.Name, func(t *testing.T) {
			src, err := Source(p)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.HasPrefix(src, []byte("#version 450")) {
				t.Fatalf("unexpected header in %s", p.Name)
			}
		})
	}
}

func TestSourceMissing(t *testing.T) {
	_, err := Source(Program{Name: "missing.frag"})
	if !errors.Is(err, core.ErrShaderNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func spirvHeader() []byte {
	b := make([]byte, 20)
	binary.LittleEndian.PutUint32(b, SPIRVMagic)
	return b
}

func TestSPIRVLoader(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, SkyboxVertex.SPIRVName()), spirvHeader(), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, SkyboxFragment.SPIRVName()), []byte("#version 450\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := SPIRVLoader{Dir: dir}

	tests := []struct {
		name    string
		program Program
		wantErr error
	}{
		{"compiled", SkyboxVertex, nil},
		{"not spirv", SkyboxFragment, core.ErrNotSPIRV},
		{"missing", ShadedVertex, core.ErrShaderNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Load(tt.program)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
