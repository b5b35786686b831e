package vulkan

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

func TestFactoryDestroyNullAndUnknownHandles(t *testing.T) {
	f := NewFactory(nil)
	tests := []struct {
		name    string
		destroy func(h uint64)
	}{
		{"shader module", func(h uint64) { f.DestroyShaderModule(gfx.ShaderModule(h)) }},
		{"descriptor set layout", func(h uint64) { f.DestroyDescriptorSetLayout(gfx.DescriptorSetLayout(h)) }},
		{"descriptor set", func(h uint64) { f.DestroyDescriptorSet(gfx.DescriptorSet(h)) }},
		{"pipeline layout", func(h uint64) { f.DestroyPipelineLayout(gfx.PipelineLayout(h)) }},
		{"pipeline", func(h uint64) { f.DestroyPipeline(gfx.Pipeline(h)) }},
		{"buffer", func(h uint64) { f.DestroyBuffer(gfx.Buffer(h)) }},
		{"texture", func(h uint64) { f.DestroyTexture(gfx.ImageView(h), gfx.Sampler(h)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Neither call may reach the device, there is none.
			tt.destroy(0)
			tt.destroy(42)
			if n := f.Leaks(); n != 0 {
				t.Fatalf("Leaks() = %d", n)
			}
		})
	}
}

func TestFactoryRejectsUnknownHandles(t *testing.T) {
	f := NewFactory(nil)
	tests := []struct {
		name string
		call func() error
	}{
		{"descriptor set", func() error {
			_, err := f.CreateDescriptorSet(7)
			return err
		}},
		{"pipeline layout", func() error {
			_, err := f.CreatePipelineLayout([]gfx.DescriptorSetLayout{7}, nil)
			return err
		}},
		{"pipeline", func() error {
			_, err := f.CreateGraphicsPipeline(&gfx.PipelineDesc{Layout: 7})
			return err
		}},
		{"uniform descriptor", func() error {
			return f.WriteUniformDescriptor(7, 0, 8, 0, 64)
		}},
		{"buffer write", func() error {
			return f.WriteBuffer(8, 0, []byte{1, 2, 3, 4})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, core.ErrUnknownHandle) {
				t.Fatalf("err = %v, want %v", err, core.ErrUnknownHandle)
			}
			if n := f.Leaks(); n != 0 {
				t.Fatalf("Leaks() = %d", n)
			}
		})
	}
}

func TestFactoryRejectsNonSPIRV(t *testing.T) {
	f := NewFactory(nil)
	for _, code := range [][]byte{nil, []byte("#version 450\nvoid main() {}\n")} {
		if _, err := f.CreateShaderModule(code); !errors.Is(err, core.ErrNotSPIRV) {
			t.Fatalf("CreateShaderModule(%q) err = %v, want %v", code, err, core.ErrNotSPIRV)
		}
	}
	if n := f.Leaks(); n != 0 {
		t.Fatalf("Leaks() = %d", n)
	}
}

func TestFactoryRenderPasses(t *testing.T) {
	f := NewFactory(nil)
	var rp vk.RenderPass
	a := f.RegisterRenderPass(rp)
	b := f.RegisterRenderPass(rp)
	if a == 0 || b == 0 || a == b {
		t.Fatalf("render pass handles %d and %d, want distinct non-null", a, b)
	}
	f.UnregisterRenderPass(a)
	if _, ok := f.renderpasses[a]; ok {
		t.Fatal("render pass still registered")
	}
	if _, ok := f.renderpasses[b]; !ok {
		t.Fatal("unregistering one render pass dropped the other")
	}
	if n := f.Leaks(); n != 0 {
		t.Fatalf("Leaks() = %d, render passes belong to the host", n)
	}
}
