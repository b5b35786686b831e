package texture

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
	"github.com/spaghettifunk/anima-render/engine/renderer/palette"
)

// Texture is a sampled RGBA8 image resident on the device.
type Texture struct {
	View    gfx.ImageView
	Sampler gfx.Sampler
	Width   uint32
	Height  uint32
}

// Load uploads tightly packed RGBA8 pixels through queue.
func Load(factory gfx.Factory, queue gfx.QueueID, width, height uint32, pixels []byte) (*Texture, error) {
	view, sampler, err := factory.CreateTexture(queue, gfx.TextureDesc{Width: width, Height: height, Pixels: pixels})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to upload %dx%d texture", width, height)
	}
	return &Texture{View: view, Sampler: sampler, Width: width, Height: height}, nil
}

// SolidColor uploads a 1x1 texture of the given colour.
func SolidColor(factory gfx.Factory, queue gfx.QueueID, c palette.Rgba) (*Texture, error) {
	return Load(factory, queue, 1, 1, []byte{unorm8(c.R), unorm8(c.G), unorm8(c.B), unorm8(c.A)})
}

func (t *Texture) Dispose(factory gfx.Factory) {
	factory.DestroyTexture(t.View, t.Sampler)
	t.View = 0
	t.Sampler = 0
}

func unorm8(f float32) byte {
	return byte(f*255 + 0.5)
}
