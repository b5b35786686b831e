package engine

import (
	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx/record"
)

// Backend provides the device and an encoder for every frame. BeginFrame
// and EndFrame bracket the commands of one frame slot.
type Backend interface {
	Factory() gfx.Factory
	Subpass() gfx.Subpass
	BeginFrame(index uint32) (gfx.Encoder, error)
	EndFrame(index uint32) error
}

// HeadlessBackend renders into the recording device. Every frame slot keeps
// its own encoder, reset when the slot begins again.
type HeadlessBackend struct {
	factory  *record.Factory
	encoders [gfx.MaxFramesInFlight]*record.Encoder
	summary  string
}

func NewHeadlessBackend() *HeadlessBackend {
	b := &HeadlessBackend{factory: record.NewFactory()}
	for i := range b.encoders {
		b.encoders[i] = record.NewEncoder(b.factory)
	}
	return b
}

func (b *HeadlessBackend) Factory() gfx.Factory {
	return b.factory
}

func (b *HeadlessBackend) Recorder() *record.Factory {
	return b.factory
}

func (b *HeadlessBackend) Subpass() gfx.Subpass {
	return gfx.Subpass{}
}

func (b *HeadlessBackend) BeginFrame(index uint32) (gfx.Encoder, error) {
	enc := b.encoders[index]
	enc.Reset()
	return enc, nil
}

func (b *HeadlessBackend) EndFrame(index uint32) error {
	b.summary = b.encoders[index].Summary()
	core.LogDebug("frame %d recorded: %s", index, b.summary)
	return nil
}

// Encoder returns the encoder of frame slot index.
func (b *HeadlessBackend) Encoder(index uint32) *record.Encoder {
	return b.encoders[index]
}

// LastSummary describes the commands of the last ended frame.
func (b *HeadlessBackend) LastSummary() string {
	return b.summary
}
