package systems

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-render/engine/core"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
	"github.com/spaghettifunk/anima-render/engine/renderer/pass"
)

/** @brief The configuration for the render graph. */
type RenderGraphConfig struct {
	/** @brief The maximum number of groups that can be registered with the graph. */
	MaxGroupCount uint16
}

type renderGroupEntry struct {
	ID    uuid.UUID
	Name  string
	Desc  pass.RenderGroupDesc
	Group pass.RenderGroup
	// Err is the last build error. A group with an error is skipped.
	Err error
}

// GroupReport is the outcome of one group for one frame.
type GroupReport struct {
	Name   string
	Result pass.PrepareResult
}

type FrameReport struct {
	Index  uint32
	Groups []GroupReport
}

// Redraws counts the groups that asked for their commands to be recorded.
func (r FrameReport) Redraws() int {
	n := 0
	for _, g := range r.Groups {
		if g.Result == pass.DrawRecord {
			n++
		}
	}
	return n
}

// RenderGraph drives registered render groups. Groups are built, prepared and
// drawn in registration order, and disposed at shutdown.
type RenderGraph struct {
	Lookup        map[string]int
	MaxGroupCount uint32
	groups        []*renderGroupEntry
	context       pass.BuildContext
	built         bool
	metrics       *core.Metrics
	clock         *core.Clock
}

func NewRenderGraph(config RenderGraphConfig) (*RenderGraph, error) {
	if config.MaxGroupCount == 0 {
		err := fmt.Errorf("func NewRenderGraph - config.MaxGroupCount must be > 0")
		return nil, err
	}
	return &RenderGraph{
		MaxGroupCount: uint32(config.MaxGroupCount),
		Lookup:        make(map[string]int, config.MaxGroupCount),
		groups:        make([]*renderGroupEntry, 0, config.MaxGroupCount),
		metrics:       core.NewMetrics(),
		clock:         core.NewClock(),
	}, nil
}

// Register adds a named group descriptor. Groups registered after Build are
// built by the next Build or Resize.
func (rg *RenderGraph) Register(name string, desc pass.RenderGroupDesc) (uuid.UUID, error) {
	if name == "" {
		return uuid.Nil, fmt.Errorf("render graph register: name is required")
	}
	if desc == nil {
		return uuid.Nil, fmt.Errorf("render graph register: group %q has no descriptor", name)
	}
	if _, ok := rg.Lookup[name]; ok {
		return uuid.Nil, errors.Wrapf(core.ErrDuplicateGroup, "render graph register %q", name)
	}
	if uint32(len(rg.groups)) >= rg.MaxGroupCount {
		return uuid.Nil, fmt.Errorf("render graph register - no available space for group %q. Change the graph config to account for more", name)
	}
	entry := &renderGroupEntry{
		ID:   uuid.New(),
		Name: name,
		Desc: desc,
	}
	rg.Lookup[name] = len(rg.groups)
	rg.groups = append(rg.groups, entry)
	return entry.ID, nil
}

/**
 * @brief Builds every registered group that is not built yet.
 *
 * A group that fails to build is disabled and its error is kept; the other
 * groups still run. Returns ErrNoGroupsBuilt when groups are registered but
 * none of them is usable.
 */
func (rg *RenderGraph) Build(ctx pass.BuildContext) error {
	rg.context = ctx
	rg.built = true
	ready := 0
	for _, entry := range rg.groups {
		if entry.Group == nil {
			group, err := entry.Desc.Build(ctx)
			if err != nil {
				entry.Err = errors.Wrapf(err, "render group %q", entry.Name)
				core.LogError("failed to build render group %s: %s", entry.Name, err)
				continue
			}
			entry.Group = group
			entry.Err = nil
			core.LogDebug("render group %s (%s) built", entry.Name, entry.ID)
		}
		ready++
	}
	if len(rg.groups) > 0 && ready == 0 {
		return core.ErrNoGroupsBuilt
	}
	return nil
}

// Err returns the build error of the named group, or nil if it built.
func (rg *RenderGraph) Err(name string) error {
	i, ok := rg.Lookup[name]
	if !ok {
		return fmt.Errorf("render group %q is not registered", name)
	}
	return rg.groups[i].Err
}

// Groups lists the registered group names in registration order.
func (rg *RenderGraph) Groups() []string {
	names := make([]string, len(rg.groups))
	for i, entry := range rg.groups {
		names[i] = entry.Name
	}
	return names
}

// RunFrame prepares and records every built group for frame slot index.
// Commands are recorded even for groups that report DrawReuse, since the
// encoder holds a single command stream for the whole frame.
func (rg *RenderGraph) RunFrame(enc gfx.Encoder, index uint32) (FrameReport, error) {
	if !rg.built {
		return FrameReport{}, fmt.Errorf("render graph run frame: graph is not built")
	}
	if index >= gfx.MaxFramesInFlight {
		return FrameReport{}, fmt.Errorf("render graph run frame: frame index %d out of [0, %d)", index, gfx.MaxFramesInFlight)
	}
	rg.clock.Start()
	report := FrameReport{Index: index, Groups: make([]GroupReport, 0, len(rg.groups))}
	for _, entry := range rg.groups {
		if entry.Group == nil {
			continue
		}
		result := entry.Group.Prepare(rg.context.Factory, index, rg.context.World)
		rg.metrics.RecordGroup(result == pass.DrawRecord)
		entry.Group.DrawInline(enc, index, rg.context.World)
		report.Groups = append(report.Groups, GroupReport{Name: entry.Name, Result: result})
	}
	rg.clock.Update()
	rg.metrics.Update(rg.clock.Elapsed())
	rg.clock.Stop()
	return report, nil
}

/**
 * @brief Called when the framebuffer the graph renders into is resized.
 *
 * Every group is disposed and built again for the new extent.
 */
func (rg *RenderGraph) Resize(extent gfx.Extent) error {
	if !rg.built {
		return fmt.Errorf("render graph resize: graph is not built")
	}
	rg.disposeGroups()
	ctx := rg.context
	ctx.Framebuffer = extent
	return rg.Build(ctx)
}

func (rg *RenderGraph) Metrics() *core.Metrics {
	return rg.metrics
}

// Shutdown disposes every built group. The graph can be built again.
func (rg *RenderGraph) Shutdown() {
	rg.disposeGroups()
	rg.built = false
}

func (rg *RenderGraph) disposeGroups() {
	for _, entry := range rg.groups {
		if entry.Group == nil {
			continue
		}
		entry.Group.Dispose(rg.context.Factory, rg.context.World)
		entry.Group = nil
		core.LogDebug("render group %s disposed", entry.Name)
	}
}
