package convert

import (
	"go.uber.org/zap"

	"github.com/Faultbox/scenebake/pkg/scene"
	"github.com/Faultbox/scenebake/pkg/target"
)

type descriptorKey struct {
	masks MaskPair
	state *scene.StateSet
}

// DescriptorSetCache maps (mask pair, state set) to shared descriptor-set bindings.
// It never builds pipelines: a pair without a cached pipeline yields nil.
type DescriptorSetCache struct {
	pipelines *PipelineCache
	converter StateConverter
	log       *zap.Logger
	stats     *Stats

	entries map[descriptorKey]*target.BindDescriptorSet
}

// NewDescriptorSetCache creates a cache reading layouts from pipelines.
func NewDescriptorSetCache(pipelines *PipelineCache, converter StateConverter, log *zap.Logger, stats *Stats) *DescriptorSetCache {
	if log == nil {
		log = zap.NewNop()
	}
	if stats == nil {
		stats = &Stats{}
	}
	return &DescriptorSetCache{
		pipelines: pipelines,
		converter: converter,
		log:       log,
		stats:     stats,
		entries:   make(map[descriptorKey]*target.BindDescriptorSet),
	}
}

// GetOrCreate returns the descriptor-set binding for state under masks.
// Empty results are not cached, so a later call tries again.
func (c *DescriptorSetCache) GetOrCreate(masks MaskPair, state *scene.StateSet) *target.BindDescriptorSet {
	key := descriptorKey{masks: masks, state: state}
	if bind, ok := c.entries[key]; ok {
		c.stats.DescriptorCacheHits++
		return bind
	}

	pipeline, ok := c.pipelines.Lookup(masks)
	if !ok {
		c.log.Debug("no pipeline for descriptor set", zap.Stringer("masks", masks))
		return nil
	}
	if pipeline.Pipeline == nil || pipeline.Pipeline.Layout == nil || c.converter == nil {
		return nil
	}

	layout := pipeline.Pipeline.Layout
	set := c.converter.BuildDescriptorSet(layout.DescriptorSetLayouts, state, masks.Shading)
	if set == nil {
		c.stats.DescriptorSetsEmpty++
		return nil
	}

	bind := &target.BindDescriptorSet{
		BindPoint: target.BindPointGraphics,
		Layout:    layout,
		FirstSet:  0,
		Set:       set,
	}
	c.entries[key] = bind
	c.stats.DescriptorSetsBuilt++
	return bind
}

// Len returns the number of cached bindings.
func (c *DescriptorSetCache) Len() int {
	return len(c.entries)
}
