package convert

import (
	"go.uber.org/zap"

	"github.com/Faultbox/scenebake/pkg/target"
)

// PipelineCache maps mask pairs to shared pipeline bindings. Build failures are
// remembered as nil entries so a failing permutation is attempted only once.
type PipelineCache struct {
	builder  PipelineBuilder
	vertPath string
	fragPath string
	log      *zap.Logger
	stats    *Stats

	entries map[MaskPair]*target.BindGraphicsPipeline
}

// NewPipelineCache creates a cache backed by builder.
func NewPipelineCache(builder PipelineBuilder, vertPath, fragPath string, log *zap.Logger, stats *Stats) *PipelineCache {
	if log == nil {
		log = zap.NewNop()
	}
	if stats == nil {
		stats = &Stats{}
	}
	return &PipelineCache{
		builder:  builder,
		vertPath: vertPath,
		fragPath: fragPath,
		log:      log,
		stats:    stats,
		entries:  make(map[MaskPair]*target.BindGraphicsPipeline),
	}
}

// GetOrCreate returns the pipeline for masks, building it on first request.
// A nil result means no pipeline could be built for this pair.
func (c *PipelineCache) GetOrCreate(masks MaskPair) *target.BindGraphicsPipeline {
	if bind, ok := c.entries[masks]; ok {
		c.stats.PipelineCacheHits++
		return bind
	}

	var bind *target.BindGraphicsPipeline
	if c.builder != nil {
		var err error
		bind, err = c.builder.BuildPipeline(masks, c.vertPath, c.fragPath)
		if err != nil {
			c.log.Warn("pipeline build failed",
				zap.Stringer("shading", masks.Shading),
				zap.Stringer("geometry", masks.Geometry),
				zap.Error(err))
			bind = nil
		}
	}

	if bind == nil {
		c.stats.PipelinesFailed++
	} else {
		c.stats.PipelinesBuilt++
		c.log.Debug("pipeline built", zap.Stringer("masks", masks))
	}

	c.entries[masks] = bind
	return bind
}

// Lookup returns the cached pipeline for masks without building one.
func (c *PipelineCache) Lookup(masks MaskPair) (*target.BindGraphicsPipeline, bool) {
	bind, ok := c.entries[masks]
	return bind, ok && bind != nil
}

// Len returns the number of cached pairs, failures included.
func (c *PipelineCache) Len() int {
	return len(c.entries)
}
