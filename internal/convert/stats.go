package convert

// Stats counts what a conversion run did.
type Stats struct {
	NodesVisited        int
	NodesDropped        int
	NodeCacheHits       int
	PipelinesBuilt      int
	PipelinesFailed     int
	PipelineCacheHits   int
	DescriptorSetsBuilt int
	DescriptorSetsEmpty int
	DescriptorCacheHits int
	FilenamesRemapped   int
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.NodesVisited += o.NodesVisited
	s.NodesDropped += o.NodesDropped
	s.NodeCacheHits += o.NodeCacheHits
	s.PipelinesBuilt += o.PipelinesBuilt
	s.PipelinesFailed += o.PipelinesFailed
	s.PipelineCacheHits += o.PipelineCacheHits
	s.DescriptorSetsBuilt += o.DescriptorSetsBuilt
	s.DescriptorSetsEmpty += o.DescriptorSetsEmpty
	s.DescriptorCacheHits += o.DescriptorCacheHits
	s.FilenamesRemapped += o.FilenamesRemapped
}

// StatRow is one labelled counter.
type StatRow struct {
	Label string
	Value int
}

// Rows returns the counters in display order.
func (s Stats) Rows() []StatRow {
	return []StatRow{
		{"nodes visited", s.NodesVisited},
		{"nodes dropped", s.NodesDropped},
		{"node cache hits", s.NodeCacheHits},
		{"pipelines built", s.PipelinesBuilt},
		{"pipelines failed", s.PipelinesFailed},
		{"pipeline cache hits", s.PipelineCacheHits},
		{"descriptor sets built", s.DescriptorSetsBuilt},
		{"descriptor sets empty", s.DescriptorSetsEmpty},
		{"descriptor cache hits", s.DescriptorCacheHits},
		{"filenames remapped", s.FilenamesRemapped},
	}
}
