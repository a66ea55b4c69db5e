package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/scenebake/internal/config"
	"github.com/Faultbox/scenebake/internal/convert"
	"github.com/Faultbox/scenebake/internal/sceneio"
	"github.com/Faultbox/scenebake/pkg/target"
)

const triangle = `
      type: geometry
      vertices: {type: vec3, data: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]}
      primitives:
        - {mode: triangles, indices: [0, 1, 2]}
`

func pagedFile(refs ...string) string {
	var b strings.Builder
	b.WriteString("format: scenebake-scene/1\nroot:\n  type: paged_lod\n")
	b.WriteString("  ranges: [[0, 100]")
	for range refs {
		b.WriteString(", [100, 1000]")
	}
	b.WriteString("]\n  filenames: [\"\"")
	for _, r := range refs {
		b.WriteString(", \"" + r + "\"")
	}
	b.WriteString("]\n  children:\n    -")
	b.WriteString(triangle)
	return b.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func testFactory(log *zap.Logger) *convert.Converter {
	opts := convert.DefaultOptions()
	opts.Pipelines = convert.PipelineBuilderFunc(func(masks convert.MaskPair, _, _ string) (*target.BindGraphicsPipeline, error) {
		return &target.BindGraphicsPipeline{Pipeline: &target.GraphicsPipeline{
			Label:     masks.String(),
			Primitive: gputypes.PrimitiveState{Topology: gputypes.PrimitiveTopologyTriangleList},
			Layout:    &target.PipelineLayout{},
		}}, nil
	})
	opts.Logger = log
	return convert.New(opts)
}

func TestRunFollowsPagedReferences(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	// the child refers back to the root and to a sibling twice
	writeFile(t, filepath.Join(src, "root.yaml"), pagedFile("tiles/a.yaml", "tiles/b.yaml"))
	writeFile(t, filepath.Join(src, "tiles", "a.yaml"), pagedFile("../root.yaml", "b.yaml", "b.yaml"))
	writeFile(t, filepath.Join(src, "tiles", "b.yaml"), pagedFile())

	r := New(zaptest.NewLogger(t), testFactory)
	r.OutputDir = out
	r.Recursive = true
	r.Workers = 4

	res, err := r.Run(context.Background(), filepath.Join(src, "root.yaml"))
	require.NoError(t, err)
	require.Len(t, res.Files, 3)

	assert.Equal(t, filepath.Join(src, "root.yaml"), res.Files[0].Input)
	assert.Equal(t, filepath.Join(out, "root.vsgt"), res.Files[0].Output)

	var inputs []string
	for _, f := range res.Files {
		assert.NoError(t, f.Err)
		assert.NotEmpty(t, f.RunID)
		assert.FileExists(t, f.Output)
		inputs = append(inputs, f.Input)
	}
	assert.ElementsMatch(t, []string{
		filepath.Join(src, "root.yaml"),
		filepath.Join(src, "tiles", "a.yaml"),
		filepath.Join(src, "tiles", "b.yaml"),
	}, inputs)
	assert.FileExists(t, filepath.Join(out, "tiles", "a.vsgt"))
	assert.FileExists(t, filepath.Join(out, "tiles", "b.vsgt"))

	assert.Equal(t, 3, res.Stats.PipelinesBuilt)

	data, err := os.ReadFile(filepath.Join(out, "root.vsgt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "filename: tiles/a.vsgt")
	assert.Contains(t, string(data), "format: "+sceneio.TargetFormat)
}

func TestRunNotRecursive(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(src, "root.yaml"), pagedFile("missing.yaml"))

	r := New(nil, testFactory)
	r.OutputDir = out

	res, err := r.Run(context.Background(), filepath.Join(src, "root.yaml"))
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.NoFileExists(t, filepath.Join(out, "missing.vsgt"))
}

func TestRunCollectsFileErrors(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(src, "root.yaml"), pagedFile("gone.yaml", "bad.yaml", "good.yaml"))
	writeFile(t, filepath.Join(src, "bad.yaml"), "format: scenebake-scene/1\nroot: {type: teapot}\n")
	writeFile(t, filepath.Join(src, "good.yaml"), pagedFile())

	r := New(zaptest.NewLogger(t), testFactory)
	r.OutputDir = out
	r.Recursive = true
	r.Workers = 2

	res, err := r.Run(context.Background(), filepath.Join(src, "root.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 errors occurred")
	assert.Contains(t, err.Error(), "gone.yaml")
	assert.Contains(t, err.Error(), "teapot")

	require.Len(t, res.Files, 4)
	assert.FileExists(t, filepath.Join(out, "good.vsgt"))
	assert.NoFileExists(t, filepath.Join(out, "bad.vsgt"))
}

func TestRunCancelled(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "root.yaml"), pagedFile())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(nil, testFactory)
	r.OutputDir = t.TempDir()
	_, err := r.Run(ctx, filepath.Join(src, "root.yaml"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunProgress(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "root.yaml"), pagedFile())

	var progress bytes.Buffer
	r := New(nil, testFactory)
	r.OutputDir = t.TempDir()
	r.Progress = &progress

	_, err := r.Run(context.Background(), filepath.Join(src, "root.yaml"))
	require.NoError(t, err)
	assert.Contains(t, progress.String(), "converting")
}

func TestNewFromConfig(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "root.yaml"), pagedFile())

	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()
	cfg.Output.Extension = "tgt"
	cfg.Output.Workers = 2

	r, err := NewFromConfig(zaptest.NewLogger(t), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Workers)

	res, err := r.Run(context.Background(), filepath.Join(src, "root.yaml"))
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, filepath.Join(cfg.Output.Dir, "root.tgt"), res.Files[0].Output)
	assert.Equal(t, 1, res.Stats.PipelinesBuilt)
	assert.Zero(t, res.Stats.PipelinesFailed)

	cfg.Convert.GeometryTarget = "teapot"
	_, err = NewFromConfig(nil, cfg)
	assert.Error(t, err)
}

func TestReferences(t *testing.T) {
	root, err := sceneio.Read(strings.NewReader(`
format: scenebake-scene/1
root:
  type: group
  children:
    - type: paged_lod
      ranges: [[0, 1], [1, 2], [2, 3]]
      filenames: ["", "a.yaml", "/abs/c.yaml"]
      database_path: db
    - type: paged_lod
      ranges: [[0, 1]]
      filenames: ["a.yaml"]
      database_path: db
`))
	require.NoError(t, err)

	refs := References(filepath.Join("data", "root.yaml"), root)
	assert.Equal(t, []string{
		filepath.Join("data", "db", "a.yaml"),
		filepath.Clean("/abs/c.yaml"),
	}, refs)
}

func TestRunDatabasePathReferencesResolve(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	root := strings.Replace(pagedFile("child.yaml"), "  children:", "  database_path: data\n  children:", 1)
	writeFile(t, filepath.Join(src, "root.yaml"), root)
	writeFile(t, filepath.Join(src, "data", "child.yaml"), pagedFile())

	r := New(zaptest.NewLogger(t), testFactory)
	r.OutputDir = out
	r.Recursive = true

	res, err := r.Run(context.Background(), filepath.Join(src, "root.yaml"))
	require.NoError(t, err)
	require.Len(t, res.Files, 2)

	data, err := os.ReadFile(filepath.Join(out, "root.vsgt"))
	require.NoError(t, err)

	var doc sceneio.TargetDocument
	require.NoError(t, yaml.Unmarshal(data, &doc))
	require.NotNil(t, doc.Root)
	assert.Equal(t, "data", doc.Root.DatabasePath)

	var filename string
	for _, l := range doc.Root.Levels {
		if l.Filename != "" {
			filename = l.Filename
		}
	}
	require.Equal(t, "child.vsgt", filename)

	// the reference resolves the same way the source reference did
	assert.FileExists(t, filepath.Join(out, doc.Root.DatabasePath, filename))
}

func TestRunRefusesFilesOutsideRoot(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(dir, "scenes", "root.yaml"), pagedFile("../shared/tile.yaml", "local.yaml"))
	writeFile(t, filepath.Join(dir, "shared", "tile.yaml"), pagedFile())
	writeFile(t, filepath.Join(dir, "scenes", "local.yaml"), pagedFile())

	r := New(zaptest.NewLogger(t), testFactory)
	r.OutputDir = out
	r.Recursive = true

	res, err := r.Run(context.Background(), filepath.Join(dir, "scenes", "root.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutsideRoot)
	assert.Contains(t, err.Error(), "tile.yaml")

	require.Len(t, res.Files, 3)
	assert.FileExists(t, filepath.Join(out, "local.vsgt"))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(out), "shared", "tile.vsgt"))

	var refused int
	for _, f := range res.Files {
		if errors.Is(f.Err, ErrOutsideRoot) {
			refused++
			assert.Empty(t, f.Output)
		}
	}
	assert.Equal(t, 1, refused)
}
