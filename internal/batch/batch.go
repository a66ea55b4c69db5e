// Package batch converts a paged scene database: a root file plus every file its
// paged LOD nodes reference, written under the converted names.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/scenebake/internal/config"
	"github.com/Faultbox/scenebake/internal/convert"
	"github.com/Faultbox/scenebake/internal/sceneio"
	"github.com/Faultbox/scenebake/internal/shader"
	"github.com/Faultbox/scenebake/internal/state"
	"github.com/Faultbox/scenebake/pkg/scene"
)

// ErrOutsideRoot is reported for a referenced file that does not live under
// the root file's directory.
var ErrOutsideRoot = errors.New("file is outside the root directory")

// ConverterFactory returns a fresh Converter for one file. It may be called
// from several goroutines at once.
type ConverterFactory func(log *zap.Logger) *convert.Converter

// NewConverterFactory builds converters from cfg with the default shader
// builder and state converter.
func NewConverterFactory(cfg *config.Config) (ConverterFactory, error) {
	opts, err := cfg.ConverterOptions()
	if err != nil {
		return nil, err
	}
	validate := cfg.Shader.Validate
	return func(log *zap.Logger) *convert.Converter {
		o := opts
		builder := shader.NewBuilder(log)
		builder.Validate = validate
		o.Pipelines = builder
		o.States = state.NewConverter(log)
		o.Logger = log
		return convert.New(o)
	}, nil
}

// FileResult is the outcome of converting one file.
type FileResult struct {
	Input  string
	Output string
	RunID  string
	Stats  convert.Stats
	Err    error
}

// Result collects every converted file in conversion order.
type Result struct {
	Files []FileResult
	Stats convert.Stats
}

// Runner converts files concurrently.
type Runner struct {
	log          *zap.Logger
	newConverter ConverterFactory

	// OutputDir receives converted files, laid out relative to the root file.
	OutputDir string
	// Extension is given to every output file.
	Extension string
	// Recursive follows paged LOD file references.
	Recursive bool
	// Workers bounds concurrent conversions; values below 1 mean one.
	Workers int
	// Progress receives a progress bar; nil disables it.
	Progress io.Writer
}

// New creates a Runner.
func New(log *zap.Logger, newConverter ConverterFactory) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		log:          log.Named("batch"),
		newConverter: newConverter,
		OutputDir:    ".",
		Extension:    convert.DefaultExtension,
		Workers:      1,
	}
}

// NewFromConfig creates a Runner configured by cfg.
func NewFromConfig(log *zap.Logger, cfg *config.Config) (*Runner, error) {
	factory, err := NewConverterFactory(cfg)
	if err != nil {
		return nil, err
	}
	r := New(log, factory)
	r.OutputDir = cfg.Output.Dir
	r.Extension = cfg.Output.Extension
	r.Recursive = cfg.Output.Recursive
	r.Workers = cfg.Output.Workers
	return r, nil
}

type job struct {
	input  string
	output string
}

// Run converts root and, when Recursive, every file reachable through paged
// LOD references. Each file is converted once. Files are scheduled in waves:
// the files referenced by one wave form the next. A failed file does not stop
// the others; all failures are returned together.
func (r *Runner) Run(ctx context.Context, root string) (*Result, error) {
	root = filepath.Clean(root)
	base := filepath.Dir(root)
	names := convert.NewFilenameMap(r.Extension, nil)

	bar := r.progressBar()
	res := &Result{}
	var errs *multierror.Error
	failed := 0

	seen := map[string]bool{root: true}
	wave := []string{root}
	for len(wave) > 0 {
		jobs := make([]job, 0, len(wave))
		for _, in := range wave {
			out, err := r.outputPath(base, in, names)
			if err != nil {
				res.Files = append(res.Files, FileResult{Input: in, Err: err})
				errs = multierror.Append(errs, err)
				failed++
				continue
			}
			jobs = append(jobs, job{input: in, output: out})
		}

		// a finished bar stops rendering, so restart it at the current count
		done := len(res.Files)
		bar.Reset()
		bar.ChangeMax(done + len(jobs))
		_ = bar.Set(done)

		results, refs, err := r.runWave(ctx, jobs, bar)
		if err != nil {
			return res, err
		}

		var next []string
		for i, fr := range results {
			res.Files = append(res.Files, fr)
			res.Stats.Add(fr.Stats)
			if fr.Err != nil {
				errs = multierror.Append(errs, fr.Err)
				failed++
				continue
			}
			for _, ref := range refs[i] {
				if !seen[ref] {
					seen[ref] = true
					next = append(next, ref)
				}
			}
		}
		if !r.Recursive {
			break
		}
		wave = next
	}
	_ = bar.Finish()

	r.log.Info("batch finished",
		zap.Int("files", len(res.Files)),
		zap.Int("failed", failed),
		zap.Int("pipelines", res.Stats.PipelinesBuilt))
	return res, errs.ErrorOrNil()
}

func (r *Runner) runWave(ctx context.Context, jobs []job, bar *progressbar.ProgressBar) ([]FileResult, [][]string, error) {
	results := make([]FileResult, len(jobs))
	refs := make([][]string, len(jobs))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Workers, 1))
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], refs[i] = r.convertFile(j)

			mu.Lock()
			_ = bar.Add(1)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, refs, nil
}

// convertFile reads, converts and writes one file, returning the files its
// paged LOD nodes reference.
func (r *Runner) convertFile(j job) (FileResult, []string) {
	fr := FileResult{Input: j.input, Output: j.output}

	src, err := sceneio.ReadFile(j.input)
	if err != nil {
		fr.Err = err
		return fr, nil
	}

	conv := r.newConverter(r.log.With(zap.String("file", j.input)))
	fr.RunID = conv.RunID()
	out := conv.Convert(src)
	fr.Stats = conv.Stats()

	if err := sceneio.WriteTargetFile(j.output, out); err != nil {
		fr.Err = err
		return fr, nil
	}
	r.log.Debug("converted",
		zap.String("input", j.input),
		zap.String("output", j.output),
		zap.Int("pipelines", fr.Stats.PipelinesBuilt))

	return fr, References(j.input, src)
}

// outputPath mirrors input's place under base inside OutputDir. Files outside
// base have no such place and are refused.
func (r *Runner) outputPath(base, input string, names *convert.FilenameMap) (string, error) {
	rel, err := filepath.Rel(base, input)
	if err != nil {
		return "", fmt.Errorf("output path for %s: %w", input, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("output path for %s: %w", input, ErrOutsideRoot)
	}
	return filepath.Join(r.OutputDir, names.Map(rel)), nil
}

func (r *Runner) progressBar() *progressbar.ProgressBar {
	w := r.Progress
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetVisibility(r.Progress != nil),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// References returns the files referenced by paged LOD nodes under n,
// resolved against the directory of file and each node's database path.
func References(file string, n scene.Node) []string {
	dir := filepath.Dir(file)
	var out []string
	seen := make(map[string]bool)
	scene.Walk(n, func(n scene.Node) bool {
		p, ok := n.(*scene.PagedLOD)
		if !ok {
			return true
		}
		for _, name := range p.FileNames {
			if name == "" {
				continue
			}
			path := name
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, p.DatabasePath, name)
			}
			path = filepath.Clean(path)
			if !seen[path] {
				seen[path] = true
				out = append(out, path)
			}
		}
		return true
	})
	return out
}
