package sceneio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gogpu/gputypes"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/scenebake/pkg/math"
	"github.com/Faultbox/scenebake/pkg/target"
)

// WriteTargetFile writes root to path, creating parent directories.
func WriteTargetFile(path string, root target.Node) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTarget(f, root); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteTarget encodes root as a target document.
func WriteTarget(w io.Writer, root target.Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(EncodeTarget(root)); err != nil {
		return err
	}
	return enc.Close()
}

// EncodeTarget builds the document for root. Nodes reached through more than
// one parent get an id at their first occurrence and a ref afterwards.
func EncodeTarget(root target.Node) *TargetDocument {
	e := &encoder{
		parents:     make(map[target.Node]int),
		nodeIDs:     make(map[target.Node]string),
		pipelines:   make(map[*target.GraphicsPipeline]string),
		descriptors: make(map[*target.BindDescriptorSet]string),
		images:      make(map[*target.Image]string),
		doc:         &TargetDocument{Format: TargetFormat},
	}
	e.countParents(root, make(map[target.Node]bool))
	e.doc.Root = e.node(root)
	return e.doc
}

type encoder struct {
	parents     map[target.Node]int
	nodeIDs     map[target.Node]string
	pipelines   map[*target.GraphicsPipeline]string
	descriptors map[*target.BindDescriptorSet]string
	images      map[*target.Image]string
	doc         *TargetDocument
}

func (e *encoder) countParents(n target.Node, seen map[target.Node]bool) {
	if n == nil || seen[n] {
		return
	}
	seen[n] = true
	for _, c := range target.Children(n) {
		if c == nil {
			continue
		}
		e.parents[c]++
		e.countParents(c, seen)
	}
}

func (e *encoder) node(n target.Node) *TargetNodeDoc {
	if n == nil {
		return nil
	}
	if id, ok := e.nodeIDs[n]; ok {
		return &TargetNodeDoc{Ref: id}
	}

	d := &TargetNodeDoc{}
	if e.parents[n] > 1 {
		d.ID = fmt.Sprintf("n%d", len(e.nodeIDs))
		e.nodeIDs[n] = d.ID
	}

	switch n := n.(type) {
	case *target.Group:
		d.Type = "group"
		d.Values = n.Values
		d.Children = e.nodes(n.Children)

	case *target.MatrixTransform:
		d.Type = "matrix_transform"
		d.Values = n.Values
		d.Matrix = n.Matrix[:]
		d.Children = e.nodes(n.Children)

	case *target.StateGroup:
		d.Type = "state_group"
		d.Values = n.Values
		for _, c := range n.StateCommands {
			d.State = append(d.State, e.stateCommand(c))
		}
		d.Children = e.nodes(n.Children)

	case *target.LOD:
		d.Type = "lod"
		d.Values = n.Values
		d.Sphere = sphere(n.Bound)
		for _, c := range n.Children {
			d.Levels = append(d.Levels, LevelDoc{Ratio: c.MinimumScreenHeightRatio, Node: e.node(c.Node)})
		}

	case *target.PagedLOD:
		d.Type = "paged_lod"
		d.Values = n.Values
		d.Sphere = sphere(n.Bound)
		d.DatabasePath = n.DatabasePath
		for _, c := range n.Children {
			d.Levels = append(d.Levels, LevelDoc{Ratio: c.MinimumScreenHeightRatio, Filename: c.Filename, Node: e.node(c.Node)})
		}

	case *target.VertexIndexDraw:
		d.Type = "vertex_index_draw"
		d.Values = n.Values
		d.Box = box(n.Bound)
		d.Arrays = dataDocs(n.Arrays)
		d.Indices = dataDoc(n.Indices)
		d.Draw = &DrawDoc{
			Topology:      n.Topology.String(),
			IndexCount:    n.IndexCount,
			VertexCount:   n.VertexCount,
			InstanceCount: n.InstanceCount,
			FirstIndex:    n.FirstIndex,
			FirstVertex:   n.FirstVertex,
		}

	case *target.Geometry:
		d.Type = "geometry"
		d.Values = n.Values
		d.Box = box(n.Bound)
		d.Arrays = dataDocs(n.Arrays)
		d.Indices = dataDoc(n.Indices)
		d.Commands = commands(n.Commands)

	case *target.Commands:
		d.Type = "commands"
		d.Values = n.Values
		d.Box = box(n.Bound)
		d.Commands = commands(n.Children)

	default:
		d.Type = fmt.Sprintf("unknown(%T)", n)
	}
	return d
}

func (e *encoder) nodes(children []target.Node) []*TargetNodeDoc {
	out := make([]*TargetNodeDoc, 0, len(children))
	for _, c := range children {
		out = append(out, e.node(c))
	}
	return out
}

func (e *encoder) stateCommand(c target.StateCommand) StateRefDoc {
	switch c := c.(type) {
	case *target.BindGraphicsPipeline:
		return StateRefDoc{Pipeline: e.pipeline(c.Pipeline)}
	case *target.BindDescriptorSet:
		return StateRefDoc{DescriptorSet: e.descriptorSet(c)}
	default:
		return StateRefDoc{}
	}
}

func (e *encoder) pipeline(p *target.GraphicsPipeline) string {
	if p == nil {
		return ""
	}
	if id, ok := e.pipelines[p]; ok {
		return id
	}
	id := fmt.Sprintf("p%d", len(e.pipelines))
	e.pipelines[p] = id

	d := &PipelineDoc{
		ID:        id,
		Label:     p.Label,
		Topology:  p.Primitive.Topology.String(),
		FrontFace: p.Primitive.FrontFace.String(),
		CullMode:  p.Primitive.CullMode.String(),
		Blend:     p.Blend != nil,
	}
	if p.DepthStencil != nil {
		d.DepthFormat = p.DepthStencil.Format.String()
	}
	for _, vb := range p.VertexBuffers {
		for _, attr := range vb.Attributes {
			d.VertexBuffers = append(d.VertexBuffers, VertexBufferDoc{
				Location: attr.ShaderLocation,
				Format:   attr.Format.String(),
				Stride:   vb.ArrayStride,
				StepMode: vb.StepMode.String(),
			})
		}
	}
	if p.Layout != nil {
		for _, set := range p.Layout.DescriptorSetLayouts {
			d.SetLayouts = append(d.SetLayouts, layoutEntries(set))
		}
	}
	for _, s := range p.Stages {
		d.Stages = append(d.Stages, StageDoc{
			Stage:      s.Stage.String(),
			EntryPoint: s.EntryPoint,
			SPIRV:      base64.StdEncoding.EncodeToString(spirvBytes(s.SPIRV)),
		})
	}
	e.doc.Pipelines = append(e.doc.Pipelines, d)
	return id
}

func layoutEntries(set *target.DescriptorSetLayout) []LayoutEntryDoc {
	if set == nil {
		return nil
	}
	out := make([]LayoutEntryDoc, 0, len(set.Bindings))
	for _, b := range set.Bindings {
		entry := LayoutEntryDoc{Binding: b.Binding}
		switch {
		case b.Buffer != nil:
			entry.Kind = "uniform"
			entry.Size = b.Buffer.MinBindingSize
		case b.Texture != nil:
			entry.Kind = "texture"
		case b.Sampler != nil:
			entry.Kind = "sampler"
		default:
			entry.Kind = "other"
		}
		out = append(out, entry)
	}
	return out
}

func spirvBytes(words []uint32) []byte {
	out := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

func (e *encoder) descriptorSet(b *target.BindDescriptorSet) string {
	if id, ok := e.descriptors[b]; ok {
		return id
	}
	id := fmt.Sprintf("d%d", len(e.descriptors))
	e.descriptors[b] = id

	d := &DescriptorSetDoc{ID: id, FirstSet: b.FirstSet}
	if b.Set != nil {
		for _, desc := range b.Set.Descriptors {
			switch desc := desc.(type) {
			case *target.DescriptorBuffer:
				d.Buffers = append(d.Buffers, BufferDescDoc{
					Binding: desc.Binding,
					Data:    base64.StdEncoding.EncodeToString(desc.Data),
				})
			case *target.DescriptorImage:
				d.Images = append(d.Images, e.imageDesc(desc))
			}
		}
	}
	e.doc.DescriptorSets = append(e.doc.DescriptorSets, d)
	return id
}

func (e *encoder) imageDesc(desc *target.DescriptorImage) ImageDescDoc {
	s := desc.Sampler
	return ImageDescDoc{
		Binding:        desc.Binding,
		SamplerBinding: desc.SamplerBinding,
		Image:          e.image(desc.Image),
		AddressU:       s.AddressModeU.String(),
		AddressV:       s.AddressModeV.String(),
		MinFilter:      s.MinFilter.String(),
		MagFilter:      s.MagFilter.String(),
		MipmapFilter:   s.MipmapFilter.String(),
	}
}

// image lists img in the document the first time it is seen.
func (e *encoder) image(img *target.Image) string {
	if img == nil {
		return ""
	}
	if id, ok := e.images[img]; ok {
		return id
	}
	id := fmt.Sprintf("i%d", len(e.images))
	e.images[img] = id
	e.doc.Images = append(e.doc.Images, &ImageDoc{
		ID:     id,
		Path:   img.Path,
		Width:  img.Width,
		Height: img.Height,
		Format: img.Format.String(),
	})
	return id
}

func commands(cmds []target.Command) []CommandDoc {
	out := make([]CommandDoc, 0, len(cmds))
	for _, c := range cmds {
		switch c := c.(type) {
		case *target.BindVertexBuffers:
			out = append(out, CommandDoc{Op: "bind_vertex_buffers", FirstBinding: c.FirstBinding, Arrays: dataDocs(c.Arrays)})
		case *target.BindIndexBuffer:
			out = append(out, CommandDoc{Op: "bind_index_buffer", Indices: dataDoc(c.Indices)})
		case *target.Draw:
			out = append(out, CommandDoc{Op: "draw", Draw: &DrawDoc{
				Topology:      c.Topology.String(),
				VertexCount:   c.VertexCount,
				InstanceCount: c.InstanceCount,
				FirstVertex:   c.FirstVertex,
			}})
		case *target.DrawIndexed:
			out = append(out, CommandDoc{Op: "draw_indexed", VertexOffset: c.VertexOffset, Draw: &DrawDoc{
				Topology:      c.Topology.String(),
				IndexCount:    c.IndexCount,
				InstanceCount: c.InstanceCount,
				FirstIndex:    c.FirstIndex,
			}})
		}
	}
	return out
}

func dataDocs(arrays []target.Data) []*DataDoc {
	out := make([]*DataDoc, 0, len(arrays))
	for _, a := range arrays {
		out = append(out, dataDoc(a))
	}
	return out
}

func dataDoc(d target.Data) *DataDoc {
	if d == nil {
		return nil
	}
	doc := &DataDoc{
		Format:      d.Format().String(),
		Stride:      d.ElementSize(),
		Count:       d.Len(),
		Values:      d.Elements(),
		PerInstance: d.Instanced(),
	}
	if doc.Format == gputypes.VertexFormatUndefined.String() {
		if f := target.IndexFormat(d); f != gputypes.IndexFormatUndefined {
			doc.Format = f.String()
		}
	}
	return doc
}

func sphere(s math.Sphere) *SphereDoc {
	return &SphereDoc{Center: [3]float64{s.Center.X, s.Center.Y, s.Center.Z}, Radius: s.Radius}
}

func box(b math.Box) *BoxDoc {
	return &BoxDoc{
		Min: [3]float32{b.Min.X, b.Min.Y, b.Min.Z},
		Max: [3]float32{b.Max.X, b.Max.Y, b.Max.Z},
	}
}
