package target

import (
	"github.com/gogpu/gputypes"

	"github.com/Faultbox/scenebake/pkg/math"
)

// VertexIndexDraw binds vertex arrays and an optional index buffer and issues one draw.
type VertexIndexDraw struct {
	Object
	Arrays        []Data
	Indices       Data
	Topology      gputypes.PrimitiveTopology
	IndexCount    uint32
	VertexCount   uint32
	InstanceCount uint32
	FirstIndex    uint32
	FirstVertex   uint32
	Bound         math.Box
}

// Geometry binds vertex arrays and an optional index buffer and runs a command list.
type Geometry struct {
	Object
	Arrays   []Data
	Indices  Data
	Commands []Command
	Bound    math.Box
}

// Commands is a raw command list.
type Commands struct {
	Object
	Children []Command
	Bound    math.Box
}

// Command is a recorded draw-stage command.
type Command interface {
	command()
}

// StateCommand is a command bound by a StateGroup.
type StateCommand interface {
	Command
	stateCommand()
}

// BindVertexBuffers binds Arrays to consecutive slots starting at FirstBinding.
type BindVertexBuffers struct {
	FirstBinding uint32
	Arrays       []Data
}

// BindIndexBuffer binds an index buffer.
type BindIndexBuffer struct {
	Indices Data
}

// Draw issues a non-indexed draw.
type Draw struct {
	Topology      gputypes.PrimitiveTopology
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

// DrawIndexed issues an indexed draw.
type DrawIndexed struct {
	Topology      gputypes.PrimitiveTopology
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	VertexOffset  int32
	FirstInstance uint32
}

func (*BindVertexBuffers) command()    {}
func (*BindIndexBuffer) command()      {}
func (*Draw) command()                 {}
func (*DrawIndexed) command()          {}
func (*BindGraphicsPipeline) command() {}
func (*BindDescriptorSet) command()    {}

func (*BindGraphicsPipeline) stateCommand() {}
func (*BindDescriptorSet) stateCommand()    {}
