package convert

import (
	"strconv"
	"strings"

	"github.com/Faultbox/scenebake/pkg/scene"
)

// StatePair is one entry of the state stack: the state set a node carries and
// the state accumulated from the root down to and including that node.
type StatePair struct {
	Local       *scene.StateSet
	Accumulated *scene.StateSet
}

// stateStack tracks the state sets of the nodes on the current traversal path.
// Accumulated sets are memoised per distinct stack so equal paths share one
// accumulated set, which keeps descriptor-set cache keys stable.
type stateStack struct {
	entries []StatePair
	ids     map[*scene.StateSet]int
	pairs   map[string]*StatePair
}

func newStateStack() *stateStack {
	return &stateStack{
		ids:   make(map[*scene.StateSet]int),
		pairs: make(map[string]*StatePair),
	}
}

// push adds s to the stack and returns the matching pop. A nil s pushes nothing
// and returns a no-op, so callers can always `defer stack.push(n.StateSet())()`.
func (st *stateStack) push(s *scene.StateSet) func() {
	if s == nil {
		return func() {}
	}

	var parent *scene.StateSet
	if len(st.entries) > 0 {
		parent = st.entries[len(st.entries)-1].Accumulated
	}

	key := st.key(s)
	pair, ok := st.pairs[key]
	if !ok {
		pair = &StatePair{Local: s, Accumulated: scene.Merge(parent, s)}
		st.pairs[key] = pair
	}

	st.entries = append(st.entries, *pair)
	depth := len(st.entries)
	return func() {
		st.entries = st.entries[:depth-1]
	}
}

// key identifies the stack that results from pushing s.
func (st *stateStack) key(s *scene.StateSet) string {
	var b strings.Builder
	for _, e := range st.entries {
		b.WriteString(strconv.Itoa(st.id(e.Local)))
		b.WriteByte('/')
	}
	b.WriteString(strconv.Itoa(st.id(s)))
	return b.String()
}

func (st *stateStack) id(s *scene.StateSet) int {
	if id, ok := st.ids[s]; ok {
		return id
	}
	id := len(st.ids)
	st.ids[s] = id
	return id
}

// top returns the innermost pair, or nil when the stack is empty.
func (st *stateStack) top() *StatePair {
	if len(st.entries) == 0 {
		return nil
	}
	return &st.entries[len(st.entries)-1]
}

func (st *stateStack) depth() int {
	return len(st.entries)
}
