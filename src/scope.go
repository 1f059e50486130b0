package pawbasic

// scopeNode is one slot of the scope arena. A slot is reused after its
// scope is collected; gen tells old handles apart from the new occupant.
type scopeNode struct {
	gen       uint32
	live      bool
	parent    int // -1 for the root
	parentGen uint32
	vars      map[string]Value
	locals    map[string]bool // names bound with DeclareVariable
	consts    map[string]Value
	funcs     map[string]*Callable
	cmds      map[string]*Callable
	blocks    map[string]BlockConstructor
}

func (n *scopeNode) reset() {
	n.vars = make(map[string]Value)
	n.locals = make(map[string]bool)
	n.consts = make(map[string]Value)
	n.funcs = make(map[string]*Callable)
	n.cmds = make(map[string]*Callable)
	n.blocks = make(map[string]BlockConstructor)
}

type scopeArena struct {
	nodes []*scopeNode
	free  []int
	ops   *OperatorTable
}

// Scope is a handle to a node of the scope tree. Handles are small values;
// a handle whose node has been collected fails every operation with
// ErrContextCleared.
type Scope struct {
	arena *scopeArena
	index int
	gen   uint32
}

// NewRootScope creates a fresh scope tree sharing ops across all its nodes.
func NewRootScope(ops *OperatorTable) Scope {
	if ops == nil {
		ops = StandardOperators()
	}
	root := &scopeNode{live: true, parent: -1}
	root.reset()
	arena := &scopeArena{nodes: []*scopeNode{root}, ops: ops}
	return Scope{arena: arena, index: 0, gen: 0}
}

func (s Scope) node() (*scopeNode, error) {
	if s.arena == nil || s.index < 0 || s.index >= len(s.arena.nodes) {
		return nil, ErrContextCleared
	}
	n := s.arena.nodes[s.index]
	if !n.live || n.gen != s.gen {
		return nil, ErrContextCleared
	}
	return n, nil
}

// Valid reports whether the handle still refers to a live scope
func (s Scope) Valid() bool {
	_, err := s.node()
	return err == nil
}

// IsRoot reports whether s is the root of its tree
func (s Scope) IsRoot() bool { return s.arena != nil && s.index == 0 }

// Root returns the root of s's tree
func (s Scope) Root() Scope {
	if s.arena == nil {
		return s
	}
	return Scope{arena: s.arena, index: 0, gen: s.arena.nodes[0].gen}
}

// Operators returns the operator table shared by the tree
func (s Scope) Operators() *OperatorTable {
	if s.arena == nil {
		return nil
	}
	return s.arena.ops
}

// Parent returns the enclosing scope; ok is false at the root.
func (s Scope) Parent() (Scope, bool, error) {
	n, err := s.node()
	if err != nil {
		return Scope{}, false, err
	}
	if n.parent < 0 {
		return Scope{}, false, nil
	}
	p := Scope{arena: s.arena, index: n.parent, gen: n.parentGen}
	if _, err := p.node(); err != nil {
		return Scope{}, false, err
	}
	return p, true, nil
}

// Child creates a live scope nested in s.
func (s Scope) Child() (Scope, error) {
	if _, err := s.node(); err != nil {
		return Scope{}, err
	}
	a := s.arena
	var idx int
	if k := len(a.free); k > 0 {
		idx = a.free[k-1]
		a.free = a.free[:k-1]
	} else {
		a.nodes = append(a.nodes, &scopeNode{})
		idx = len(a.nodes) - 1
	}
	n := a.nodes[idx]
	n.live = true
	n.parent = s.index
	n.parentGen = s.gen
	n.reset()
	return Scope{arena: a, index: idx, gen: n.gen}, nil
}

// Collect clears s, retires its handle and returns the parent. Collecting
// the root is a no-op that returns the root.
func (s Scope) Collect() (Scope, error) {
	n, err := s.node()
	if err != nil {
		return Scope{}, err
	}
	if n.parent < 0 {
		return s, nil
	}
	parent := Scope{arena: s.arena, index: n.parent, gen: n.parentGen}
	n.vars, n.locals, n.consts, n.funcs, n.cmds, n.blocks = nil, nil, nil, nil, nil, nil
	n.live = false
	n.gen++
	s.arena.free = append(s.arena.free, s.index)
	return parent, nil
}

// CollectMerged copies the variables s acquired by plain assignment into
// the parent, then collects s. Names bound with DeclareVariable stay local.
func (s Scope) CollectMerged() (Scope, error) {
	n, err := s.node()
	if err != nil {
		return Scope{}, err
	}
	if n.parent >= 0 {
		parent := Scope{arena: s.arena, index: n.parent, gen: n.parentGen}
		if _, err := parent.node(); err == nil {
			for name, v := range n.vars {
				if n.locals[name] {
					continue
				}
				if err := parent.SetVariable(name, v); err != nil {
					return Scope{}, err
				}
			}
		}
	}
	return s.Collect()
}

// find walks from s to the root and returns the first scope whose table
// (picked by has) binds name.
func (s Scope) find(name string, has func(*scopeNode, string) bool) (Scope, bool, error) {
	cur := s
	for {
		n, err := cur.node()
		if err != nil {
			return Scope{}, false, err
		}
		if has(n, name) {
			return cur, true, nil
		}
		if n.parent < 0 {
			return Scope{}, false, nil
		}
		cur = Scope{arena: s.arena, index: n.parent, gen: n.parentGen}
	}
}

func hasVar(n *scopeNode, name string) bool     { _, ok := n.vars[name]; return ok }
func hasConst(n *scopeNode, name string) bool   { _, ok := n.consts[name]; return ok }
func hasFunc(n *scopeNode, name string) bool    { _, ok := n.funcs[name]; return ok }
func hasCmd(n *scopeNode, name string) bool     { _, ok := n.cmds[name]; return ok }
func hasBlock(n *scopeNode, name string) bool   { _, ok := n.blocks[name]; return ok }
func hasBinding(n *scopeNode, name string) bool { return hasVar(n, name) || hasConst(n, name) }

// FindVariableScope returns the scope declaring variable name
func (s Scope) FindVariableScope(name string) (Scope, bool, error) {
	return s.find(foldName(name), hasVar)
}

// FindConstantScope returns the scope declaring constant name
func (s Scope) FindConstantScope(name string) (Scope, bool, error) {
	return s.find(foldName(name), hasConst)
}

// FindFunctionScope returns the scope registering function name
func (s Scope) FindFunctionScope(name string) (Scope, bool, error) {
	return s.find(foldName(name), hasFunc)
}

// FindCommandScope returns the scope registering command name
func (s Scope) FindCommandScope(name string) (Scope, bool, error) {
	return s.find(foldName(name), hasCmd)
}

// FindBlockScope returns the scope registering block opener name
func (s Scope) FindBlockScope(name string) (Scope, bool, error) {
	return s.find(foldName(name), hasBlock)
}

// Lookup resolves name to a variable or constant, nearest scope first.
func (s Scope) Lookup(name string) (Value, bool, error) {
	key := foldName(name)
	found, ok, err := s.find(key, hasBinding)
	if err != nil || !ok {
		return Value{}, false, err
	}
	n, _ := found.node()
	if v, ok := n.vars[key]; ok {
		return v, true, nil
	}
	return n.consts[key], true, nil
}

// GetVariable resolves a variable through the chain
func (s Scope) GetVariable(name string) (Value, bool, error) {
	key := foldName(name)
	found, ok, err := s.find(key, hasVar)
	if err != nil || !ok {
		return Value{}, false, err
	}
	n, _ := found.node()
	return n.vars[key], true, nil
}

// GetConstant resolves a constant through the chain
func (s Scope) GetConstant(name string) (Value, bool, error) {
	key := foldName(name)
	found, ok, err := s.find(key, hasConst)
	if err != nil || !ok {
		return Value{}, false, err
	}
	n, _ := found.node()
	return n.consts[key], true, nil
}

func constantError(name string) *Error {
	return &Error{Status: StatusConstant, Message: "cannot redefine constant", Name: name, Pos: -1}
}

// SetVariable assigns where name is already declared, or declares it in s.
func (s Scope) SetVariable(name string, v Value) error {
	key := foldName(name)
	if _, isConst, err := s.find(key, hasConst); err != nil {
		return err
	} else if isConst {
		return constantError(name)
	}
	target, ok, err := s.find(key, hasVar)
	if err != nil {
		return err
	}
	if !ok {
		target = s
	}
	n, err := target.node()
	if err != nil {
		return err
	}
	n.vars[key] = v
	return nil
}

// DeclareVariable binds name in s itself, shadowing outer bindings.
func (s Scope) DeclareVariable(name string, v Value) error {
	key := foldName(name)
	if _, isConst, err := s.find(key, hasConst); err != nil {
		return err
	} else if isConst {
		return constantError(name)
	}
	n, err := s.node()
	if err != nil {
		return err
	}
	n.vars[key] = v
	n.locals[key] = true
	return nil
}

// SetConstant declares an immutable binding in s. It fails if the name is
// already a variable or constant anywhere in the chain.
func (s Scope) SetConstant(name string, v Value) error {
	key := foldName(name)
	if _, exists, err := s.find(key, hasBinding); err != nil {
		return err
	} else if exists {
		return constantError(name)
	}
	n, err := s.node()
	if err != nil {
		return err
	}
	n.consts[key] = v
	return nil
}

// Function resolves a function through the chain
func (s Scope) Function(name string) (*Callable, bool, error) {
	key := foldName(name)
	found, ok, err := s.find(key, hasFunc)
	if err != nil || !ok {
		return nil, false, err
	}
	n, _ := found.node()
	return n.funcs[key], true, nil
}

// SetFunction registers c in s
func (s Scope) SetFunction(c *Callable) error {
	n, err := s.node()
	if err != nil {
		return err
	}
	n.funcs[foldName(c.Name)] = c
	return nil
}

// Command resolves a command through the chain
func (s Scope) Command(name string) (*Callable, bool, error) {
	key := foldName(name)
	found, ok, err := s.find(key, hasCmd)
	if err != nil || !ok {
		return nil, false, err
	}
	n, _ := found.node()
	return n.cmds[key], true, nil
}

// SetCommand registers c in s
func (s Scope) SetCommand(c *Callable) error {
	n, err := s.node()
	if err != nil {
		return err
	}
	n.cmds[foldName(c.Name)] = c
	return nil
}

// Block resolves a block opener through the chain
func (s Scope) Block(name string) (BlockConstructor, bool, error) {
	key := foldName(name)
	found, ok, err := s.find(key, hasBlock)
	if err != nil || !ok {
		return nil, false, err
	}
	n, _ := found.node()
	return n.blocks[key], true, nil
}

// SetBlock registers a block opener in s
func (s Scope) SetBlock(name string, ctor BlockConstructor) error {
	n, err := s.node()
	if err != nil {
		return err
	}
	n.blocks[foldName(name)] = ctor
	return nil
}

// VariableNames lists the variables declared directly in s
func (s Scope) VariableNames() ([]string, error) {
	n, err := s.node()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(n.vars))
	for name := range n.vars {
		names = append(names, name)
	}
	return names, nil
}
