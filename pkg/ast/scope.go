package ast

import "slices"

// ScopeID indexes a scope in a Scopes arena.
type ScopeID int32

// NoScope is the parent of the file scope.
const NoScope ScopeID = -1

// ScopeKind classifies a scope.
type ScopeKind uint8

// Scope kinds.
const (
	ScopeFile ScopeKind = iota
	ScopeAggregate
	ScopeFunction
	ScopeBlock
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFile:
		return "file"
	case ScopeAggregate:
		return "aggregate"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Scope is one lexical scope. Relationships are arena indices.
type Scope struct {
	Kind     ScopeKind
	Parent   ScopeID
	Children []ScopeID
	Names    []Name
}

// Scopes owns every scope of a file.
type Scopes struct {
	list []Scope
}

// NewScopes returns an empty arena.
func NewScopes() *Scopes {
	return &Scopes{}
}

// Len returns the number of scopes.
func (s *Scopes) Len() int {
	return len(s.list)
}

// Open adds a scope under parent and returns its id.
func (s *Scopes) Open(kind ScopeKind, parent ScopeID) ScopeID {
	id := ScopeID(len(s.list))
	s.list = append(s.list, Scope{Kind: kind, Parent: parent})
	if parent != NoScope {
		p := &s.list[parent]
		p.Children = append(p.Children, id)
	}
	return id
}

// Get returns the scope with the given id.
func (s *Scopes) Get(id ScopeID) *Scope {
	return &s.list[id]
}

// Declare records name in scope id.
func (s *Scopes) Declare(id ScopeID, name Name) {
	if id == NoScope || !name.Valid() {
		return
	}
	sc := &s.list[id]
	sc.Names = append(sc.Names, name)
}

// Lookup searches id and its ancestors for a name with the given interned id
// and returns the scope declaring it.
func (s *Scopes) Lookup(id ScopeID, name uint16) (ScopeID, bool) {
	for id != NoScope {
		sc := &s.list[id]
		for _, n := range sc.Names {
			if n.ID == name {
				return id, true
			}
		}
		id = sc.Parent
	}
	return NoScope, false
}

// Mark is a restorable arena state.
type Mark struct {
	scopes int
	names  []int
}

// Mark records the current arena state.
func (s *Scopes) Mark() Mark {
	m := Mark{scopes: len(s.list), names: make([]int, len(s.list))}
	for i := range s.list {
		m.names[i] = len(s.list[i].Names)
	}
	return m
}

// Reset discards every scope and declaration added after m was taken.
func (s *Scopes) Reset(m Mark) {
	s.list = s.list[:m.scopes]
	for i := range s.list {
		sc := &s.list[i]
		sc.Names = sc.Names[:m.names[i]]
		sc.Children = slices.DeleteFunc(sc.Children, func(c ScopeID) bool {
			return int(c) >= m.scopes
		})
	}
}
