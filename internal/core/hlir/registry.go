package hlir

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewID allocates a 128-bit identifier rendered as lowercase hex, the
// stable token every registered entity is known by for its lifetime.
func NewID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(fmt.Sprintf("hlir: failed to generate id: %v", err))
	}
	return hex.EncodeToString(buf[:])
}

// entry is what the registry's id table stores for a live registration.
type entry struct {
	Namespace Namespace
	Name      string
	Entity    any
}

func nsNameKey(ns Namespace, name string) string {
	return string(ns) + "\x00" + name
}

// Registry is the ID registry: three tables (id -> entity, (namespace,
// name) -> id, identity -> id) supporting register-new,
// register-with-provided-id (update), remove, and lookup. A Registry is
// scoped to a single ProgramBuilder and is not safe for concurrent use,
// matching the single-threaded compiler.
type Registry struct {
	byID       map[string]entry
	byNsName   map[string]string
	byIdentity map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:       make(map[string]entry),
		byNsName:   make(map[string]string),
		byIdentity: make(map[string]string),
	}
}

func identityKey(entity any) string {
	return fmt.Sprintf("%p:%T", entity, entity)
}

// RegisterNew implements the "provided_id absent" branch of ProgramBuilder
// add semantics: duplicate (namespace, name) pairs are rejected, otherwise
// a fresh id is allocated.
func (r *Registry) RegisterNew(ns Namespace, name string, entity any) (string, BuilderResult) {
	key := nsNameKey(ns, name)
	if existing, ok := r.byNsName[key]; ok {
		return "", ResultDuplicate(existing)
	}
	id := NewID()
	r.byID[id] = entry{Namespace: ns, Name: name, Entity: entity}
	r.byNsName[key] = id
	r.byIdentity[identityKey(entity)] = id
	return id, ResultOK(id, entity)
}

// RegisterWithID implements the "provided_id supplied" branches of
// ProgramBuilder add semantics: if providedID is already registered, the
// old name binding is dropped and the same id now refers to the new
// entity (an update-in-place); otherwise the id is adopted as a
// caller-specified fresh registration (idempotent insert).
func (r *Registry) RegisterWithID(providedID string, ns Namespace, name string, entity any) BuilderResult {
	if old, ok := r.byID[providedID]; ok {
		delete(r.byNsName, nsNameKey(old.Namespace, old.Name))
		delete(r.byIdentity, identityKey(old.Entity))
	}
	r.byID[providedID] = entry{Namespace: ns, Name: name, Entity: entity}
	r.byNsName[nsNameKey(ns, name)] = providedID
	r.byIdentity[identityKey(entity)] = providedID
	return ResultOK(providedID, entity)
}

// Remove deletes a registration unconditionally. Dependency analysis is
// the caller's responsibility (ProgramBuilder.Remove performs it before
// calling this).
func (r *Registry) Remove(id string) (Namespace, string, any, bool) {
	e, ok := r.byID[id]
	if !ok {
		return "", "", nil, false
	}
	delete(r.byID, id)
	delete(r.byNsName, nsNameKey(e.Namespace, e.Name))
	delete(r.byIdentity, identityKey(e.Entity))
	return e.Namespace, e.Name, e.Entity, true
}

// LookupByID returns the entity currently registered under id.
func (r *Registry) LookupByID(id string) (Namespace, string, any, bool) {
	e, ok := r.byID[id]
	return e.Namespace, e.Name, e.Entity, ok
}

// LookupByName resolves a (namespace, name) pair to its id.
func (r *Registry) LookupByName(ns Namespace, name string) (string, bool) {
	id, ok := r.byNsName[nsNameKey(ns, name)]
	return id, ok
}

// LookupByIdentity resolves an entity reference back to its id, used when
// a caller holds a pointer rather than a name.
func (r *Registry) LookupByIdentity(entity any) (string, bool) {
	id, ok := r.byIdentity[identityKey(entity)]
	return id, ok
}

// NamesIn returns every name currently registered under a namespace, in
// no particular order.
func (r *Registry) NamesIn(ns Namespace) []string {
	var names []string
	for _, e := range r.byID {
		if e.Namespace == ns {
			names = append(names, e.Name)
		}
	}
	return names
}
