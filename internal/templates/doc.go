// Package templates instantiates generic type and function declarations.
//
// A declaration is compiled once into a Generic: its parameters and a
// signature made of Patterns. At a use site the engine unifies the
// signature against the supplied arguments (Unify, Deduce, DeduceCall),
// picks the most specific of several same-named generics (SelectBest) and
// produces the concrete declaration exactly once per argument set.
//
// Instantiations are memoised in a Cache keyed by the generic's identity
// and its deduced arguments. The key is reserved before the body is built,
// so a body that mentions its own instantiation (a class holding a pointer
// to itself, a recursive function) observes the reserved entry instead of
// recursing.
//
// Everything the engine cannot know itself (scopes, compile-time
// evaluation, building bodies) comes from a Host, implemented by
// internal/sema.
package templates
