// Package cell provides the typed cell values shared by every registry.
//
// A row from either registry is a []Cell. Cell is a sealed interface: only
// Null, Int, Float and String implement it, so type switches over a Cell are
// exhaustive and the compiler-enforced set of variants is the full set of
// values the linker has to reason about.
//
// Key constraints:
//   - Secondary cells are Null, Int or String (never Float)
//   - Canonical cells are Null, Float or String (numeric cells are pre-typed)
//   - The literal NULL is matched case-insensitively with full Unicode casing
package cell
