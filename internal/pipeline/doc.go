// Package pipeline runs one link pass from input files to output file.
//
// A Pipeline owns every piece of run state: the secondary registry, the
// claimed identifier set, the canonical registry with its name index, and the
// linker results. Nothing is held in package variables, so stages can be
// driven individually (the harness feeds them in-memory rows) or all at once
// through Run.
//
// Stage order is fixed and enforced:
//
//  1. LoadSecondary (header, records, claimed identifiers)
//  2. LoadCanonical (skips claimed identifiers, builds the name index)
//  3. Link (every secondary record, in order)
//  4. output and audit
//
// Output is written atomically and only after every record has been linked,
// so a failed run never leaves a partial file behind.
package pipeline
