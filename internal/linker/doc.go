// Package linker backfills canonical identifiers into secondary records.
//
// For each secondary record without a canonical link the linker looks up the
// record's first|last name key in the canonical name index. Only an index
// hit with exactly one candidate produces a link; no hit and ambiguous hits
// leave the record unchanged and are not errors.
//
// When a link is found each configured field is merged with Update, which
// never replaces a populated value. The linker reads the canonical registry
// and its index but never mutates them, and it never mutates input records:
// every Result carries its own copy of the cells.
package linker
