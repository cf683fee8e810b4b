// SPDX-License-Identifier: MPL-2.0

// Package pymod discovers Python program units (modules and packages)
// through an ordered, pluggable search path, without importing them.
//
// An Explorer resolves dotted names to lazy Unit wrappers and produces
// traversals over the whole reachable unit graph. Resolution consults a
// shared registry of already-materialized units first, then scans the
// search path through per-location resolvers (directories and zip
// archives out of the box). A Unit answers "what names do you define,
// import, and export?" statically via pysyntax, or through live
// reflection once a host-supplied loader has materialized it.
package pymod
