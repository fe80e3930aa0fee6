// Package artifact defines the immutable coordinate values that flow through
// dependency collection.
//
// An [Artifact] names one concrete version of a file in a repository
// (group, name, version, classifier, extension, plus an open property bag).
// A [Dependency] pairs an artifact with a scope, an optional flag and a list
// of [Exclusion] patterns.
//
// # Identity
//
// Two artifacts are the same artifact when group, name, base version,
// extension and classifier match. The concrete version is left out so a
// timestamped snapshot ("1.0-20110101.123456-1") and its symbolic form
// ("1.0-SNAPSHOT") are treated as one:
//
//	a := artifact.MustParse("org.example:lib:1.0-20110101.123456-1")
//	b := artifact.MustParse("org.example:lib:1.0-SNAPSHOT")
//	artifact.Same(a, b) // true
//
// [Artifact.VersionlessID] is the coarser key used to match declared
// dependencies against descriptor-declared and managed entries.
package artifact
