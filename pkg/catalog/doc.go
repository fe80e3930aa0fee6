// Package catalog is an in-memory artifact repository described by a TOML
// document. It implements [resolve.VersionRangeResolver] and
// [resolve.DescriptorReader], so a collection can run without network
// access: the CLI uses it with --catalog, tests and examples use it as a
// fixture.
//
// # Format
//
//	[[repository]]
//	id  = "internal"
//	url = "https://repo.example.org/maven2"
//
//	[[artifact]]
//	coordinate = "org.example:app"
//	repository = "internal"          # optional: pins every release to it
//
//	  [[artifact.release]]
//	  version = "1.0"
//
//	    [[artifact.release.dependency]]
//	    coordinate = "org.example:lib:[1.0,2.0)"
//	    scope      = "runtime"
//	    exclusions = ["org.bad:*"]
//
//	    [[artifact.release.managed]]
//	    coordinate = "org.example:core:1.2"
//
//	[[artifact]]
//	coordinate = "org.legacy:lib"
//
//	  [[artifact.release]]
//	  version    = "1.0"
//	  relocation = "org.example:lib:1.0"
//
// Artifacts are matched by group and name; extension and classifier of the
// request are kept. A repository value of "local" pins releases to a
// [repository.LocalRepository] rooted at the catalog's directory.
package catalog
