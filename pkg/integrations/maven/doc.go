// Package maven reads Maven-layout HTTP repositories.
//
// # Overview
//
// [Client] implements both collaborators a dependency collection needs:
//
//   - [resolve.VersionRangeResolver]: ranges such as "[1.0,2.0)" are matched
//     against maven-metadata.xml of every repository in the request.
//     Plain versions resolve to themselves without a lookup; LATEST and
//     RELEASE pick the newest value reported.
//   - [resolve.DescriptorReader]: reads "<group path>/<name>/<version>/
//     <name>-<version>.pom" from the first repository that has it.
//
// # POM support
//
// Decoded: dependencies (scope, optional, type, classifier, systemPath,
// exclusions), dependencyManagement, repositories and
// distributionManagement/relocation. ${...} placeholders are expanded from
// <properties> and the project coordinates. Dependencies missing a version
// or scope take it from the same POM's dependencyManagement.
//
// Parent POMs and import-scoped BOMs are not followed, so values inherited
// from a parent stay unresolved; dependencies whose coordinates keep a
// placeholder are skipped.
//
// # Caching
//
// Version lists and raw POMs are cached through [cache.Cache] under keys
// from the client's [cache.Keyer], per repository URL. Options.Refresh
// rewrites entries without reading them; Options.Offline serves the cache
// only.
//
// # Usage
//
//	c, _ := cache.New(ctx, cache.Config{})
//	client := maven.NewClient(c, maven.Options{})
//	coll, _ := collect.New(client, client, repository.NewManager(), collect.Options{})
package maven
