// Package collect builds dependency graphs.
//
// # Overview
//
// A [Collector] starts from a root artifact (or a bare list of
// dependencies) and expands it recursively: every dependency's version
// expression is resolved to concrete versions, each version's descriptor is
// read, and its declared dependencies become children. The result is a
// [graph.Edge] whose target node hangs the complete graph, including
// conflicting versions of the same artifact. Conflict resolution is left to
// a [transform.Transformer] run at the end.
//
// The collector is driven by three policies, all carried by [Session]:
//
//   - [Selector] decides which dependencies enter the graph (scope and
//     optional filtering, exclusions)
//   - [Manager] overrides versions, scopes and exclusions before a
//     dependency is resolved
//   - [Traverser] decides whether a dependency's children are expanded
//
// Each policy derives a child policy per level, so a policy may behave
// differently for direct and transitive dependencies. Ready-made policies
// live in pkg/policy.
//
// # Sharing and cycles
//
// Within one collection, identical range and descriptor requests are
// answered once. A node whose children were expanded under the same
// repositories and the same policies is reused by every later edge that
// reaches it, so the result is a DAG rather than a tree. An edge whose
// artifact already appears on the path from the root (ignoring version
// qualifiers such as timestamped snapshots) is dropped to break cycles.
//
// # Errors
//
// Failures below the root are recorded on the [Result] and collection goes
// on with the next version or sibling. Failure to resolve the root aborts
// immediately. Either way Collect returns a *[CollectionError] when
// anything was recorded, wrapping the same Result so the partial graph is
// available.
//
// # Usage
//
//	c, err := collect.New(resolver, reader, repository.NewManager(), collect.Options{})
//	if err != nil {
//	    return err
//	}
//	sess := collect.NewSession(session.New(nil))
//	sess.Selector = policy.NewScopeSelector("test", "provided")
//	res, err := c.Collect(ctx, sess, collect.Request{Root: &root, Repositories: repos})
package collect
