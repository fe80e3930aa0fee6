// Package policy provides the stock selectors, managers and traversers for
// dependency collection.
//
// Every policy here implements collect.Keyed, so nodes expanded under equal
// policies are shared by the collector.
//
// [NewSession] assembles the usual Maven-style combination from session
// properties:
//
//	cfg := session.New(map[string]string{session.PropExcludedScopes: "test,provided"})
//	sess := policy.NewSession(cfg)
//	res, err := collector.Collect(ctx, sess, req)
package policy
