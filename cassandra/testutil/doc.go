// Package testutil provides testing utilities for the cassandra module.
//
// Cluster is an in-memory implementation of cassandra.Executor that
// understands the fixed statement shapes the stores issue, including
// per-cell TTLs against an injectable clock. Component wraps a Cluster and
// implements both component.Component and testutil.TestComponent.
//
// # Quick Start
//
//	cas := testutil.NewComponent()
//	testutil.T(t).Setup(cas)
//
//	store := session.New(cas.Cluster())
//
// # Assertions
//
//	cas.Cluster().Statements() // every statement executed, in order
//	cas.Cluster().FailNext(err) // the next Execute returns err
package testutil
