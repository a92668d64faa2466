// Package testutil adds test-only lifecycle hooks to components.
//
// A TestComponent is a regular component.Component that can also be reset
// and snapshotted, so one fake cluster can be shared across subtests:
//
//	func TestStore(t *testing.T) {
//	    cluster := cassandratest.NewComponent()
//	    testutil.T(t).Setup(cluster)
//	    ...
//	    testutil.T(t).Reset(cluster)
//	}
package testutil
