// Package contrib provides additional functionality and utilities
// for the apiobject client.
//
// Note that this package is outside of the backward compatibility guarantees
// of the core client. Changes to this package may introduce breaking changes
// without following semantic versioning.
//
// [github.com/apiobject/apiobject.go/contrib/testenv] builds a Client for
// tests, either against a live service named by the environment or against
// an in-process fake.
package contrib
