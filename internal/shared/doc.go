// Package shared holds cross-cutting helpers that do not belong to any
// single domain package. Currently this is the testutil subpackage with
// logging capture helpers for tests.
//
// Code here must stay free of business logic and of dependencies on the
// other internal packages.
package shared
