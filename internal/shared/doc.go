// Package shared holds cross-cutting helpers that belong to no single
// domain package. Today that is the testutil subpackage: the buffered slog
// handler and assertions the parser and exporter tests use to check what
// was logged. Production code must not import anything under shared/testutil.
package shared
