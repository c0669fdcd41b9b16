// Package testutil contains helper kernels and builders used across tests to
// reduce boilerplate when constructing stacks and stateful functors. These
// helpers are intentionally minimal and are not intended for production usage.
package testutil
