// Package observe provides logging, tracing and metrics for wrapped
// operations.
//
// It is a pure instrumentation library: no execution and no I/O beyond
// exporter setup and log output. The endpoint package wires an Observer
// around every call it makes.
package observe
