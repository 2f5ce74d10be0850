// Package design defines the design graph produced by script evaluation.
// The graph is an immutable DAG of thread parts, placements and assemblies;
// each evaluation produces a new graph.
package design
