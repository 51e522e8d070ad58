// Package materialize turns an ontology's class hierarchy into graph nodes and edges.
//
// One pass over a source runs inside a single store transaction: the coordinator checks the
// source is consistent, resolves the annotation channels the source declares, creates the root
// node and then, for every class, resolves the class node by key, harvests its annotations into
// node properties and links it to its direct superclasses (or to the root). The pass commits
// atomically or leaves no trace.
package materialize
