// Package dist is the aggregate over one distribution: its identity, stage
// graph, backing services and the descriptor files they came from. All
// mutations happen in memory; Save regenerates descriptor text and writes it
// atomically.
package dist
