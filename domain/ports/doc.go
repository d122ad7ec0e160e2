// Package ports defines the interfaces at the two edges of the bridge: the
// compute engine it drives and the host object it reports to. Adapters in
// engine and the root compute package implement them.
package ports
