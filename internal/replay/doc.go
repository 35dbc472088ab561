// Package replay turns a typed stream of match-replay events into rows of
// five tables: per-tick player snapshots, deaths, weapon fire, utility
// lifecycle and bomb lifecycle.
//
// A Source pushes events one at a time. The Engine gates everything on the
// official match start, reads tick and round from the live Directory at the
// moment each event is delivered, synthesizes "<category>_thrown" utility
// rows from weapon fire while a grenade is equipped, and records a final
// snapshot of every death victim. Records go straight to the Sink of their
// table; nothing is buffered between events.
package replay
