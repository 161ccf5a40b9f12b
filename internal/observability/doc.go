// Package observability provides leveled console logging, a JSON Lines
// journal of task store events, and metrics derived from that journal.
package observability
