// Package quota implements Redis-backed fixed-window usage quotas for
// metered operations such as AI-assisted exercises.
//
// # Window semantics
//
// Fixed-window counters: GET to check, INCR to consume, conditional EXPIRE
// on the first hit in a window. A blocked check never mutates the counter,
// so a user at the limit cannot push their own window forward by retrying.
package quota
