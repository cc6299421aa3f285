// Package history persists probe outcomes in a SQLite database.
//
// Each call to Add stores one probed file with its outcome, the negotiated
// stream geometry when headers were accepted, and the session identifier
// that tags the matching log lines. Writes retry briefly when another
// process holds the database lock.
package history
