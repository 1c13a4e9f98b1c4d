// The rsm program is a command-line client for the rsm reminder service.
//
// The first invocation walks through enrollment: users without a key sign
// up with a username and password, then log in with the key the server
// handed out; the resulting session token is stored in the config file and
// replayed on every later call. "rsm new-key" rotates a lost key and forces
// a fresh login in the same run; "rsm logout" asks for confirmation and
// wipes the local credentials only after the server acknowledged.
//
// Tables are managed with create, drop, and clear; their tasks with add,
// update, remove, and list. Task text can be given inline with -t, or taken
// from a file with -f, optionally restricted to one line (-l N) or to a
// half-open line range (-r START..END). Due times accept "hh:mm", meaning
// today or tomorrow depending on whether the time already passed, or a full
// "YYYY-MM-dd hh:mm".
package main
