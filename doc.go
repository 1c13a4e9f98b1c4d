// Package rsm contains the client for the rsm task and reminder service.
// The client manages tables (named collections) and their tasks by issuing
// one HTTP call per subcommand, and owns the local credential state: a
// long-lived account key used only during login and a session token
// captured from the cookies the server sets.
//
// The Client's methods map one to one onto the backend endpoints. They are
// stateless per call and never interpret a server-reported error payload;
// that is the caller's decision. The AuthFlow orchestrates the interactive
// flows (first-run enrollment, logout, key rotation) and is the only part
// of the package that writes the config back.
//
// ParseDue and ResolveInput normalize user input before it is handed to
// the client: the former turns "HH:MM" or "YYYY-MM-DD HH:MM" into an
// ISO-8601 local timestamp, the latter resolves the task body from either
// inline text or a slice of a file.
package rsm // import "github.com/DevTommyy/cli-client"
