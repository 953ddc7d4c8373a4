// Package process evaluates scripts in an external JavaScript interpreter such as
// Node.js. Each call starts a new process, so state does not survive between calls.
package process
