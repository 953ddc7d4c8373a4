// Package sqlite keeps a journal of transmitted scripts in a SQLite database.
package sqlite
