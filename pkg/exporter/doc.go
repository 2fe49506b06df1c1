// Package exporter turns the collected state into emoji-data.json.
//
// Save stops the scan scheduler, serializes servers and emojis as indented
// JSON, replaces every non-ASCII character with "." and hands the bytes to a
// Deliverer. The storage manager (file on disk) and the browser download
// deliverer both implement Deliverer.
package exporter
