// Package page provides the DOM sources a collector.Scanner reads from.
//
//   - Rod: a live Chrome tab; every scan evaluates one script that returns
//     the matching elements and their first child as JSON
//   - HTMLFile: a saved HTML page, re-read on every scan so a file that is
//     updated by another process behaves like a live page
//   - Static: an in-memory element list, used by tests and demos
package page
