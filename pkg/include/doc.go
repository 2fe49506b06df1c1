// Package include implements the include.txt selection language.
//
// Each non-blank line that does not start with "// " is either a server line
// or an emoji line:
//
//	+ all                  include every server's emojis
//	- "Server name"        exclude one server
//	/^Gaming/              select servers by regex without changing the result
//	    - "sadcat"         exclude an emoji of the selected servers
//	    + /^party/         include matching emojis of the selected servers
//
// Server lines may start with "+ " (include), "- " (exclude) or nothing
// (select only). Emoji lines are indented by four spaces and must carry a
// "+ " or "- " mode. Any search may be followed by a " // comment".
package include
