package ui

import (
	"fmt"
	"io"
	"os"
)

// ASCIILogo is printed at startup
const ASCIILogo = `
    ╔════════════════════════════════════════════════════════════╗
    ║  ███████╗███╗   ███╗ ██████╗      ██╗██╗                    ║
    ║  ██╔════╝████╗ ████║██╔═══██╗     ██║██║                    ║
    ║  █████╗  ██╔████╔██║██║   ██║     ██║██║                    ║
    ║  ██╔══╝  ██║╚██╔╝██║██║   ██║██   ██║██║                    ║
    ║  ███████╗██║ ╚═╝ ██║╚██████╔╝╚█████╔╝██║  SCRAPER           ║
    ║  ╚══════╝╚═╝     ╚═╝ ╚═════╝  ╚════╝ ╚═╝                    ║
    ╚════════════════════════════════════════════════════════════╝
`

// Banner tells the user how to finish a collection run
const Banner = `After all custom emojis are registered, press any key in the chat window or this terminal, or type "save()" in the browser console to save.`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Orchid  = colorize("\033[1;38;5;170m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

var (
	out       io.Writer = os.Stdout
	colorMode           = true
	quietMode           = false
)

// SetOutput redirects all printing; nil restores stdout
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	out = w
}

// SetColor enables or disables ANSI colors
func SetColor(enabled bool) {
	colorMode = enabled
}

// SetQuietMode suppresses everything but errors
func SetQuietMode(quiet bool) {
	quietMode = quiet
}

// IsQuietMode reports whether quiet mode is on
func IsQuietMode() bool {
	return quietMode
}

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if !colorMode {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	if quietMode {
		return
	}
	fmt.Fprint(out, Cyan(ASCIILogo))
}

// PrintBanner prints the collection instructions
func PrintBanner() {
	fmt.Fprintln(out, Orchid(Banner))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(out, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(out, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	if quietMode {
		return
	}
	fmt.Fprintln(out, Green(msg))
}

// PrintInfo prints a labelled value
func PrintInfo(label string, value string) {
	if quietMode {
		return
	}
	fmt.Fprintf(out, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if quietMode {
		return
	}
	if len(args) > 0 {
		fmt.Fprintln(out, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(out, Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	if quietMode {
		return
	}
	fmt.Fprintln(out, Magenta(msg))
}
