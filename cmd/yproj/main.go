// Command yproj inspects and edits YAML project files.
//
// Usage:
//
//	yproj check [FILE]
//	yproj export [FILE] [-o OUT] [--tag TAG]
//	yproj history [FILE]
//	yproj spec [FILE]
//	yproj structs [FILE] [--dump]
//	yproj set [FILE] FIELD VALUE
//
// FILE defaults to $YPROJ_FILE, then project.yml.
package main

import (
	"os"

	"yproj/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
