package main

import "github.com/matheuskafuri/tradewire/cmd"

// Overridden with -ldflags "-X main.version=..." at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)
	cmd.Execute()
}
