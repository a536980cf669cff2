// Command appgridlog sends a single log event to AppGrid or reports the
// level configured there.
//
//	appgridlog send --level error --message "playback failed" --facility 1 --code 2
//	appgridlog level
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "appgridlog:", err)
		os.Exit(1)
	}
}
