// Fenceline - enforcement telemetry and effectiveness scoring
// Record. Score. Alert.
package main

import (
	"os"
	"strings"
)

func main() {
	// Tool-call invocation: a single JSON action object instead of flags
	if len(os.Args) == 2 && strings.HasPrefix(strings.TrimSpace(os.Args[1]), "{") {
		ExecuteJSON(os.Args[1])
		return
	}

	Execute()
}
