package util

import (
	"encoding/json"
	"fmt"
	"os"
)

// Debug pretty-prints a value to stdout under a marker. Meant for demo and
// diagnostic output, not for the hot path.
func Debug(marker string, value interface{}) {
	data, err := json.MarshalIndent(value, "", "    ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", marker, err)
		return
	}
	fmt.Printf("%s:\n%s\n", marker, data)
}
