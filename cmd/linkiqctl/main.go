// Command linkiqctl is a small operator tool for exercising the LinkIQ PHY
// stack offline: encoding an MBAL payload into a coded radio frame,
// decoding one back, or running both ends of a fixture loaded from a YAML
// file.
package main

import (
	"fmt"
	"os"

	"github.com/rmja/linkiq/internal/diagnostic"
)

var log = diagnostic.New("linkiqctl")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "encode":
		err = runEncode(os.Args[2:])
	case "decode":
		err = runDecode(os.Args[2:])
	case "demo":
		err = runDemo(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: linkiqctl <encode|decode|demo> [flags]")
}
