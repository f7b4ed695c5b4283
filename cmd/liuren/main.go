// liuren is the command-line front end: casts, birth charts and the lookup tables.
//
// Usage:
//
//	liuren divine numbers 6 6 2
//	liuren divine date 2024-02-10 12:00
//	liuren divine chars 中,国,人 --db data/liuren.db
//	liuren bazi 1990-05-01 08:30 --gender M [--exact]
//	liuren elements
//	liuren daymaster 2024-02-10
//	liuren lunar 2020-05-23
//	liuren strokes 你好
package main

import (
	"fmt"
	"os"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
