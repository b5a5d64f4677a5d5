// Command csvexport converts a JSON array of records into a CSV file.
//
// Usage:
//
//	# Write records.json to ./<unix-millis>.csv
//	csvexport records.json
//
//	# Pick and order columns, choose the file name and directory
//	csvexport --keys id,name -o people.csv -d out records.json
//
//	# Read from stdin and print the CSV instead of saving it
//	cat records.json | csvexport --stdout
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
