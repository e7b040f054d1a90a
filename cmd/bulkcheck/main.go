// Command bulkcheck validates bulk waste movement CSV files offline and
// prepares upload templates.
//
//	bulkcheck validate movements.csv
//	bulkcheck template --xlsx template.xlsx
//	bulkcheck pack movements.csv movements.json
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
