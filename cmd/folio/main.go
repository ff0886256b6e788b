package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A .env in the working directory can carry FOLIO_API_URL and
	// FOLIO_COUNTRY; absence is fine.
	_ = godotenv.Load()

	if err := execute(); err != nil {
		fmt.Fprintf(os.Stderr, "folio: %v\n", err)
		os.Exit(1)
	}
}
