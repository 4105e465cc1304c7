package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/simonjohansson/jobboard/internal/jobboard"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	os.Exit(jobboard.Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Environ()))
}
