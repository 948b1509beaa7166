package main

import (
	cmd "github.com/anvik-1/spacetime-crawler/internal/cli"
)

func main() {
	cmd.Execute()
}
