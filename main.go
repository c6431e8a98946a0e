package main

import "github.com/dyike/QuantumGPT/internal/cli"

func main() {
	cli.Run()
}
