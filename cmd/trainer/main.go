package main

import "shampoo-demand-api/internal/cli"

func main() {
	cli.Execute()
}
