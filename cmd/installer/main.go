package main

import "github.com/aqasim81/schema-installer/internal/cli"

func main() {
	cli.Execute()
}
