package main

import "github.com/rubiojr/timeit/cmd"

var version = "v0.2.0"

func main() {
	cmd.Execute(version)
}
