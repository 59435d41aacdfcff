package main

import "github.com/JukeboxMC/JBackwards/pkg/cmd/backwards"

func main() {
	backwards.Main()
}
