package main

import "github.com/aweris/datmatch/cmd/datmatch/cmd"

func main() {
	cmd.Execute()
}
