package main

import "github.com/lepinkainen/movierating/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
