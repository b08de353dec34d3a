package main

import "github.com/jsando/jbc/cmd"

func main() {
	cmd.Execute()
}
