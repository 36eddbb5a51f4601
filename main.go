package main

import "github.com/doorman-ac/doorman/cmd"

func main() {
	cmd.Execute()
}
