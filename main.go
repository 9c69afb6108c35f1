package main

import "github.com/notargets/goale/cmd"

func main() {
	cmd.Execute()
}
