package main

import "github.com/fbo-launchpad/fuel-ops/cmd"

func main() {
	cmd.Execute()
}
