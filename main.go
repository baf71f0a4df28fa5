package main

import "github.com/openvisage/facegate/cmd"

func main() {
	cmd.Execute()
}
