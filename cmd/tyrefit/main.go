package main

import "github.com/abramovychmax-cpu/under-preassure-tyre/cmd/tyrefit/cmd"

func main() {
	cmd.Execute()
}
