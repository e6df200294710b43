package main

import "github.com/Infineon/mtb-manifest-checker/cmd"

func main() {
	cmd.Execute()
}
