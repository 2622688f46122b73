package main

import "github.com/theirongolddev/debtfree/cmd"

func main() {
	cmd.Execute()
}
