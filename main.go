package main

import "github.com/folio-dev/folio/cmd"

func main() {
	cmd.Execute()
}
