package main

import "github.com/wan-andrea/recover-pdfCAD/cmd/pdfcad/cmd"

func main() {
	cmd.Execute()
}
