package main

import "github.com/spachava753/pluginmatrix/cmd/pluginmatrix/internal"

func main() {
	internal.Execute()
}
