package main

import (
	"flag"
	"os"
	"os/exec"

	"github.com/goyek/goyek/v2"
)

var matrix = flag.String("matrix", "matrix.yaml", "matrix config used by the verify task")

func run(a *goyek.A, name string, args ...string) {
	a.Helper()
	a.Log(name, args)
	cmd := exec.CommandContext(a.Context(), name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		a.Error(err)
	}
}

var vet = goyek.Define(goyek.Task{
	Name:  "vet",
	Usage: "Run go vet on all packages",
	Action: func(a *goyek.A) {
		run(a, "go", "vet", "./...")
	},
})

var test = goyek.Define(goyek.Task{
	Name:  "test",
	Usage: "Run unit tests with the race detector",
	Action: func(a *goyek.A) {
		run(a, "go", "test", "-race", "./...")
	},
})

var _ = goyek.Define(goyek.Task{
	Name:  "verify",
	Usage: "Run the plugin matrix described by -matrix (needs the package manager and build tool)",
	Deps:  goyek.Deps{vet, test},
	Action: func(a *goyek.A) {
		run(a, "go", "run", "./cmd/pluginmatrix", "run", "-c", *matrix)
	},
})

var all = goyek.Define(goyek.Task{
	Name:  "all",
	Usage: "vet and test",
	Deps:  goyek.Deps{vet, test},
})

func main() {
	flag.Parse()
	goyek.SetDefault(all)
	goyek.Main(flag.Args())
}
