package main

import (
	"flag"
	"log"
	"os"

	"github.com/funvibe/tagops/internal/config"
	"github.com/funvibe/tagops/internal/script"
	"github.com/funvibe/tagops/internal/tagops"
)

func main() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	path := flag.String("config", "", "path to a tagops.yaml declaration file")
	trace := flag.Bool("trace", false, "log failing override callbacks")
	flag.Parse()

	if *path == "" {
		found, err := config.FindConfig(".")
		if err != nil {
			log.Fatal(err)
		}
		*path = found
	}

	rt := tagops.New(tagops.Options{Trace: *trace})
	if *path != "" {
		cfg, err := config.LoadConfig(*path)
		if err != nil {
			log.Fatal(err)
		}
		// Handlers are bound but never called here; an empty machine keeps
		// every reference valid.
		ref := rt.Scripts.Load(script.NewMachine())
		if err := tagops.Apply(rt, cfg, ref); err != nil {
			log.Fatalf("%s: %v", *path, err)
		}
	}

	report(os.Stdout, rt, useColor())
}
