package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/propwatch/propwatch/cmd/codegen/templates"
	"github.com/urfave/cli/v3"
)

const (
	arityCountKey = "count"
	outputKey     = "out"
)

func main() {
	cmd := &cli.Command{
		Name:  "generate",
		Usage: "Generate the typed combinator arity wrappers",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  arityCountKey,
				Usage: "Highest combinator arity to generate",
				Value: 8,
			},
			&cli.StringFlag{
				Name:  outputKey,
				Usage: "Output file",
				Value: "combine/arities.go",
			},
		},
		Action: generate,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func generate(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	log.Printf("Codegen for combine started!")
	defer func() {
		log.Printf("Codegen for combine finished in %v", time.Since(start))
	}()

	maxArity := int(cmd.Uint(arityCountKey))
	out := cmd.String(outputKey)
	log.Printf("Max arity: %d", maxArity)

	contents := templates.AritiesGen(maxArity)
	return os.WriteFile(out, []byte(contents), 0644)
}
