package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/meikuraledutech/narrative"
	"go.uber.org/zap"
)

//go:embed domain.yaml
var domainYAML string

func main() {
	ctx := context.Background()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// ── Load + validate ───────────────────────────────────────────────
	domain, err := narrative.DecodeDomainYAML(strings.NewReader(domainYAML))
	if err != nil {
		log.Fatalf("decode: %v", err)
	}
	if problems := narrative.Validate(domain); len(problems) > 0 {
		for _, p := range problems {
			fmt.Println("problem:", p)
		}
		log.Fatal("domain is not well-formed")
	}

	// ── Build + query ─────────────────────────────────────────────────
	g, err := narrative.Build(domain)
	if err != nil {
		log.Fatalf("build: %v", err)
	}
	fmt.Println("leaves:", g.Leaves())
	fmt.Println("roots: ", g.Roots())
	fmt.Println("order: ", g.TopologicalOrder())

	// ── Enumerate + rank ──────────────────────────────────────────────
	ex := narrative.NewExplorer(g, narrative.WithLogger(logger), narrative.WithWorkers(2))
	ex.AddMetric("length", narrative.MetricFunc(func(t narrative.Trajectory) float64 {
		return float64(t.Len())
	}))

	ts, err := ex.Trajectories(4)
	if err != nil {
		log.Fatalf("trajectories: %v", err)
	}
	fmt.Printf("\n%d trajectories up to length 4\n", len(ts))

	for _, metric := range ex.Registry().Names() {
		scored, err := ex.Registry().Score(ts, metric)
		if err != nil {
			log.Fatalf("score: %v", err)
		}
		fmt.Printf("\ntop by %s:\n", metric)
		for _, s := range scored[:min(3, len(scored))] {
			fmt.Printf("  %.3f  %s\n", s.Score, s.Trajectory)
		}
	}

	// ── Random walk + render hook ─────────────────────────────────────
	walk, err := ex.RandomTrajectory(5)
	if err != nil {
		log.Fatalf("random: %v", err)
	}
	fmt.Println("\nrandom walk:", walk)
	printJSON(narrative.Beats(walk))

	var prompt strings.Builder
	for i, b := range narrative.Beats(walk) {
		fmt.Fprintf(&prompt, "%d. %s intends to %s %s at %s\n", i+1, b.Character, b.ID, b.Target, b.Location)
	}
	story, err := narrative.NopAdapter{}.Generate(ctx, prompt.String())
	if err != nil {
		log.Fatalf("generate: %v", err)
	}
	fmt.Println("\n" + story)
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
