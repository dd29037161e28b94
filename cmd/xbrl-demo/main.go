package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	xbrl "github.com/RxDataLab/go-xbrl"
	"github.com/RxDataLab/go-xbrl/webcache"
)

func main() {
	online := flag.Bool("online", false, "Fetch remote taxonomies missing from the cache")
	userAgent := flag.String("user-agent", "xbrl-demo/1.0", "User-Agent for remote fetches")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <entry-point>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Example:\n")
		fmt.Fprintf(os.Stderr, "  %s -online testdata/instance.xml\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Loads an XBRL entry point and prints a summary of its DTS.\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	entry := flag.Arg(0)

	s := xbrl.NewSession(xbrl.Options{
		Resolver: webcache.New(webcache.Config{UserAgent: *userAgent, WorkOffline: !*online}),
	})

	fmt.Fprintf(os.Stderr, "Loading: %s\n", entry)
	doc, err := s.Load(context.Background(), entry, xbrl.LoadRequest{IsEntry: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading entry point: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()
	fmt.Fprintf(os.Stderr, "✓ Loaded %s as %s\n", doc.BaseName(), doc.Type)

	// Documents by type
	counts := make(map[string]int)
	for _, d := range s.Documents() {
		counts[d.Type.String()]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════")
	fmt.Println("           DTS Summary")
	fmt.Println("═══════════════════════════════════════════════════")
	fmt.Printf("%-35s %15s\n", "Item", "Count")
	fmt.Printf("%-35s %15s\n", "─────────────────────────────────", "──────────────")
	for _, t := range types {
		printCount("Documents: "+t, counts[t])
	}
	printCount("Concepts", len(s.Concepts))
	printCount("Role types", len(s.RoleTypes))
	printCount("Arcrole types", len(s.ArcroleTypes))
	printCount("Base sets", s.BaseSets.Len())
	printCount("Contexts", len(s.Contexts))
	printCount("Units", len(s.Units))
	printCount("Facts", len(s.Facts))
	printCount("Diagnostics", len(s.Diagnostics()))
	fmt.Println("═══════════════════════════════════════════════════")

	for _, d := range s.Diagnostics().Errors() {
		fmt.Fprintf(os.Stderr, "  %s\n", d)
	}
}

func printCount(label string, n int) {
	if n == 0 {
		return
	}
	fmt.Printf("%-35s %15d\n", label, n)
}
