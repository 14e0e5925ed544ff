package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"factura/internal"
	"factura/internal/catalog"
	"factura/internal/config"
	"factura/internal/pipeline"
	"factura/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "parse":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		docType := fs.String("type", "facture", "facture|avoir")
		ndjson := fs.Bool("ndjson", false, "one JSON object per line instead of a JSON array")
		csvPath := fs.String("csv", "", "write extracted lines to a CSV file")
		xlsxPath := fs.String("xlsx", "", "write extracted lines to an XLSX file")
		updateStock := fs.Bool("update-stock", false, "PATCH stock deltas (facture decrements, avoir increments)")
		updateReason := fs.String("update-reason", "", "reason sent with the stock PATCH")
		refresh := fs.Bool("refresh-products", false, "force a products cache refresh")
		verbose := fs.Bool("verbose-lookups", false, "attach lookup status/message to the output")
		_ = fs.Parse(os.Args[2:])
		if fs.NArg() != 1 {
			must(fmt.Errorf("usage: factura parse [flags] <pdf>"))
		}
		if *docType != "facture" && *docType != "avoir" {
			must(fmt.Errorf("unsupported type: %s", *docType))
		}

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		svc := pipeline.NewService(db, cfg)
		result, err := svc.ProcessPDF(context.Background(), fs.Arg(0), pipeline.Options{
			DocType:         internal.DocType(*docType),
			UpdateStock:     *updateStock,
			UpdateReason:    *updateReason,
			RefreshProducts: *refresh,
			VerboseLookups:  *verbose,
		})
		must(err)

		switch {
		case *csvPath != "":
			must(pipeline.WriteCSV(*csvPath, result.Lines))
			fmt.Printf("wrote %d lines to %s\n", len(result.Lines), *csvPath)
		case *xlsxPath != "":
			must(pipeline.ExportXLSX(*xlsxPath, result.Lines))
			fmt.Printf("wrote %d lines to %s\n", len(result.Lines), *xlsxPath)
		case *ndjson:
			must(pipeline.WriteNDJSON(os.Stdout, result.Lines))
		default:
			must(pipeline.WriteJSON(os.Stdout, result.Lines))
		}
	case "catalog:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		refresh := fs.Bool("refresh", false, "bypass the local cache")
		_ = fs.Parse(os.Args[2:])

		endpoints := config.LoadEndpoints(cfg.EndpointsPath)
		client := catalog.NewClient(endpoints, config.LoadAPIKey(cfg.APIKeyPath), cfg.HTTPTimeoutMs)
		result := client.FetchProducts(context.Background(), cfg.ProductsCache, *refresh)
		fmt.Printf("catalog fetch done products=%d status=%s\n", len(result.Products), result.Status)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: factura <command>")
	fmt.Println("commands:")
	fmt.Println("  parse [--type=facture|avoir] [--ndjson] [--csv=out.csv] [--xlsx=out.xlsx]")
	fmt.Println("        [--update-stock] [--update-reason=...] [--refresh-products] [--verbose-lookups] <pdf>")
	fmt.Println("  catalog:fetch [--refresh]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
