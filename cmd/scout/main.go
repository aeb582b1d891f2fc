// Command scout runs one batch from the command line and writes the rows as CSV.
//
//	scout --input ids.txt --output result.csv
//	scout --keywords "バスタオル" --max 30
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/shelfscout/backend/config"
	"github.com/shelfscout/backend/internal/app"
	"github.com/shelfscout/backend/internal/delivery/csvexport"
	"github.com/shelfscout/backend/internal/domain"
	"github.com/shelfscout/backend/internal/usecase"
	"github.com/spf13/pflag"
)

func main() {
	var (
		inputPath  = pflag.StringP("input", "i", "", "file with ASINs or JAN codes, one per line (- for stdin)")
		keywords   = pflag.StringP("keywords", "k", "", "keyword query instead of an identifier list")
		maxResults = pflag.IntP("max", "n", 0, "maximum keyword results (default from config)")
		outputPath = pflag.StringP("output", "o", "", "CSV output path (default stdout)")
	)
	pflag.Parse()

	req, err := buildRequest(*inputPath, *keywords, *maxResults, pflag.Args())
	if err != nil {
		log.Fatalf("invalid arguments: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer services.Close()

	out := io.Writer(os.Stdout)
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			log.Fatalf("failed to create %s: %v", *outputPath, err)
		}
		defer f.Close()
		out = f
	}

	if err := run(ctx, services.Batch, req, out, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

type batchRunner interface {
	Run(ctx context.Context, req usecase.BatchRequest, onRecord func(*domain.ProductRecord)) (*usecase.BatchResult, error)
}

// run streams the batch to out as CSV and prints a one line summary to
// summary. Nothing but the CSV is written to out.
func run(ctx context.Context, batch batchRunner, req usecase.BatchRequest, out, summary io.Writer) error {
	writer, err := csvexport.NewWriter(out)
	if err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	var writeErr error
	result, err := batch.Run(ctx, req, func(r *domain.ProductRecord) {
		if writeErr == nil {
			writeErr = writer.Write(r)
		}
	})
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}
	if writeErr != nil {
		return fmt.Errorf("failed to write rows: %w", writeErr)
	}

	fmt.Fprintf(summary, "run %s: %d rows", result.RunID, len(result.Records))
	if len(result.Unresolved) > 0 {
		fmt.Fprintf(summary, ", unresolved: %s", strings.Join(result.Unresolved, " "))
	}
	if result.Canceled {
		fmt.Fprint(summary, " (canceled)")
	}
	fmt.Fprintln(summary)
	return nil
}

// buildRequest assembles a batch from flags. Positional arguments are
// treated as identifiers.
func buildRequest(inputPath, keywords string, maxResults int, args []string) (usecase.BatchRequest, error) {
	req := usecase.BatchRequest{
		Keywords:    keywords,
		MaxResults:  maxResults,
		Identifiers: args,
	}

	if inputPath != "" {
		var (
			data []byte
			err  error
		)
		if inputPath == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(inputPath)
		}
		if err != nil {
			return req, fmt.Errorf("read input: %w", err)
		}
		req.Identifiers = append(req.Identifiers, string(data))
	}

	if strings.TrimSpace(req.Keywords) != "" && len(req.Identifiers) > 0 {
		return req, fmt.Errorf("use either --keywords or identifiers, not both")
	}
	if strings.TrimSpace(req.Keywords) == "" && len(req.Identifiers) == 0 {
		return req, fmt.Errorf("nothing to do: pass --input, --keywords or identifiers")
	}
	return req, nil
}
