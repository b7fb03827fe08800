package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mediazoo/laukaainfo/api/internal/config"
	"github.com/mediazoo/laukaainfo/api/internal/entity"
	"github.com/mediazoo/laukaainfo/api/internal/ingest"
	"github.com/mediazoo/laukaainfo/api/internal/source"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Convert the company sheet into directory JSON",
	Long:  "Download the published sheet (or read a local CSV export) and print the company directory JSON exactly as the API would serve it.",
	RunE:  runIngest,
}

var (
	ingestURL         string
	ingestFile        string
	ingestOutFile     string
	ingestProxyPath   string
	ingestPhoneRegion string
	ingestTimeout     time.Duration
	ingestInsecureTLS bool
)

func init() {
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "CSV export URL (defaults to SHEET_CSV_URL or the production sheet)")
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "Read a local CSV file instead of downloading")
	ingestCmd.Flags().StringVarP(&ingestOutFile, "out", "o", "", "Write JSON to this file instead of stdout")
	ingestCmd.Flags().StringVar(&ingestProxyPath, "proxy-path", ingest.DefaultProxyPath, "Relative path of the image proxy used in media URLs")
	ingestCmd.Flags().StringVar(&ingestPhoneRegion, "phone-region", ingest.DefaultPhoneRegion, "Default region for phone numbers without a country code")
	ingestCmd.Flags().DurationVar(&ingestTimeout, "timeout", source.DefaultTimeout, "Download timeout")
	ingestCmd.Flags().BoolVar(&ingestInsecureTLS, "insecure", false, "Skip TLS certificate verification")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestURL != "" && ingestFile != "" {
		return fmt.Errorf("cannot use --url with --file")
	}

	var fetcher source.Fetcher
	if ingestFile != "" {
		fetcher = source.NewFileFetcher(ingestFile)
	} else {
		url := ingestURL
		if url == "" {
			url = os.Getenv("SHEET_CSV_URL")
		}
		if url == "" {
			url = config.DefaultSheetCSVURL
		}
		fetcher = source.NewSheetFetcher(url, nil, source.Options{Timeout: ingestTimeout, InsecureTLS: ingestInsecureTLS})
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), ingestTimeout)
	defer cancel()

	raw, err := fetcher.Fetch(ctx)
	if err != nil {
		return err
	}

	companies, err := ingest.NewPipeline(
		ingest.WithProxyPath(ingestProxyPath),
		ingest.WithPhoneRegion(ingestPhoneRegion),
	).Build(raw)
	if err != nil {
		return fmt.Errorf("build directory: %w", err)
	}

	body, err := ingest.EncodeSnapshot(companies)
	if err != nil {
		return err
	}
	if err := ingest.ValidateSnapshot(body); err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if ingestOutFile != "" {
		file, err := os.Create(ingestOutFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer file.Close()
		out = file
	}
	if _, err := fmt.Fprintln(out, string(body)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%d companies, %d with coordinates\n", len(companies), countLocated(companies))
	return nil
}

func countLocated(companies []entity.Company) int {
	n := 0
	for _, c := range companies {
		if c.HasLocation() {
			n++
		}
	}
	return n
}
