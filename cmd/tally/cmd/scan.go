package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallyocr/tally/internal/bill"
	"github.com/tallyocr/tally/internal/ocrspace"
)

// scanCmd represents the scan command.
var scanCmd = &cobra.Command{
	Use:   "scan [url...]",
	Short: "Scan bill images end to end via the OCR.Space API",
	Long: `Download one or more bill images, send them to the OCR.Space API,
and extract structured line items. Each URL becomes one page in the
response envelope.

An API key is required, either via --api-key, the TALLY_OCR_API_KEY
environment variable, or the config file.

Examples:
  tally scan https://example.com/bill.png --api-key K123
  tally scan https://a.example/p1.png https://a.example/p2.png`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no document URLs provided")
		}

		cfg := GetConfig()

		if cmd.Flags().Changed("api-key") {
			cfg.OCR.APIKey, _ = cmd.Flags().GetString("api-key")
		}
		if cmd.Flags().Changed("language") {
			cfg.OCR.Language, _ = cmd.Flags().GetString("language")
		}
		if cfg.OCR.APIKey == "" {
			return errors.New("OCR API key is required (--api-key or TALLY_OCR_API_KEY)")
		}

		outputFile := cfg.Output.File
		if cmd.Flags().Changed("output") {
			outputFile, _ = cmd.Flags().GetString("output")
		}

		extractorCfg, err := cfg.ToExtractorConfig()
		if err != nil {
			return fmt.Errorf("failed to build extraction config: %w", err)
		}
		extractor := bill.NewExtractor(extractorCfg)
		ocrClient := ocrspace.New(cfg.ToOCRConfig())
		downloader := cfg.NewDownloader()

		timeout := time.Duration(cfg.OCR.TimeoutSec+cfg.Fetch.TimeoutSec) * time.Second
		results := make([]bill.ExtractionResult, 0, len(args))

		for i, url := range args {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)

			data, filename, err := downloader.Fetch(ctx, url)
			if err != nil {
				cancel()
				return fmt.Errorf("download failed for %s: %w", url, err)
			}

			tokens, err := ocrClient.ParseImage(ctx, data, filename)
			cancel()
			if err != nil {
				return fmt.Errorf("OCR failed for %s: %w", url, err)
			}

			result := extractor.Extract(tokens)
			result.PageNo = fmt.Sprintf("%d", i+1)
			results = append(results, result)

			slog.Debug("Scanned page", "url", url, "items", result.TotalItemCount)
		}

		envelope := bill.NewResponse(results...)
		rendered, err := json.MarshalIndent(envelope, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}

		if outputFile != "" {
			if err := os.WriteFile(outputFile, append(rendered, '\n'), 0o600); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			return nil
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(rendered))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().String("api-key", "", "OCR.Space API key")
	scanCmd.Flags().String("language", "eng", "OCR language code")
	scanCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
}
