package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tallyocr/tally/internal/bill"
)

const (
	outputFormatJSON = "json"
	outputFormatCSV  = "csv"
	outputFormatText = "text"
)

// extractCmd represents the extract command.
var extractCmd = &cobra.Command{
	Use:   "extract [token-file...]",
	Short: "Extract line items from saved OCR token files",
	Long: `Run the extraction pipeline over OCR word tokens stored in JSON files.

Each file holds either a plain array of tokens or an object with a
"tokens" field. Use "-" to read from stdin.

Examples:
  tally extract tokens.json
  tally extract page1.json page2.json --format csv
  cat tokens.json | tally extract - --output items.json`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()

		format := cfg.Output.Format
		if cmd.Flags().Changed("format") {
			format, _ = cmd.Flags().GetString("format")
		}
		outputFile := cfg.Output.File
		if cmd.Flags().Changed("output") {
			outputFile, _ = cmd.Flags().GetString("output")
		}

		validFormats := []string{outputFormatJSON, outputFormatCSV, outputFormatText}
		isValid := false
		for _, f := range validFormats {
			if format == f {
				isValid = true
				break
			}
		}
		if !isValid {
			return fmt.Errorf("invalid output format: %s (must be one of: %s)", format, strings.Join(validFormats, ", "))
		}

		extractorCfg, err := cfg.ToExtractorConfig()
		if err != nil {
			return fmt.Errorf("failed to build extraction config: %w", err)
		}
		extractor := bill.NewExtractor(extractorCfg)

		var outputs []string
		for _, path := range args {
			tokens, err := readTokenFile(cmd.InOrStdin(), path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			result := extractor.Extract(tokens)
			rendered, err := renderResult(&result, format)
			if err != nil {
				return err
			}
			outputs = append(outputs, rendered)
		}

		combined := strings.Join(outputs, "\n")
		if outputFile != "" {
			if err := os.WriteFile(outputFile, []byte(combined+"\n"), 0o600); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			return nil
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), combined)
		return nil
	},
}

// tokenFile accepts either a bare token array or an object wrapper.
type tokenFile struct {
	Tokens []bill.Token `json:"tokens"`
}

// readTokenFile loads tokens from a JSON file, or stdin when path is "-".
func readTokenFile(stdin io.Reader, path string) ([]bill.Token, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var tokens []bill.Token
	if err := json.Unmarshal(data, &tokens); err == nil {
		return tokens, nil
	}

	var wrapped tokenFile
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("not a token array or object: %w", err)
	}
	return wrapped.Tokens, nil
}

// renderResult formats one page's extraction result.
func renderResult(result *bill.ExtractionResult, format string) (string, error) {
	switch format {
	case outputFormatCSV:
		return bill.ToCSV(result)
	case outputFormatText:
		return bill.ToPlainText(result)
	default:
		return bill.ToJSON(result)
	}
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringP("format", "f", "json", "output format (json, csv, text)")
	extractCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
}
