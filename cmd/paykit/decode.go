package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/paykit-sdk/paykit"
	"github.com/paykit-sdk/paykit/mcp"
	"github.com/paykit-sdk/paykit/types"
)

func newDecodeCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "decode [file|-]",
		Short: "Decode a next_action, payment intent or setup intent document",
		Long: `Reads a JSON document from a file or stdin and prints its summary.

Documents whose "object" is payment_intent or setup_intent are decoded as
intents; anything else is decoded as a bare next_action object.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			data, err := readInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}

			decoder, err := a.decoder()
			if err != nil {
				return err
			}
			result, err := decodeDocument(decoder, data)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, result)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format (json, yaml)")
	return cmd
}

func decodeDocument(decoder *paykit.Decoder, data []byte) (interface{}, error) {
	fields, err := types.ParseFields(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	object, _ := fields.String("object")
	switch object {
	case "payment_intent":
		pi := decoder.DecodePaymentIntent(fields)
		if pi == nil {
			return nil, fmt.Errorf("%w: payment intent needs id and status", paykit.ErrUnexpectedResponse)
		}
		return mcp.SummarizePaymentIntent(pi), nil
	case "setup_intent":
		si := decoder.DecodeSetupIntent(fields)
		if si == nil {
			return nil, fmt.Errorf("%w: setup intent needs id and status", paykit.ErrUnexpectedResponse)
		}
		return mcp.SummarizeSetupIntent(si), nil
	}

	action := decoder.Decode(fields)
	if action == nil {
		return nil, paykit.ErrMissingActionType
	}
	return action.Summary(), nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func writeOutput(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format: %s (valid: json, yaml)", format)
	}
}
