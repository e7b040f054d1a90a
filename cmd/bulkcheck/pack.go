package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/codec"
)

func newPackCmd() *cobra.Command {
	var compression string

	cmd := &cobra.Command{
		Use:   "pack <in.csv> <out.json>",
		Short: "Encode a CSV file as addContentToBatch content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := codec.ParseCompression(compression)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			content, err := codec.Encode(codec.ContentTypeCSV, c, raw)
			if err != nil {
				return err
			}
			data, err := json.Marshal(content)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d bytes -> %d bytes (%s)\n", len(raw), len(content.Value), content.Compression)
			return nil
		},
	}
	cmd.Flags().StringVar(&compression, "compression", string(codec.Snappy), "Snappy, Zstd or None")
	return cmd
}

func newUnpackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpack <in.json> <out.csv>",
		Short: "Decode packed content back to CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var content codec.Content
			if err := json.Unmarshal(data, &content); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			raw, err := content.Decode()
			if err != nil {
				return err
			}
			return os.WriteFile(args[1], raw, 0o644)
		},
	}
}
