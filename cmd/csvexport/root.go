package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"csvexport/internal/exporter"
	"csvexport/internal/model"
	"csvexport/internal/serializer"
	"csvexport/internal/storage"
)

type rootFlags struct {
	keys     []string
	fileName string
	dir      string
	stdout   bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "csvexport [input.json]",
		Short: "Convert JSON records to CSV",
		Long: `Convert a JSON array of objects to CSV.

Every cell, headers included, is written in its JSON form: strings are quoted,
numbers, booleans and null are bare, and a missing field is written as
undefined. Columns default to every field name in the order first seen.

The input is read from the named file, or from stdin when the argument is
omitted or "-". With --stdout the CSV is followed by a single newline; saved
files end at the last row.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("keys") {
				flags.keys = nil
			} else if flags.keys == nil {
				flags.keys = []string{}
			}
			return runExport(cmd.Context(), cmd, args, flags)
		},
	}

	cmd.Flags().StringSliceVar(&flags.keys, "keys", nil, "comma separated columns, in order (default: every field seen)")
	cmd.Flags().StringVarP(&flags.fileName, "file-name", "o", "", "output file name (default: <unix-millis>.csv)")
	cmd.Flags().StringVarP(&flags.dir, "dir", "d", ".", "directory to save the file in")
	cmd.Flags().BoolVar(&flags.stdout, "stdout", false, "print the CSV instead of saving it")

	return cmd
}

func runExport(ctx context.Context, cmd *cobra.Command, args []string, flags rootFlags) error {
	records, err := readRecords(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	if flags.stdout {
		text, err := serializer.ToCSV(records, flags.keys)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}

	store, err := storage.NewFS(flags.dir)
	if err != nil {
		return err
	}

	// Remember the final name; it is generated when --file-name is empty.
	var saved string
	save := storage.Saver(store)
	saver := exporter.FileSaverFunc(func(ctx context.Context, f exporter.File) error {
		saved = f.FileName
		return save.Save(ctx, f)
	})

	err = exporter.ExportAsFile(ctx, saver, exporter.Request{
		Records:  records,
		FileName: flags.fileName,
		Keys:     flags.keys,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(flags.dir, filepath.FromSlash(saved)))
	return err
}

func readRecords(stdin io.Reader, args []string) ([]model.Record, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("input must be a JSON array of objects: %w", err)
	}
	return records, nil
}
