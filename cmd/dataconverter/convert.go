package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/core/migrator"
	"github.com/zeusync/dataconverter/internal/core/types"
	"github.com/zeusync/dataconverter/internal/core/types/jsontree"
	"github.com/zeusync/dataconverter/internal/core/types/native"
	typesnbt "github.com/zeusync/dataconverter/internal/core/types/nbt"
	"github.com/zeusync/dataconverter/internal/datafix"
	"github.com/zeusync/dataconverter/internal/injector"
	tags "github.com/zeusync/dataconverter/internal/nbt"
	"github.com/zeusync/dataconverter/pkg/concurrent"
	"github.com/zeusync/dataconverter/pkg/encoding"
	"github.com/zeusync/dataconverter/pkg/sequence"
)

const (
	formatNBT  = "nbt"
	formatJSON = "json"
	formatCBOR = "cbor"
)

type convertOptions struct {
	typ         string
	from        string
	to          string
	out         string
	format      string
	compression string
}

func newConvertCmd(a *app) *cobra.Command {
	opts := &convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Migrate record files to a newer data version",
		Long: `Migrate record files to a newer data version.

Files ending in .json are read as JSON, files ending in .cbor as CBOR and
everything else as (optionally compressed) tag files. Files are rewritten in
place unless --out names a directory.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := a.fileConverter(opts)
			if err != nil {
				return err
			}
			return fc.run(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.typ, "type", "t", "", "record type, see `dataconverter types`")
	flags.StringVarP(&opts.from, "from", "f", "", "data version the files were written at")
	flags.StringVar(&opts.to, "to", "", "target data version, overrides converter.target")
	flags.StringVarP(&opts.out, "out", "o", "", "output directory")
	flags.StringVar(&opts.format, "format", "", "output format: nbt, json or cbor (default: input format)")
	flags.StringVar(&opts.compression, "compression", "", "tag file compression: none, gzip or zlib (default: input compression)")
	flags.Int("workers", 0, "files converted in parallel, overrides migrator.workers")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

type fileConverter struct {
	migrator    *migrator.Migrator
	codec       encoding.Codec
	typ         string
	from, to    converter.Version
	out         string
	format      string
	compression *tags.Compression
	workers     int

	mu sync.Mutex
}

func (a *app) fileConverter(opts *convertOptions) (*fileConverter, error) {
	m, err := injector.InitializeMigrator(a.cfg)
	if err != nil {
		return nil, err
	}
	codec, err := native.NewCodec()
	if err != nil {
		return nil, err
	}

	fc := &fileConverter{
		migrator: m,
		codec:    codec,
		typ:      opts.typ,
		out:      opts.out,
		format:   opts.format,
		workers:  a.cfg.Migrator.Workers,
	}
	if fc.from, err = datafix.LookupVersion(opts.from); err != nil {
		return nil, fmt.Errorf("--from: %w", err)
	}
	if opts.to == "" {
		fc.to, err = a.cfg.TargetVersion()
	} else {
		fc.to, err = datafix.LookupVersion(opts.to)
	}
	if err != nil {
		return nil, fmt.Errorf("--to: %w", err)
	}

	switch opts.format {
	case "", formatNBT, formatJSON, formatCBOR:
	default:
		return nil, fmt.Errorf("unknown format %q", opts.format)
	}
	if opts.compression != "" {
		c, err := tags.ParseCompression(opts.compression)
		if err != nil {
			return nil, err
		}
		fc.compression = &c
	}
	if fc.out != "" {
		if err := os.MkdirAll(fc.out, 0o755); err != nil {
			return nil, err
		}
	}
	return fc, nil
}

// run converts every file, stopping at the first failure.
func (fc *fileConverter) run(ctx context.Context, w io.Writer, paths []string) error {
	_, err := concurrent.ParallelMap(ctx, sequence.From(paths...), fc.workers,
		func(_ context.Context, _ int, path string) (struct{}, error) {
			return struct{}{}, fc.report(w, path)
		})
	return err
}

func (fc *fileConverter) report(w io.Writer, path string) error {
	dest, changed, err := fc.convertFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	state := "unchanged"
	if changed {
		state = "migrated"
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()
	_, err = fmt.Fprintf(w, "%s -> %s (%s)\n", path, dest, state)
	return err
}

// document is one decoded file and the framing needed to write it back.
type document struct {
	format      string
	name        string
	compression tags.Compression
	data        types.MapType
}

func (fc *fileConverter) convertFile(path string) (string, bool, error) {
	doc, err := fc.read(path)
	if err != nil {
		return "", false, err
	}
	before := doc.data.Copy()

	out, err := fc.migrator.Convert(fc.typ, doc.data, fc.from, fc.to)
	if err != nil {
		return "", false, err
	}
	doc.data = out.(types.MapType)

	format := doc.format
	if fc.format != "" {
		format = fc.format
	}
	if fc.compression != nil {
		doc.compression = *fc.compression
	}

	dest := destination(path, fc.out, doc.format, format)
	if err := fc.write(dest, format, doc); err != nil {
		return "", false, err
	}
	return dest, !types.Equal(before, doc.data), nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON
	case ".cbor":
		return formatCBOR
	default:
		return formatNBT
	}
}

// destination keeps the file name when the format is unchanged and swaps the
// extension otherwise.
func destination(path, dir, from, to string) string {
	name := filepath.Base(path)
	if from != to {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + "." + to
	}
	if dir == "" {
		dir = filepath.Dir(path)
	}
	return filepath.Join(dir, name)
}

func (fc *fileConverter) read(path string) (*document, error) {
	doc := &document{format: formatOf(path), compression: tags.CompressionGzip}

	if doc.format == formatNBT {
		name, root, c, err := tags.ReadFile(path)
		if err != nil {
			return nil, err
		}
		doc.name, doc.compression, doc.data = name, c, typesnbt.Wrap(root)
		return doc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch doc.format {
	case formatJSON:
		doc.data, err = jsontree.Parse(data)
	case formatCBOR:
		doc.data, err = native.UnmarshalCBOR(fc.codec, data)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}

func (fc *fileConverter) write(path, format string, doc *document) error {
	switch format {
	case formatNBT:
		m, err := types.ConvertMap(typesnbt.Util, doc.data)
		if err != nil {
			return err
		}
		return tags.WriteFile(path, doc.name, m.(*typesnbt.Map).Tag(), doc.compression)
	case formatJSON:
		m, err := types.ConvertMap(jsontree.Util, doc.data)
		if err != nil {
			return err
		}
		data, err := encoding.StableJSON(m)
		if err != nil {
			return err
		}
		return os.WriteFile(path, append(data, '\n'), 0o644)
	default:
		m, err := types.ConvertMap(native.Util, doc.data)
		if err != nil {
			return err
		}
		data, err := native.MarshalCBOR(fc.codec, m.(*native.Map))
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	}
}
