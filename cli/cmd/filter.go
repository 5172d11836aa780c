package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/yard/lang/filter"
	"github.com/ardnew/yard/log"
)

// Filter prints the YAML records that match a query.
//
// Each source holds one or more YAML documents. A document is either a
// single record (a mapping) or a sequence of records.
type Filter struct {
	Query  string   `arg:""                       help:"Filter query."                                       name:"query"`
	Source []string `default:"-"                  help:"Record file(s) or '-' for stdin."                    short:"f" type:"path"`
	Define []string `                             help:"Bind $NAME to the value of EXPR (repeatable)."       placeholder:"NAME=EXPR" short:"D"`
	Strict bool     `                             help:"Reject queries naming fields absent from all records." short:"s"`
	Format string   `default:"yaml" enum:"yaml,json" help:"Output format (${enum})."                          short:"o"`
}

// Run executes the filter command.
func (f *Filter) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	lang, err := filterLanguage()
	if err != nil {
		return err
	}

	n, err := parse(ctx, lang, f.Query, f.Define)
	if err != nil {
		return err
	}

	records, err := f.records(ctx)
	if err != nil {
		return err
	}

	if f.Strict {
		if err := filter.Check(n, recordFields(records)); err != nil {
			return err
		}
	}

	p, err := filter.Compile(n)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "filter compiled",
		slog.String("query", n.String()),
		slog.String("program", p.Source()),
		slog.Int("records", len(records)),
	)

	matches := p.Select(records, func(r filter.Record, err error) {
		log.WarnContext(ctx, "record skipped", slog.Any("error", err))
	})

	if len(matches) == 0 {
		return nil
	}

	out, err := marshal(matches, f.Format)
	if err != nil {
		return err
	}

	_, err = outputFrom(ctx).Write(out)

	return err
}

// records decodes every document of every source.
func (f *Filter) records(ctx context.Context) ([]filter.Record, error) {
	srcs, err := openSources(f.Source)
	if err != nil {
		return nil, err
	}
	defer closeSources(srcs)

	var records []filter.Record

	for _, src := range srcs {
		decoded, err := decodeRecords(src)
		if err != nil {
			return nil, ErrDecodeSource.With(slog.String("file", src.name)).Wrap(err)
		}

		log.TraceContext(ctx, "decoded records",
			slog.String("file", src.name),
			slog.Int("count", len(decoded)),
		)

		records = append(records, decoded...)
	}

	return records, nil
}

// errNotRecord reports a document that is neither a mapping nor a sequence
// of mappings.
var errNotRecord = errors.New("document is not a record or list of records")

func decodeRecords(r io.Reader) ([]filter.Record, error) {
	var records []filter.Record

	dec := yaml.NewDecoder(r)

	for {
		var doc any

		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return records, nil
		}

		if err != nil {
			return nil, err
		}

		switch v := doc.(type) {
		case nil:

		case map[string]any:
			records = append(records, v)

		case []any:
			for _, item := range v {
				rec, ok := item.(map[string]any)
				if !ok {
					return nil, errNotRecord
				}

				records = append(records, rec)
			}

		default:
			return nil, errNotRecord
		}
	}
}

// recordFields returns the sorted top-level field names present in any
// record.
func recordFields(records []filter.Record) []string {
	seen := make(map[string]struct{})

	for _, r := range records {
		for key := range r {
			seen[key] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}
