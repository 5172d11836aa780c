package cmd

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/yard/log"
	"github.com/ardnew/yard/profile"
)

// Init writes the current values of the global flags to the configuration
// file.
type Init struct {
	Force bool `help:"Overwrite existing configuration file." short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: configuration path undefined")
	}

	fail := ErrWriteConfig.With(slog.String("file", confPath))

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return fail.With(slog.Bool("exists", true)).Wrap(ErrFileExists)
	}

	out, err := yaml.Marshal(configValues(ktx))
	if err != nil {
		return fail.Wrap(err)
	}

	if err := os.WriteFile(confPath, out, 0o600); err != nil {
		return fail.Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// configValues returns the value of every configurable application flag in
// declaration order. Empty values are omitted.
func configValues(ktx *kong.Context) yaml.MapSlice {
	ignore := []string{"help", "version", profile.Tag}

	var values yaml.MapSlice

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		val := ktx.FlagValue(flag)

		switch v := val.(type) {
		case nil:
			continue

		case string:
			if v == "" {
				continue
			}

		case []string:
			if len(v) == 0 {
				continue
			}

		case interface{ MarshalText() ([]byte, error) }:
			text, err := v.MarshalText()
			if err != nil {
				continue
			}

			val = string(text)
		}

		values = append(values, yaml.MapItem{Key: flag.Name, Value: val})
	}

	return values
}
