// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/matrixorigin/densify/pkg/common/moerr"
	"github.com/matrixorigin/densify/pkg/config"
	"github.com/matrixorigin/densify/pkg/container/types"
	"github.com/matrixorigin/densify/pkg/interleave"
	"github.com/matrixorigin/densify/pkg/logutil"
	v2 "github.com/matrixorigin/densify/pkg/util/metric/v2"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "densify",
		Short:        "Materialize typed column blocks into dense arrays",
		SilenceUsage: true,
	}
	cmd.AddCommand(materializeCommand(), latticeCommand())
	return cmd
}

func materializeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "materialize",
		Short: "Materialize the tables of a toml description",
		Long: "Build every table of a toml description, materialize them concurrently " +
			"and print the output type, shape and rows of each.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			dtype, err := cmd.Flags().GetString("dtype")
			if err != nil {
				return err
			}
			metrics, err := cmd.Flags().GetBool("metrics")
			if err != nil {
				return err
			}

			desc, err := config.Load(path)
			if err != nil {
				return err
			}
			if dtype != "" {
				desc.Materialize.Dtype = dtype
				if err = desc.Validate(); err != nil {
					return err
				}
			}
			logutil.SetupMOLogger(&desc.Log)

			if err = runMaterialize(cmd.Context(), cmd.OutOrStdout(), desc); err != nil {
				return err
			}
			if metrics {
				return writeMetrics(cmd.OutOrStdout())
			}
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "table.toml", "table description file")
	cmd.Flags().String("dtype", "", "force the output type, for example float64 or object")
	cmd.Flags().Bool("metrics", false, "print the materialize metrics when done")
	return cmd
}

func runMaterialize(ctx context.Context, w io.Writer, desc *config.Description) error {
	tbls, err := desc.Build(ctx)
	if err != nil {
		return err
	}
	results, err := interleave.MaterializeAll(ctx, tbls, desc.Workers, desc.Options()...)
	for i, a := range results {
		td := desc.Tables[i]
		name := td.Name
		if name == "" {
			name = fmt.Sprintf("table %d", i)
		}
		if a == nil {
			fmt.Fprintf(w, "%s: failed\n", name)
			continue
		}
		fmt.Fprintf(w, "%s: dtype %s, shape (%d, %d)\n", name, a.GetType(), a.Rows(), a.Cols())
		if td.Labels != nil {
			fmt.Fprintf(w, "labels %v\n", td.Labels)
		}
		fmt.Fprintf(w, "source %v\n", a.SourceTypes())
		fmt.Fprintln(w, a.String())
	}
	for _, e := range multierr.Errors(err) {
		logutil.Error(e.Error())
	}
	return err
}

func writeMetrics(w io.Writer) error {
	mfs, err := v2.GetPrometheusGatherer().Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err = expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func latticeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lattice <dtype>...",
		Short: "Print the common type of a set of types",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts := make([]types.Type, len(args))
			for i, arg := range args {
				typ, ok := types.ParseType(arg)
				if !ok {
					return moerr.NewInvalidInput(cmd.Context(), "unknown dtype %q", arg)
				}
				ts[i] = typ
			}
			typ, err := types.CommonType(cmd.Context(), ts...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), typ)
			return nil
		},
	}
}
