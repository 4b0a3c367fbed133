package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/modelgraph/load"
)

func newExtractCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a graph from type descriptor files",
		Example: `  modelgraph extract --schema ./schema --root blog.Article
  modelgraph extract --schema models.yaml --format yaml --out graph.yaml --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.v.GetString("schema")
			if path == "" {
				return errors.WithHint(errors.New("no schema path"), "pass --schema or set schema in modelgraph.yaml")
			}
			extract := func() error {
				schemas, err := load.Load(path)
				if err != nil {
					return err
				}
				return a.run(cmd.Context(), cmd.OutOrStdout(), schemas)
			}
			if !a.v.GetBool("watch") {
				return extract()
			}
			if err := extract(); err != nil {
				a.log.Error("extraction failed", zap.Error(err))
			}
			w, err := newWatcher(path, a.v.GetString("out"), a.log)
			if err != nil {
				return err
			}
			defer w.Close()
			a.log.Info("watching for changes", zap.String("path", path))
			return w.Run(cmd.Context(), extract)
		},
	}
	cmd.Flags().StringP("schema", "s", "", "descriptor file or directory")
	cmd.Flags().String("module", "", "module of descriptors that declare none")
	cmd.Flags().BoolP("watch", "w", false, "re-extract whenever the schema changes")
	return cmd
}
