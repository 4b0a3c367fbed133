package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/modelgraph/dialect/sql"
)

func newInspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Extract a graph from the tables and foreign keys of a database",
		Example: `  modelgraph inspect --driver sqlite --dsn ./app.db --root User
  modelgraph inspect --driver postgres --dsn "postgres://localhost/shop?sslmode=disable" --db-schema public`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			driver, dsn := a.v.GetString("driver"), a.v.GetString("dsn")
			if driver == "" || dsn == "" {
				return errors.WithHint(errors.New("missing database connection"), "pass --driver and --dsn, or set MODELGRAPH_DRIVER and MODELGRAPH_DSN")
			}
			db, err := sql.Open(driver, dsn)
			if err != nil {
				return err
			}
			defer db.Close()
			opts := []sql.InspectOption{sql.WithLogger(a.log)}
			if schema := a.v.GetString("db-schema"); schema != "" {
				opts = append(opts, sql.WithSchema(schema))
			}
			i, err := sql.NewInspector(db, driver, opts...)
			if err != nil {
				return err
			}
			schemas, err := i.Schemas(cmd.Context())
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), cmd.OutOrStdout(), schemas)
		},
	}
	cmd.Flags().String("driver", "", "database dialect: sqlite, postgres or mysql")
	cmd.Flags().String("dsn", "", "data source name")
	cmd.Flags().String("db-schema", "", "database schema to inspect")
	return cmd
}
