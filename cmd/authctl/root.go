// Command authctl is the authcore authorization core's cobra CLI
// surface, grounded on Yacobolo-ducklake-dataplatform's pkg/cli
// (cobra.Command wiring, persistent flags resolved before RunE) and
// pgschema-pgschema's cmd package (one file per subcommand, a shared
// root command holding connection flags). It drives the grant graph
// engine, principal directory, and semantic validator end to end
// against a migrated catalog database, so every operation in this
// module has a runnable entrypoint (spec.md §6).
//
// The repository root holds no Go package; this binary's entrypoint
// lives here under cmd/authctl rather than in a top-level main.go.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/CUBRID/cubrid-sub018/internal/migrations"
	"github.com/CUBRID/cubrid-sub018/sql/authgateway"
	"github.com/CUBRID/cubrid-sub018/sql/authscope"
	"github.com/CUBRID/cubrid-sub018/sql/catalog"
	"github.com/CUBRID/cubrid-sub018/sql/grantgraph"
	"github.com/CUBRID/cubrid-sub018/sql/principal"
	"github.com/CUBRID/cubrid-sub018/sql/privcache"
)

var (
	dsn    string
	driver string
	asUser string
)

// driverInfo maps the CLI's --driver flag to the database/sql driver
// name and the goose dialect that matches it. "postgres" uses lib/pq;
// "pgx" uses jackc/pgx's database/sql adapter against the same wire
// protocol and goose dialect, for callers who prefer pgx's connection
// pooling and type handling.
func driverInfo() (sqlDriver, gooseDialect string, err error) {
	switch driver {
	case "sqlite", "":
		return "sqlite", "sqlite3", nil
	case "postgres":
		return "postgres", "postgres", nil
	case "pgx":
		return "pgx", "postgres", nil
	default:
		return "", "", fmt.Errorf("unsupported --driver %q (want sqlite, postgres, or pgx)", driver)
	}
}

// app is the set of process-wide components every subcommand drives;
// constructed fresh per invocation (cobra runs one command per process
// here, matching pgschema-pgschema's cmd.Execute() style).
type app struct {
	db        *sqlx.DB
	scope     *authscope.Scope
	gateway   *authgateway.Gateway
	directory *principal.Directory
	cache     *privcache.Cache
	engine    *grantgraph.Engine
	resolver  *catalog.Resolver
}

func newApp() (*app, error) {
	sqlDriver, gooseDialect, err := driverInfo()
	if err != nil {
		return nil, err
	}

	raw, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := migrations.Run(raw, gooseDialect); err != nil {
		raw.Close()
		return nil, err
	}

	db := sqlx.NewDb(raw, sqlDriver)
	scope := authscope.New()
	log := logrus.NewEntry(logrus.StandardLogger())

	gateway := authgateway.New(db, scope, log)
	directory := principal.New(scope, nil)
	indexes := privcache.NewIndexAllocator()
	cache := privcache.New(indexes)
	engine := grantgraph.New(gateway, directory, cache, scope)
	resolver := catalog.NewResolver()

	return &app{
		db:        db,
		scope:     scope,
		gateway:   gateway,
		directory: directory,
		cache:     cache,
		engine:    engine,
		resolver:  resolver,
	}, nil
}

func (a *app) close() {
	_ = a.db.Close()
}

// caller resolves the --as principal, the acting identity for every
// subcommand (spec.md §3 "Principal").
func (a *app) caller(ctx context.Context, tx authgateway.Execer) (catalog.PrincipalRef, error) {
	return a.directory.FindPrincipal(ctx, tx, asUser)
}

func isDBA(p catalog.PrincipalRef) bool {
	return p.Name == catalog.DistinguishedDBA
}

// RootCmd is the authctl entrypoint.
var RootCmd = &cobra.Command{
	Use:           "authctl",
	Short:         "Drive the authorization core's grant graph, principal directory, and validator",
	Long:          "authctl exercises GRANT, REVOKE, principal management, and SHOW introspection against a migrated authcore catalog database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&dsn, "dsn", "authctl.db", "data source name for the catalog database")
	RootCmd.PersistentFlags().StringVar(&driver, "driver", "sqlite", "database driver: sqlite, postgres, or pgx")
	RootCmd.PersistentFlags().StringVar(&asUser, "as", catalog.DistinguishedDBA, "acting principal name")

	RootCmd.AddCommand(grantCmd)
	RootCmd.AddCommand(revokeCmd)
	RootCmd.AddCommand(createUserCmd)
	RootCmd.AddCommand(dropUserCmd)
	RootCmd.AddCommand(addMemberCmd)
	RootCmd.AddCommand(dropMemberCmd)
	RootCmd.AddCommand(showCmd)
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
