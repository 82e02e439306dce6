package app

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shashiranjanraj/kashvi-shop/config"
	"github.com/shashiranjanraj/kashvi-shop/pkg/database"
	"github.com/shashiranjanraj/kashvi-shop/pkg/migration"
	"github.com/shashiranjanraj/kashvi-shop/pkg/queue"
	"github.com/shashiranjanraj/kashvi-shop/pkg/router"
)

// BootDB loads config and connects database.DB. CLI commands that do not
// serve call it instead of Serve.
func BootDB() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return database.Connect()
}

// Migrator returns a runner over database.DB that reports to out.
func Migrator(out io.Writer) *migration.Runner {
	return migration.New(database.DB, out)
}

// PrintMigrationStatus writes one line per registered migration.
func PrintMigrationStatus(out io.Writer, rows []migration.Status) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "MIGRATION\tRAN\tBATCH")
	for _, s := range rows {
		ran, batch := "No", "-"
		if s.Ran {
			ran, batch = "Yes", fmt.Sprint(s.Batch)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, ran, batch)
	}
	return w.Flush()
}

// PrintRoutes writes the route table.
func PrintRoutes(out io.Writer, routes []router.Route) error {
	if len(routes) == 0 {
		fmt.Fprintln(out, "No routes registered.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	fmt.Fprintln(w, "------\t----\t----")
	for _, ri := range routes {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return w.Flush()
}

// PrintFailedJobs writes one line per failed job, truncating long errors.
func PrintFailedJobs(out io.Writer, rows []queue.FailedJob) error {
	if len(rows) == 0 {
		fmt.Fprintln(out, "No failed jobs.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tJOB\tATTEMPTS\tFAILED AT\tERROR")
	for _, j := range rows {
		msg := strings.ReplaceAll(j.Error, "\n", " ")
		if len(msg) > 60 {
			msg = msg[:57] + "..."
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", j.ID, j.Job, j.Attempts, j.FailedAt.Format("2006-01-02 15:04:05"), msg)
	}
	return w.Flush()
}
