package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd is the blog API binary.  Without a subcommand it serves HTTP.
var rootCmd = &cobra.Command{
	Use:          "blog-api",
	Short:        "Blog API with moderated comments and likes",
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, mailWorkerCmd, promoteAdminCmd)
}

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Printf("loaded .env")
	}
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err) // Log and exit if a command fails
	}
}
