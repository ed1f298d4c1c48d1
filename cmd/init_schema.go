/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/tieubaoca/arxchive-be/config"
	"github.com/tieubaoca/arxchive-be/database"
)

// initSchemaCmd creates the PaperChunk class in Weaviate.
var initSchemaCmd = &cobra.Command{
	Use:   "init-schema",
	Short: "Create the PaperChunk class in Weaviate",
	Long: `Creates the PaperChunk class used by the similarity search. With
--reset the existing class and all indexed chunks are dropped first.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		reset, _ := cmd.Flags().GetBool("reset")

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}

		ctx := context.Background()
		if reset {
			if err := weaviateDb.ReInit(ctx); err != nil {
				log.Fatalf("Failed to reset schema: %v", err)
			}
			log.Println("PaperChunk class recreated")
			return
		}

		if err := weaviateDb.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to create schema: %v", err)
		}
		log.Println("PaperChunk class ready")
	},
}

func init() {
	rootCmd.AddCommand(initSchemaCmd)
	initSchemaCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
	initSchemaCmd.Flags().Bool("reset", false, "drop and recreate the class")
}
