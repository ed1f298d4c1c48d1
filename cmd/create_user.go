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
	"github.com/tieubaoca/arxchive-be/repository"
	"github.com/tieubaoca/arxchive-be/service"
)

// createUserCmd creates a user account from the command line.
var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user account",
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		fullName, _ := cmd.Flags().GetString("full-name")

		if username == "" || password == "" {
			log.Fatal("username and password are required")
		}

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		mongoDb, err := database.NewMongoDatabase(cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}

		userService := service.NewUserService(repository.NewUserRepo(mongoDb.Collection("users")))
		user, err := userService.CreateUser(context.Background(), username, password, fullName)
		if err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		log.Printf("Created user %s (%s)", user.Username, user.ID)
	},
}

func init() {
	rootCmd.AddCommand(createUserCmd)
	createUserCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
	createUserCmd.Flags().StringP("username", "u", "", "username")
	createUserCmd.Flags().StringP("password", "p", "", "password")
	createUserCmd.Flags().String("full-name", "", "full name")
}
