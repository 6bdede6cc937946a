package main

import (
	"fmt"
	"io"
	"os"

	"github.com/grimfell/muster/internal/db"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBSeedCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Muster database",
		Long:  "Opens the configured database and migrates all tables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd.OutOrStdout(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "muster.yaml", "path to Muster config file")
	return cmd
}

func runDBInit(out io.Writer, configPath string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Connected (%s)\n", cfg.Database.Driver)

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))
	return nil
}

func newDBSeedCmd() *cobra.Command {
	var (
		configPath string
		packPath   string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed reference data from a content pack",
		Long:  "Upserts equipment, weapon profiles, fighter types and equipment lists from a YAML content pack.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBSeed(cmd.OutOrStdout(), configPath, packPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "muster.yaml", "path to Muster config file")
	cmd.Flags().StringVarP(&packPath, "pack", "p", "content.yaml", "path to content pack YAML")
	return cmd
}

func runDBSeed(out io.Writer, configPath, packPath string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(packPath)
	if err != nil {
		return fmt.Errorf("read content pack %s: %w", packPath, err)
	}
	var pack db.ContentPack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return fmt.Errorf("parse content pack %s: %w", packPath, err)
	}

	if err := db.SeedContent(gormDB, pack); err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d equipment, %d profiles, %d fighter types, %d list entries\n",
		len(pack.Equipment), len(pack.WeaponProfiles), len(pack.FighterTypes), len(pack.EquipmentLists))
	return nil
}
