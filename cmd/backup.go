package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/anoixa/photo-share/config"
	"github.com/anoixa/photo-share/internal/app"
	"github.com/anoixa/photo-share/internal/services/archive"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export users, photos and comments to a tar.gz archive",
	Long: `Export users, photos and comments to a tar.gz archive.
The archive only holds database records. Image files stay in storage and
should be copied with the storage backend's own tooling.`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		if err := runBackup(output); err != nil {
			log.Fatalf("Backup failed: %v", err)
		}
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Import users, photos and comments from a tar.gz archive",
	Long: `Import users, photos and comments from a tar.gz archive.
Records that already exist in the target database are skipped, so the
archive can also move a dataset from sqlite to postgres or mongodb.`,
	Run: func(cmd *cobra.Command, args []string) {
		input, _ := cmd.Flags().GetString("input")
		if input == "" {
			log.Fatal("Restore failed: --input is required")
		}
		if err := runRestore(input); err != nil {
			log.Fatalf("Restore failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	backupCmd.Flags().StringP("output", "o", "", "Output file (default ./data/backups/photo-share-<time>.tar.gz)")
	restoreCmd.Flags().StringP("input", "i", "", "Archive file to import")
}

func openDatabase(ctx context.Context) (*app.Container, error) {
	config.InitConfig()
	container := app.NewContainer(config.Get())
	if err := container.InitDatabase(ctx); err != nil {
		return nil, err
	}
	return container, nil
}

func runBackup(output string) error {
	if output == "" {
		output = filepath.Join("./data/backups", fmt.Sprintf("photo-share-%s.tar.gz", time.Now().Format("20060102-150405")))
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	ctx := context.Background()
	container, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer container.Close()

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}

	meta, err := archive.Export(ctx, container.GetDatabaseProvider(), f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(output)
		return err
	}

	info, err := os.Stat(output)
	if err != nil {
		return err
	}
	printBackupSummary(output, meta, info.Size())
	return nil
}

func runRestore(input string) error {
	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	ctx := context.Background()
	container, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer container.Close()

	stats, err := archive.Import(ctx, container.GetDatabaseProvider(), f)
	if stats != nil {
		printRestoreSummary(input, stats)
	}
	return err
}

func printBackupSummary(path string, meta *archive.Metadata, size int64) {
	fmt.Println()
	fmt.Println("========================================")
	fmt.Println("           Backup Summary")
	fmt.Println("========================================")
	fmt.Printf("File:      %s\n", path)
	fmt.Printf("Size:      %.2f KB\n", float64(size)/1024)
	fmt.Printf("Database:  %s\n", meta.Database)
	fmt.Printf("Users:     %d\n", meta.RecordCount["users"])
	fmt.Printf("Photos:    %d\n", meta.RecordCount["photos"])
	fmt.Println("========================================")
}

func printRestoreSummary(path string, stats *archive.ImportStats) {
	fmt.Println()
	fmt.Println("========================================")
	fmt.Println("           Restore Summary")
	fmt.Println("========================================")
	fmt.Printf("File:            %s\n", path)
	fmt.Printf("Source database: %s\n", stats.Metadata.Database)
	fmt.Printf("Created at:      %s\n", stats.Metadata.Timestamp.Format(time.RFC3339))
	fmt.Printf("Users imported:  %d (skipped %d)\n", stats.Users, stats.SkippedUsers)
	fmt.Printf("Photos imported: %d (skipped %d)\n", stats.Photos, stats.SkippedPhotos)
	fmt.Println("========================================")
}
