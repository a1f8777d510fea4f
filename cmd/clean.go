package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/anoixa/photo-share/config"
	"github.com/anoixa/photo-share/internal/app"
	"github.com/anoixa/photo-share/internal/services/maintenance"
	"github.com/spf13/cobra"
)

// cleanCmd 修复图片记录、图片文件与评论作者之间的不一致
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Reconcile photo records, stored images and comment authors",
	Long: `Reconcile photo records, stored images and comment authors.
This includes:
  - Delete photo records whose image file is missing
  - Pull comments whose author no longer exists
  - Delete stored images without a photo record`,
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		dbOnly, _ := cmd.Flags().GetBool("db-only")
		storageOnly, _ := cmd.Flags().GetBool("storage-only")

		if dbOnly && storageOnly {
			log.Fatal("Clean failed: --db-only and --storage-only are mutually exclusive")
		}

		opts := maintenance.Options{DryRun: dryRun, DBOnly: dbOnly, StorageOnly: storageOnly}
		if err := runClean(opts); err != nil {
			log.Fatalf("Clean failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().Bool("dry-run", false, "Only show what would be cleaned, don't actually delete")
	cleanCmd.Flags().Bool("db-only", false, "Only clean dangling photo records and stale comments")
	cleanCmd.Flags().Bool("storage-only", false, "Only clean orphan storage files")
}

// runClean 执行清理
func runClean(opts maintenance.Options) error {
	config.InitConfig()
	cfg := config.Get()

	container := app.NewContainer(cfg)
	ctx := context.Background()
	if err := container.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer container.Close()

	stats, err := container.Reconciler.Run(ctx, opts)
	if err != nil {
		return err
	}

	printCleanStats(stats, opts.DryRun)

	if stats.Failed() {
		return fmt.Errorf("encountered %d errors during cleanup", len(stats.Errors))
	}
	return nil
}

// printCleanStats 打印清理统计
func printCleanStats(stats *maintenance.Stats, dryRun bool) {
	fmt.Println()
	fmt.Println("========================================")
	if dryRun {
		fmt.Println("           [DRY RUN MODE]")
	}
	fmt.Println("         Clean Statistics")
	fmt.Println("========================================")
	fmt.Printf("Dangling photo records:     %d\n", stats.DanglingRows)
	fmt.Printf("Orphan storage files found: %d\n", stats.OrphanBlobs)
	fmt.Printf("Stale comment authors:      %d\n", stats.StaleAuthors)
	fmt.Printf("Photos of missing owners:   %d\n", stats.OrphanOwners)
	fmt.Printf("Photo records deleted:      %d\n", stats.DeletedRows)
	fmt.Printf("Storage files deleted:      %d\n", stats.DeletedBlobs)
	fmt.Printf("Comments pulled:            %d\n", stats.PulledComments)
	fmt.Println("========================================")

	if len(stats.Errors) > 0 {
		fmt.Println("\nErrors encountered:")
		for _, err := range stats.Errors {
			fmt.Printf("  - %s\n", err)
		}
	}
}
