package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lite-lake/peerdns/internal/domain/entity"
	"github.com/lite-lake/peerdns/internal/infrastructure/backup"
)

func newBackupCommand(ctx *Context) *cobra.Command {
	var (
		all  bool
		keep int
	)

	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Inspect and prune zone snapshots",
		Long:  "Every sync snapshots the managed records before writing. These commands read and prune them.",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackups(ctx, func(mgr *backup.Manager) error {
				key := ctx.Config.SnapshotKey()
				if all {
					key = entity.SnapshotKey{}
				}
				infos, err := mgr.Store().List(cmd.Context(), key)
				if err != nil {
					return err
				}
				renderSnapshots(cmd.OutOrStdout(), infos)
				return nil
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a snapshot as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackups(ctx, func(mgr *backup.Manager) error {
				snap, err := mgr.Store().Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				data, err := yaml.Marshal(snap)
				if err != nil {
					return fmt.Errorf("marshal snapshot: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
				return nil
			})
		},
	}

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest snapshots of the configured record set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("keep") {
				keep = ctx.Config.Backup.Retention
			}
			return withBackups(ctx, func(mgr *backup.Manager) error {
				removed, err := mgr.Prune(cmd.Context(), ctx.Config.SnapshotKey(), keep)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d snapshots.\n", removed)
				return nil
			})
		},
	}

	listCmd.Flags().BoolVarP(&all, "all", "a", false, "List snapshots of every record set")
	pruneCmd.Flags().IntVar(&keep, "keep", 0, "Snapshots to keep (defaults to backup.retention)")

	backupCmd.AddCommand(listCmd)
	backupCmd.AddCommand(showCmd)
	backupCmd.AddCommand(pruneCmd)

	return backupCmd
}

func withBackups(ctx *Context, fn func(*backup.Manager) error) error {
	mgr, err := openBackups(ctx.Config, nil)
	if err != nil {
		return err
	}
	defer mgr.Store().Close()
	return fn(mgr)
}
