package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/openvisage/facegate/internal/audit"
	"github.com/openvisage/facegate/internal/config"
	"github.com/openvisage/facegate/internal/store"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage enrolled users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled users with their last login time",
	RunE:  runUsersList,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an enrolled user by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersDelete,
}

func init() {
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
}

func runUsersList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	all, err := store.NewUsers(db).ListAll(ctx)
	if err != nil {
		return err
	}

	lastLogins := audit.NewLog(cfg.Audit.Path).LastLogins()

	fmt.Printf("%-6s %-20s %-30s %s\n", "ID", "NAME", "EMAIL", "LAST LOGIN")
	for _, usr := range all {
		last := lastLogins[usr.Name]
		if last == "" {
			last = "-"
		}
		fmt.Printf("%-6d %-20s %-30s %s\n", usr.ID, usr.Name, usr.Email, last)
	}
	return nil
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q", args[0])
	}

	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.NewUsers(db).DeleteByID(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted user %d\n", id)
	return nil
}
