package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/insightreporter/internal/store"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

type keysFlags struct {
	migrationsDir string
}

func newKeysCmd(root *rootFlags) *cobra.Command {
	f := &keysFlags{}

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys directly in the database",
	}
	cmd.PersistentFlags().StringVar(&f.migrationsDir, "migrations", "migrations", "directory holding SQL migrations")

	cmd.AddCommand(newKeysCreateCmd(root, f))
	cmd.AddCommand(newKeysListCmd(root, f))
	cmd.AddCommand(newKeysRevokeCmd(root, f))
	return cmd
}

func newKeysCreateCmd(root *rootFlags, f *keysFlags) *cobra.Command {
	var (
		name   string
		scopes []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an API key and print it once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return errors.New("--name is required")
			}
			for _, s := range scopes {
				if s != models.ScopeBriefing && s != models.ScopeAdmin {
					return fmt.Errorf("unknown scope %q: must be %s or %s", s, models.ScopeBriefing, models.ScopeAdmin)
				}
			}

			return withStore(cmd, root, f, func(ctx context.Context, st *store.PostgresStore) error {
				raw, key, err := store.NewAPIKey(name, scopes)
				if err != nil {
					return err
				}
				if err := st.CreateAPIKey(ctx, key); err != nil {
					if errors.Is(err, store.ErrDuplicateKey) {
						return fmt.Errorf("an active key named %q already exists", name)
					}
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "id:     %s\n", key.ID)
				fmt.Fprintf(w, "scopes: %s\n", strings.Join(key.Scopes, ","))
				fmt.Fprintf(w, "key:    %s\n", raw)
				fmt.Fprintln(w, "Store this key now; it cannot be shown again.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "human-readable key name")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{models.ScopeBriefing}, "scopes granted to the key")
	return cmd
}

func newKeysListCmd(root *rootFlags, f *keysFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, root, f, func(ctx context.Context, st *store.PostgresStore) error {
				keys, err := st.ListAPIKeys(ctx)
				if err != nil {
					return err
				}
				t := table.New().
					Border(lipgloss.HiddenBorder()).
					Headers("ID", "NAME", "PREFIX", "SCOPES", "CREATED", "LAST USED")
				for _, k := range keys {
					lastUsed := "never"
					if k.LastUsedAt != nil {
						lastUsed = k.LastUsedAt.Format(time.RFC3339)
					}
					t.Row(k.ID.String(), k.Name, k.KeyPrefix,
						strings.Join(k.Scopes, ","), k.CreatedAt.Format(time.RFC3339), lastUsed)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), t.String())
				return err
			})
		},
	}
}

func newKeysRevokeCmd(root *rootFlags, f *keysFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid key id %q: %w", args[0], err)
			}
			return withStore(cmd, root, f, func(ctx context.Context, st *store.PostgresStore) error {
				if err := st.RevokeAPIKey(ctx, id); err != nil {
					if errors.Is(err, store.ErrNotFound) {
						return fmt.Errorf("key %s not found", id)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", id)
				return nil
			})
		},
	}
}

// withStore connects to the configured database, applies migrations and
// calls fn with a store backed by the pool.
func withStore(cmd *cobra.Command, root *rootFlags, f *keysFlags, fn func(context.Context, *store.PostgresStore) error) error {
	cfg, err := root.loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	ctx := cmd.Context()
	var pool *pgxpool.Pool
	if pool, err = store.Connect(ctx, cfg.Database); err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := store.RunMigrations(cfg.Database.URL, f.migrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return fn(ctx, store.NewPostgresStore(pool))
}
