package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"log/slog"

	hikedb "github.com/garnizeh/hikelog/db"
	"github.com/garnizeh/hikelog/internal/assistant"
	"github.com/garnizeh/hikelog/internal/auth"
	"github.com/garnizeh/hikelog/internal/config"
	"github.com/garnizeh/hikelog/internal/db"
	"github.com/garnizeh/hikelog/internal/journal"
	"github.com/garnizeh/hikelog/internal/repository/sqlite"
	"github.com/garnizeh/hikelog/internal/syncer"
	"github.com/garnizeh/hikelog/pkg/models"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// env holds everything a command needs once the engine is open.
type env struct {
	cfg    *config.Config
	conn   *db.DB
	repo   *sqlite.SQLiteRepo
	tokens *auth.LocalTokenSource
	hikes  *journal.HikeService
	obs    *journal.ObservationService
	logger *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, email string

	root := &cobra.Command{
		Use:           "hikelog",
		Short:         "Offline-first hiking journal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a yaml config file")
	root.PersistentFlags().StringVar(&email, "email", "", "act as the user with this email")

	open := func(ctx context.Context) (*env, error) {
		return openEnv(ctx, configPath, email)
	}

	root.AddCommand(
		newSignupCmd(open),
		newAddHikeCmd(open),
		newListCmd(open),
		newSyncCmd(open),
		newAskCmd(open),
		newReportCmd(open),
	)
	return root
}

func openEnv(ctx context.Context, configPath, email string) (*env, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	conn, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(ctx, conn, hikedb.Migrations); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	repo := sqlite.New(conn, logger)
	tokens := auth.NewLocalTokenSource(cfg.JWTSecret, cfg.TokenDuration)
	gateway := syncer.NewHTTPGateway(cfg.Sync.BaseURL, cfg.Sync.Timeout, logger)
	coordinator := syncer.NewCoordinator(repo, repo, tokens, gateway, logger)
	hikes := journal.NewHikeService(repo, repo, coordinator, cfg.Sync.Workers, logger)

	e := &env{
		cfg:    cfg,
		conn:   conn,
		repo:   repo,
		tokens: tokens,
		hikes:  hikes,
		obs:    journal.NewObservationService(repo, hikes, logger),
		logger: logger,
	}

	if email != "" {
		u, err := repo.GetUserByEmail(ctx, email)
		if err != nil {
			e.close()
			return nil, err
		}
		if u == nil {
			e.close()
			return nil, fmt.Errorf("no user with email %s; run signup first", email)
		}
		tokens.SignIn(u)
	}

	return e, nil
}

func (e *env) close() {
	e.hikes.Close()
	e.conn.Close()
}

// principal returns the signed-in user or a usage error.
func (e *env) principal() (*models.User, error) {
	u, err := e.tokens.Principal()
	if err != nil {
		return nil, fmt.Errorf("pass --email to pick a user")
	}
	return u, nil
}

func newSignupCmd(open func(context.Context) (*env, error)) *cobra.Command {
	var name, password string

	cmd := &cobra.Command{
		Use:   "signup <email>",
		Short: "Create a local user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			id, err := e.repo.CreateUser(cmd.Context(), &models.User{
				Name:         name,
				Email:        args[0],
				PasswordHash: string(hash),
				CreatedAt:    models.Timestamp(),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", id, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newAddHikeCmd(open func(context.Context) (*env, error)) *cobra.Command {
	h := models.Hike{Difficulty: models.DifficultyEasy}

	cmd := &cobra.Command{
		Use:   "add-hike <name>",
		Short: "Record a hike and sync it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			u, err := e.principal()
			if err != nil {
				return err
			}
			if !models.ValidDifficulty(h.Difficulty) {
				return fmt.Errorf("difficulty must be one of Easy, Medium, Hard, Extreme")
			}

			h.Name = args[0]
			h.UserID = u.ID

			done := make(chan struct{})
			var syncErr error
			var syncMsg string
			id, err := e.hikes.InsertAndSync(cmd.Context(), &h, func(msg string, err error) {
				syncMsg, syncErr = msg, err
				close(done)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved hike %d\n", id)

			<-done
			if syncErr != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "sync failed: %v\n", syncErr)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced: %s\n", syncMsg)
			return nil
		},
	}
	cmd.Flags().StringVar(&h.Location, "location", "", "where the hike is")
	cmd.Flags().StringVar(&h.HikeDate, "date", "", "hike date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&h.Difficulty, "difficulty", models.DifficultyEasy, "Easy, Medium, Hard or Extreme")
	cmd.Flags().Float64Var(&h.Length, "length", 0, "length in km")
	cmd.Flags().StringVar(&h.Description, "description", "", "free-form notes")
	cmd.Flags().BoolVar(&h.ParkingAvailable, "parking", false, "parking available at the trailhead")
	return cmd
}

func newListCmd(open func(context.Context) (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the journal's hikes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			u, err := e.principal()
			if err != nil {
				return err
			}

			hikes, err := e.hikes.ListHikes(cmd.Context(), u.ID)
			if err != nil {
				return err
			}
			for i := range hikes {
				h := &hikes[i]
				count, err := e.obs.CountByHike(cmd.Context(), h.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%.1f km\t%s\t%d observations\n",
					h.ID, h.Name, h.HikeDate, h.Length, h.Difficulty, count)
			}
			return nil
		},
	}
}

func newSyncCmd(open func(context.Context) (*env, error)) *cobra.Command {
	var deleted bool

	cmd := &cobra.Command{
		Use:   "sync <hike-id>",
		Short: "Re-send a hike bundle to the remote mirror",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid hike id %q", args[0])
			}

			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if _, err := e.principal(); err != nil {
				return err
			}

			done := make(chan struct{})
			var syncErr error
			var syncMsg string
			e.hikes.SyncHike(id, deleted, func(msg string, err error) {
				syncMsg, syncErr = msg, err
				close(done)
			})
			<-done

			if syncErr != nil {
				return syncErr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced: %s\n", syncMsg)
			return nil
		},
	}
	cmd.Flags().BoolVar(&deleted, "deleted", false, "transmit the bundle as a deletion")
	return cmd
}

func newAskCmd(open func(context.Context) (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the local assistant about the journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			u, err := e.principal()
			if err != nil {
				return err
			}

			local, err := assistant.NewLocalClient(e.cfg.Assistant, e.repo, e.repo, e.logger)
			if err != nil {
				return err
			}

			answer, err := local.Ask(cmd.Context(), u.ID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
}

func newReportCmd(open func(context.Context) (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Summarize the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			u, err := e.principal()
			if err != nil {
				return err
			}

			stats, err := e.repo.UserStats(cmd.Context(), u.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "hikes:        %d\n", stats.HikeCount)
			fmt.Fprintf(out, "total length: %.1f km\n", stats.TotalLengthKm)
			fmt.Fprintf(out, "observations: %d\n", stats.ObservationCount)
			for diff, n := range stats.ByDifficulty {
				fmt.Fprintf(out, "  %-8s %d\n", diff, n)
			}
			return nil
		},
	}
}
