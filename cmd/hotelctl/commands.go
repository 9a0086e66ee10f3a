package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotel_booking/internal/adapters/catalogfeed"
	server "hotel_booking/internal/adapters/http_server"
	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/adapters/xlsx"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	mysqlrepo "hotel_booking/internal/storage/mysql"
)

func openDB(ctx context.Context, cfg shared.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	return db, nil
}

func migrateCmd(cfg shared.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := mysqlrepo.Migrate(cmd.Context(), db, mysqlrepo.Migrations())
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Println("No pending migrations.")
				return nil
			}
			for _, v := range applied {
				fmt.Printf("applied %s\n", v)
			}
			return nil
		},
	}
}

func seedCmd(cfg shared.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <catalog.yaml|url>",
		Short: "Import hotels and rooms from a YAML/JSON catalog file or feed URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, _ := cmd.Flags().GetInt("workers")

			docs, err := loadCatalog(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}

			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
			defer cache.Close()

			catalog := app.NewCatalogService(mysqlrepo.New(db), cache, cfg.CacheTTL, log.Logger)
			imp := app.NewImportService(catalog, log.Logger)

			log.Info().Str("file", args[0]).Int("hotels", len(docs)).Int("workers", workers).Msg("seed starting")
			rep, err := imp.ImportAll(cmd.Context(), docs, workers)
			if err != nil {
				return err
			}
			log.Info().
				Int("hotels", rep.Hotels).
				Int("rooms", rep.Rooms).
				Int("skipped", rep.Skipped).
				Int("failed", rep.Failed).
				Msg("seed completed")
			if rep.Failed > 0 {
				return fmt.Errorf("%d hotel(s) failed to import", rep.Failed)
			}
			return nil
		},
	}
	cmd.Flags().Int("workers", cfg.SeedWorkers, "hotels imported concurrently")
	return cmd
}

// loadCatalog reads src from the feed when it is an http(s) URL and from disk otherwise.
func loadCatalog(ctx context.Context, cfg shared.Config, src string) ([]map[string]any, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return catalogfeed.New(cfg.CatalogFeedKey, 2).Fetch(ctx, src)
	}
	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return app.ParseCatalog(f)
}

func exportCmd(cfg shared.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write reservations with their price breakdown to an .xlsx file",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			owner, _ := cmd.Flags().GetString("owner")
			roomID, _ := cmd.Flags().GetInt64("room-id")
			hotelID, _ := cmd.Flags().GetInt64("hotel-id")
			withCancelled, _ := cmd.Flags().GetBool("include-cancelled")

			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
			defer cache.Close()

			repo := mysqlrepo.New(db)
			catalog := app.NewCatalogService(repo, cache, cfg.CacheTTL, log.Logger)
			res := app.NewReservationService(repo, catalog, log.Logger)
			exp := app.NewExportService(res, app.NewCalculator(catalog, cfg.DefaultCurrency, log.Logger, nil))

			var (
				actor = domain.Actor{ID: "hotelctl", Staff: true}
				q     *domain.ReservationsQuery
			)
			if owner != "" {
				actor = domain.Actor{ID: owner}
			} else {
				q = &domain.ReservationsQuery{IncludeCancelled: withCancelled}
				if roomID > 0 {
					q.RoomID = &roomID
				}
				if hotelID > 0 {
					q.HotelID = &hotelID
				}
			}
			lines, err := exp.Lines(cmd.Context(), actor, q)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := xlsx.WriteReservations(f, lines); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			log.Info().Str("file", out).Int("rows", len(lines)).Msg("export written")
			return nil
		},
	}
	cmd.Flags().String("out", "reservations.xlsx", "output file")
	cmd.Flags().String("owner", "", "export only this user's reservations")
	cmd.Flags().Int64("room-id", 0, "filter by room")
	cmd.Flags().Int64("hotel-id", 0, "filter by hotel")
	cmd.Flags().Bool("include-cancelled", false, "include cancelled reservations")
	return cmd
}

func tokenCmd(cfg shared.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue a bearer token for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			staff, _ := cmd.Flags().GetBool("staff")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			tok, err := server.IssueToken([]byte(cfg.AuthSecret), domain.Actor{ID: args[0], Name: name, Staff: staff}, ttl)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
	cmd.Flags().String("name", "", "display name, used as the default guest name")
	cmd.Flags().Bool("staff", false, "grant staff access")
	cmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	return cmd
}
