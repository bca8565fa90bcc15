package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/CTAG07/crsexplorer/pkg/crsdb"
	"github.com/CTAG07/crsexplorer/pkg/highlight"
	"github.com/CTAG07/crsexplorer/pkg/proj"
	"github.com/CTAG07/crsexplorer/pkg/site"
	"github.com/CTAG07/crsexplorer/pkg/templating"
	"github.com/spf13/cobra"
)

func newGenerateCmd(a *app) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the site for every CRS of proj.db and the fetched lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("workers") {
				a.config.Site.Workers = workers
			}
			report, err := runGenerate(cmd.Context(), a.config, a.logger)
			if err != nil {
				a.logger.Error("Generation failed", "error", err)
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d records, %d duplicated codes, %d failed exports, %d files\n",
				report.Records, len(report.Duplicates), report.Failures, report.Files)
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 1, "number of CRSs rendered concurrently")
	return cmd
}

func runGenerate(ctx context.Context, config *Config, logger *slog.Logger) (*site.Report, error) {
	sc := config.Site

	dbPath := resolveProjDB(sc.ProjDBPath, os.Getenv)
	logger.Info("Reading CRS database", "path", dbPath)
	db, err := openProjDB(dbPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	catalogue, err := crsdb.Open(db)
	if err != nil {
		return nil, fmt.Errorf("failed to open crs catalogue: %w", err)
	}
	defer catalogue.Close()
	catalogue.SetLogger(logger)

	records, err := loadRecords(ctx, catalogue, sc, logger)
	if err != nil {
		return nil, err
	}

	if sc.EPSGVersion == "" {
		meta, err := catalogue.Metadata(ctx)
		if err != nil {
			return nil, err
		}
		sc.EPSGVersion = meta["EPSG.VERSION"]
	}
	if sc.ProjVersion == "" {
		sc.ProjVersion = proj.Info().Version
	}

	reps := make([]site.Representation, 0, len(sc.Representations))
	for _, name := range sc.Representations {
		rep, err := site.ParseRepresentation(name)
		if err != nil {
			return nil, err
		}
		reps = append(reps, rep)
	}

	tm, err := templating.NewTemplateManager(logger, config.Templates, sc.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create template manager: %w", err)
	}

	gen, err := site.NewGenerator(site.Config{
		DestDir:         sc.DestDir,
		PageSize:        sc.PageSize,
		Workers:         sc.Workers,
		Representations: reps,
		SiteURL:         sc.SiteURL,
		Version:         sc.Version,
		ProjVersion:     sc.ProjVersion,
		EPSGVersion:     sc.EPSGVersion,
	}, site.Deps{
		Logger:      logger,
		Templates:   tm,
		Highlighter: highlight.New(sc.HighlightStyle),
		NewExporter: func() (site.Exporter, error) {
			return site.NewProjExporter(dbPath)
		},
	})
	if err != nil {
		return nil, err
	}
	return gen.Generate(ctx, records)
}

// loadRecords returns the database CRSs that have an area of use, deprecated
// ones included, followed by the records of the extra lists.
func loadRecords(ctx context.Context, catalogue *crsdb.Database, sc *SiteConfig, logger *slog.Logger) ([]crsdb.Record, error) {
	auths := sc.Authorities
	if len(auths) == 0 {
		auths = []string{""}
	}

	var records []crsdb.Record
	for _, auth := range auths {
		found, err := catalogue.QueryCRSInfo(ctx, crsdb.QueryOptions{AuthName: auth, AllowDeprecated: true})
		if err != nil {
			return nil, err
		}
		records = append(records, crsdb.FilterWithArea(found)...)
	}
	logger.Info("Loaded CRS database", "records", len(records))

	for _, path := range sc.ExtraLists {
		extra, err := crsdb.ReadJSONFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("Extra CRS list not found, skipping", "path", path)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read extra crs list: %w", err)
		}
		logger.Info("Loaded extra CRS list", "path", path, "records", len(extra))
		records = append(records, extra...)
	}
	return records, nil
}
