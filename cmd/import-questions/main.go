package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/cache"
	"github.com/istanbulinstitute/educrm-exam/internal/config"
	"github.com/istanbulinstitute/educrm-exam/internal/database"
	"github.com/istanbulinstitute/educrm-exam/internal/i18n"
	"github.com/istanbulinstitute/educrm-exam/internal/importer"
	"github.com/istanbulinstitute/educrm-exam/internal/logger"
	"github.com/istanbulinstitute/educrm-exam/internal/repository"
	"github.com/istanbulinstitute/educrm-exam/internal/service"
)

func main() {
	var (
		examCode string
		examID   string
		file     string
		lang     string
		dryRun   bool
	)
	flag.StringVar(&examCode, "code", "", "Exam code of an active exam")
	flag.StringVar(&examID, "exam", "", "Exam ID (alternative to -code)")
	flag.StringVar(&file, "file", "", "CSV or XLSX file with questions")
	flag.StringVar(&lang, "lang", "", "Language for row errors (tr, en)")
	flag.BoolVar(&dryRun, "dry-run", false, "Validate the file without importing")
	flag.Parse()

	if file == "" || (examCode == "" && examID == "" && !dryRun) {
		fmt.Println("Usage: import-questions -file sorular.csv (-code ABC123 | -exam <uuid>) [-dry-run] [-lang en]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	bundle, err := i18n.New(cfg.DefaultLocale)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load translations")
	}
	loc := bundle.Localizer(lang)

	// ─── Parse & Validate ──────────────────────────────────────────────
	f, err := os.Open(file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open file")
	}
	rows, err := importer.Parse(file, f)
	f.Close()
	if err != nil {
		var he *importer.HeaderError
		if errors.As(err, &he) {
			fmt.Println(loc.Td("import.missing_column", map[string]any{"Column": he.Column}))
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Failed to parse file")
	}

	questions, rowErrs := importer.Validate(rows)
	if len(rowErrs) > 0 {
		printRowErrors(loc, rowErrs)
		os.Exit(1)
	}
	fmt.Printf("%d row(s) valid\n", len(questions))
	if dryRun {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// ─── Connect ───────────────────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	examRepo := repository.NewExamRepository(pool)
	questionService := service.NewQuestionService(
		repository.NewQuestionRepository(pool),
		examRepo,
		cache.NewPublicExamCache(rdb, cfg.PublicExamCacheTTL),
		log,
	)

	// ─── Resolve Exam ──────────────────────────────────────────────────
	var target uuid.UUID
	if examID != "" {
		target, err = uuid.Parse(examID)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid exam ID")
		}
	} else {
		exam, err := examRepo.GetActiveByCode(ctx, examCode)
		if err != nil {
			log.Fatal().Err(err).Str("code", examCode).Msg("Failed to find active exam")
		}
		target = exam.ID
	}

	// ─── Import ────────────────────────────────────────────────────────
	summary, err := questionService.Import(ctx, target, rows)
	if err != nil {
		var ie *service.ImportError
		if errors.As(err, &ie) {
			printRowErrors(loc, ie.Rows)
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Import failed")
	}

	fmt.Println(loc.Td("import.success", map[string]any{"Count": summary.Count}))
	fmt.Printf("Points added: %d\n", summary.TotalPoints)
}

func printRowErrors(loc *i18n.Localizer, errs []importer.RowError) {
	for _, e := range errs {
		msg := loc.Td(e.MessageID, map[string]any{"Value": e.Value})
		fmt.Println(loc.Td("import.row", map[string]any{"Row": e.Row, "Message": msg}))
	}
}
