package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/riskgate/riskgate/pkg/config"
	"github.com/riskgate/riskgate/pkg/ml"
	"github.com/riskgate/riskgate/pkg/training"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var (
		dataPath   = flag.String("data", "", "historical log CSV (method,path,role,userId,userAgent,risk_rule,statusCode)")
		pgDSN      = flag.String("pg", "", "Postgres DSN to read the historical log from instead of CSV")
		pgTable    = flag.String("pg-table", "request_logs", "Postgres table holding the historical log")
		outPath    = flag.String("out", "", "artifact output path (default: config artifact_path)")
		configPath = flag.String("config", "", "optional YAML config overlay")
		seed       = flag.Int64("seed", -1, "override training seed (-1 = use config)")
	)
	flag.Parse()

	cfg := config.NewDefaultConfig()
	if *configPath != "" {
		if err := cfg.LoadFile(*configPath); err != nil {
			log.Fatalf("[STARTUP] FATAL: %v", err)
		}
	}
	cfg.MustValidate()
	if *seed >= 0 {
		cfg.Training.Seed = *seed
	}
	if *outPath == "" {
		*outPath = cfg.ArtifactPath
	}

	// Ctrl-C aborts between pipeline stages.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rows, err := loadRows(ctx, *dataPath, *pgDSN, *pgTable)
	if err != nil {
		log.Fatalf("[TRAIN] FATAL: %v", err)
	}
	log.Printf("[TRAIN] loaded %d historical rows", len(rows))

	artifact, err := training.Train(ctx, rows, cfg.Training)
	if err != nil {
		log.Fatalf("[TRAIN] FATAL: %v", err)
	}
	if err := artifact.Save(*outPath); err != nil {
		log.Fatalf("[TRAIN] FATAL: %v", err)
	}
	log.Printf("[TRAIN] artifact %s written to %s", artifact.ID, *outPath)

	if err := register(ctx, cfg, artifact, *outPath); err != nil {
		log.Fatalf("[TRAIN] FATAL: %v", err)
	}

	report, _ := json.MarshalIndent(artifact.Report, "", "  ")
	fmt.Println(string(report))
}

// loadRows reads the historical log from Postgres when a DSN is given,
// otherwise from CSV. Training with no historical rows at all is legal:
// the synthetic augmenter alone can carry a bootstrap run.
func loadRows(ctx context.Context, dataPath, pgDSN, pgTable string) ([]training.LogRow, error) {
	if pgDSN != "" {
		return training.LoadPostgres(ctx, pgDSN, pgTable)
	}
	if dataPath == "" {
		log.Println("[WARN] no -data or -pg given, training on synthetic examples only")
		return nil, nil
	}
	return training.ReadCSV(dataPath)
}

func register(ctx context.Context, cfg *config.Config, artifact *ml.Artifact, path string) error {
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
	}
	reg, err := ml.NewRegistry(cfg.RegistryDir, rdb)
	if err != nil {
		return err
	}
	entry, err := reg.Register(ctx, artifact, path)
	if err != nil {
		return err
	}
	log.Printf("[TRAIN] registered artifact %s (sha256=%s size=%d)",
		entry.ArtifactID, entry.FileHash[:12], entry.FileSize)
	return nil
}
