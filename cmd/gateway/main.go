package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riskgate/riskgate/pkg/config"
	"github.com/riskgate/riskgate/pkg/httputil"
	"github.com/riskgate/riskgate/pkg/ml"
	"github.com/riskgate/riskgate/pkg/telemetry"
)

const Version = "0.1.0"

// scoreRequest is the /score payload. Pointer fields distinguish a
// missing key from a legitimate zero value; all six are required.
type scoreRequest struct {
	Method    *string  `json:"method"`
	Path      *string  `json:"path"`
	Role      *string  `json:"role"`
	UserID    *string  `json:"userId"`
	UserAgent *string  `json:"userAgent"`
	RiskRule  *float64 `json:"risk_rule"`
}

// validate returns the name of the first missing field, or "".
func (r *scoreRequest) validate() string {
	switch {
	case r.Method == nil:
		return "method"
	case r.Path == nil:
		return "path"
	case r.Role == nil:
		return "role"
	case r.UserID == nil:
		return "userId"
	case r.UserAgent == nil:
		return "userAgent"
	case r.RiskRule == nil:
		return "risk_rule"
	}
	return ""
}

func (r *scoreRequest) context() ml.RequestContext {
	return ml.RequestContext{
		Method:    *r.Method,
		Path:      *r.Path,
		Role:      *r.Role,
		UserID:    *r.UserID,
		UserAgent: *r.UserAgent,
		RiskRule:  *r.RiskRule,
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cfg := loadConfig()
		if len(os.Args) > 2 {
			cfg.ListenPort = os.Args[2]
		}
		runHTTPServer(cfg)
	case "score":
		if len(os.Args) < 3 {
			fmt.Println("Usage: riskgate score <json>")
			os.Exit(1)
		}
		runCLIScore(loadConfig(), os.Args[2])
	case "version":
		fmt.Printf("riskgate v%s\n", Version)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("riskgate v%s - request risk scoring gateway\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  riskgate serve [port]   Start HTTP server (default: 5000)")
	fmt.Println("  riskgate score <json>   Score one request context and exit")
	fmt.Println("  riskgate version        Show version")
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Println("  riskgate serve 8080")
	fmt.Println(`  riskgate score '{"method":"GET","path":"/honeypot/db-export","role":"guest","userId":"u1","userAgent":"curl/8.5.0","risk_rule":0.9}'`)
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  RISKGATE_ARTIFACT        Path to the trained artifact (default: model/riskgate.model)")
	fmt.Println("  RISKGATE_LOW_THRESHOLD   normal/medium_risk boundary (default: 0.30)")
	fmt.Println("  RISKGATE_HIGH_THRESHOLD  medium_risk/high_risk boundary (default: 0.60)")
	fmt.Println("  RISKGATE_CONFIG          Optional YAML config overlay")
}

func loadConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	if path := os.Getenv("RISKGATE_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			log.Fatalf("[STARTUP] FATAL: %v", err)
		}
	}
	cfg.MustValidate()
	return cfg
}

// newScorer loads the artifact and builds the serving pipeline.
// Serving without a model is not an option, so failure is fatal.
func newScorer(cfg *config.Config) *ml.Scorer {
	artifact, err := ml.LoadArtifact(cfg.ArtifactPath)
	if err != nil {
		log.Fatalf("[STARTUP] FATAL: %v", err)
	}
	labeler, err := ml.NewLabeler(cfg.LowThreshold, cfg.HighThreshold)
	if err != nil {
		log.Fatalf("[STARTUP] FATAL: %v", err)
	}
	log.Printf("[STARTUP] loaded artifact %s (width=%d trees=%d)",
		artifact.ID, artifact.Encoder.Width, len(artifact.Forest.Trees))
	return ml.NewScorer(ml.NewHandle(artifact), labeler)
}

func runHTTPServer(cfg *config.Config) {
	scorer := newScorer(cfg)
	sem := httputil.NewSemaphore(cfg.MaxConcurrentScores)

	app := fiber.New(fiber.Config{
		AppName: "riskgate",
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "ok",
			"version":     Version,
			"artifact":    scorer.Handle().Current().ID,
			"concurrency": sem.Stats(),
		})
	})

	app.Post("/score", func(c fiber.Ctx) error {
		if !sem.TryAcquire() {
			telemetry.RequestsShed.Inc()
			c.Set("Retry-After", "1")
			return c.Status(503).JSON(fiber.Map{"error": "scoring capacity saturated"})
		}
		defer sem.Release()

		var req scoreRequest
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		if missing := req.validate(); missing != "" {
			return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("missing field: %s", missing)})
		}

		start := time.Now()
		rc := req.context()
		result := scorer.Score(&rc)
		telemetry.ScoreDuration.Observe(time.Since(start).Seconds())
		return c.JSON(result)
	})

	// Reload swaps in a freshly loaded artifact; on failure the old one
	// keeps serving.
	app.Post("/reload", func(c fiber.Ctx) error {
		artifact, err := ml.LoadArtifact(cfg.ArtifactPath)
		if err != nil {
			log.Printf("[WARN] reload failed, keeping current artifact: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		old := scorer.Handle().Swap(artifact)
		telemetry.ArtifactReloads.Inc()
		log.Printf("[RELOAD] artifact %s -> %s", old.ID, artifact.ID)
		return c.JSON(fiber.Map{"artifact": artifact.ID, "previous": old.ID})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	log.Printf("[STARTUP] riskgate gateway listening on :%s", cfg.ListenPort)
	log.Printf("Endpoints:")
	log.Printf("  GET  /health   - Health check")
	log.Printf("  POST /score    - Score a request context")
	log.Printf("  POST /reload   - Reload the artifact from disk")
	log.Printf("  GET  /metrics  - Prometheus metrics")

	if err := app.Listen(":" + cfg.ListenPort); err != nil {
		log.Fatal(err)
	}
}

func runCLIScore(cfg *config.Config, payload string) {
	scorer := newScorer(cfg)

	var req scoreRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		log.Fatalf("invalid request json: %v", err)
	}
	if missing := req.validate(); missing != "" {
		log.Fatalf("missing field: %s", missing)
	}

	rc := req.context()
	result := scorer.Score(&rc)
	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}
