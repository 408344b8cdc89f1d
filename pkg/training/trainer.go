package training

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/riskgate/riskgate/pkg/config"
	"github.com/riskgate/riskgate/pkg/ml"
)

// Train runs the full offline pipeline over historical rows:
//
//	derive weak labels -> inject synthetics -> shuffle ->
//	stratified split -> fit encoder on train fold -> fit forest ->
//	evaluate both folds
//
// and returns the assembled artifact. Everything downstream of the
// inputs is deterministic in cfg.Seed. ctx is checked between stages
// so an operator can abort a long run; it does not interrupt a stage
// mid-flight.
func Train(ctx context.Context, rows []LogRow, cfg config.TrainingConfig) (*ml.Artifact, error) {
	startedAt := time.Now().UTC()

	rule := LabelRule{
		StatusThreshold:    cfg.StatusThreshold,
		RuleScoreThreshold: cfg.RuleScoreThreshold,
	}
	examples := rule.Label(rows)
	log.Printf("[TRAIN] derived labels for %d historical rows", len(examples))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	if cfg.SyntheticCount > 0 {
		synth, err := Generate(cfg.SyntheticCount, nil, cfg.Seed)
		if err != nil {
			return nil, fmt.Errorf("train: %w", err)
		}
		examples = append(examples, synth...)
		log.Printf("[TRAIN] injected %d synthetic examples", len(synth))
	}

	Shuffle(examples, cfg.Seed)
	train, test, err := StratifiedSplit(examples, cfg.TestFraction, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	log.Printf("[TRAIN] split %d examples into train=%d test=%d", len(examples), len(train), len(test))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	// The encoder is fit on the train fold only; test-fold values
	// missing from its vocabulary encode as unknown, exactly like
	// unseen production traffic.
	enc := ml.FitEncoder(train)
	xTrain := enc.TransformAll(train)
	xTest := enc.TransformAll(test)
	yTrain := labels(train)
	yTest := labels(test)

	forest, err := ml.FitForest(xTrain, yTrain, ml.ForestParams{
		Trees:        cfg.Trees,
		MaxDepth:     cfg.MaxDepth,
		MinLeafSize:  cfg.MinLeafSize,
		ClassBalance: cfg.ClassBalance,
		Seed:         cfg.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	trainAcc, trainMetrics := evaluate(forest, xTrain, yTrain)
	testAcc, testMetrics := evaluate(forest, xTest, yTest)
	report := &ml.TrainingReport{
		RunID:         uuid.NewString(),
		TrainExamples: len(train),
		TestExamples:  len(test),
		TrainAccuracy: trainAcc,
		TestAccuracy:  testAcc,
		TrainMetrics:  trainMetrics,
		TestMetrics:   testMetrics,
		Seed:          cfg.Seed,
		StartedAt:     startedAt,
		CompletedAt:   time.Now().UTC(),
	}
	log.Printf("[TRAIN] run %s: train acc=%.4f test acc=%.4f test f1=%.4f",
		report.RunID, trainAcc, testAcc, testMetrics.F1)

	return ml.NewArtifact(enc, forest, report), nil
}

func labels(examples []ml.LabeledExample) []bool {
	y := make([]bool, len(examples))
	for i := range examples {
		y[i] = examples[i].IsAttack
	}
	return y
}

// evaluate computes accuracy plus positive-class precision/recall/F1
// at the conventional 0.5 probability cutoff. The serving thresholds
// are a separate concern; 0.5 keeps the report comparable across
// threshold configurations.
func evaluate(f *ml.Forest, x [][]float64, y []bool) (float64, ml.Metrics) {
	if len(x) == 0 {
		return 0, ml.Metrics{}
	}
	var tp, fp, fn, correct int
	for i := range x {
		pred := f.PredictProbability(x[i]) >= 0.5
		switch {
		case pred && y[i]:
			tp++
			correct++
		case pred && !y[i]:
			fp++
		case !pred && y[i]:
			fn++
		default:
			correct++
		}
	}

	var m ml.Metrics
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return float64(correct) / float64(len(x)), m
}
