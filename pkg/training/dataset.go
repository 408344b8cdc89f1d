package training

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"

	"github.com/riskgate/riskgate/pkg/ml"
)

// logColumns is the required header of a historical-log CSV:
// the six scoring fields plus the recorded response status.
var logColumns = []string{"method", "path", "role", "userId", "userAgent", "risk_rule", "statusCode"}

// ReadCSV loads a historical request log. The header must contain all
// required columns; extra columns are ignored.
func ReadCSV(path string) ([]LogRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) ([]LogRow, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset: read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range logColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("dataset: missing column %q", name)
		}
	}

	var rows []LogRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: line %d: %w", line, err)
		}

		riskRule, err := strconv.ParseFloat(rec[col["risk_rule"]], 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: line %d: risk_rule: %w", line, err)
		}
		status, err := strconv.Atoi(rec[col["statusCode"]])
		if err != nil {
			return nil, fmt.Errorf("dataset: line %d: statusCode: %w", line, err)
		}

		rows = append(rows, LogRow{
			Method:     rec[col["method"]],
			Path:       rec[col["path"]],
			Role:       rec[col["role"]],
			UserID:     rec[col["userId"]],
			UserAgent:  rec[col["userAgent"]],
			RiskRule:   riskRule,
			StatusCode: status,
		})
	}
	return rows, nil
}

// Shuffle permutes examples in place with a seeded rng.
func Shuffle(examples []ml.LabeledExample, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})
}

// StratifiedSplit partitions examples into train/test folds preserving
// the class ratio. If either class cannot appear in both folds the
// split fails with per-class counts so the operator can raise the
// synthetic volume; silently training on a single class is worse than
// not training.
func StratifiedSplit(examples []ml.LabeledExample, testFraction float64, seed int64) (train, test []ml.LabeledExample, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("stratified split: test fraction must be in (0,1), got %v", testFraction)
	}

	var benign, attack []int
	for i, ex := range examples {
		if ex.IsAttack {
			attack = append(attack, i)
		} else {
			benign = append(benign, i)
		}
	}
	if len(benign) < 2 || len(attack) < 2 {
		return nil, nil, fmt.Errorf(
			"stratified split: need at least 2 examples per class to populate both folds, got benign=%d attack=%d",
			len(benign), len(attack))
	}

	rng := rand.New(rand.NewSource(seed))
	for _, class := range [][]int{benign, attack} {
		rng.Shuffle(len(class), func(i, j int) {
			class[i], class[j] = class[j], class[i]
		})
		nTest := int(float64(len(class)) * testFraction)
		if nTest < 1 {
			nTest = 1
		}
		if nTest >= len(class) {
			nTest = len(class) - 1
		}
		for k, idx := range class {
			if k < nTest {
				test = append(test, examples[idx])
			} else {
				train = append(train, examples[idx])
			}
		}
	}

	// Fold order should not encode the class.
	Shuffle(train, seed+1)
	Shuffle(test, seed+2)
	return train, test, nil
}
