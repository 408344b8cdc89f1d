package training

import (
	"reflect"
	"strings"
	"testing"

	"github.com/riskgate/riskgate/pkg/ml"
)

const sampleCSV = `method,path,role,userId,userAgent,risk_rule,statusCode
GET,/info,user,u1,curl/8.5.0,0.1,200
POST,/honeypot/db-export,guest,u2,masscan/1.3,0.9,403
GET,/profile,admin,u3,Mozilla/5.0,0.2,200
`

func TestParseCSV(t *testing.T) {
	rows, err := parseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	want := LogRow{Method: "POST", Path: "/honeypot/db-export", Role: "guest", UserID: "u2", UserAgent: "masscan/1.3", RiskRule: 0.9, StatusCode: 403}
	if rows[1] != want {
		t.Errorf("row 1 = %+v, want %+v", rows[1], want)
	}
}

func TestParseCSVColumnOrderIndependent(t *testing.T) {
	reordered := `statusCode,method,risk_rule,path,role,userId,userAgent,extra
200,GET,0.1,/info,user,u1,curl/8.5.0,ignored
`
	rows, err := parseCSV(strings.NewReader(reordered))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if rows[0].Method != "GET" || rows[0].StatusCode != 200 || rows[0].RiskRule != 0.1 {
		t.Errorf("reordered columns parsed wrong: %+v", rows[0])
	}
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"missing column", "method,path,role,userId,userAgent,risk_rule\nGET,/a,u,u1,x,0.1\n"},
		{"bad risk_rule", "method,path,role,userId,userAgent,risk_rule,statusCode\nGET,/a,u,u1,x,high,200\n"},
		{"bad statusCode", "method,path,role,userId,userAgent,risk_rule,statusCode\nGET,/a,u,u1,x,0.1,OK\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseCSV(strings.NewReader(tt.csv)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestShuffleDeterministic(t *testing.T) {
	mk := func() []ml.LabeledExample {
		out := make([]ml.LabeledExample, 20)
		for i := range out {
			out[i].Context.UserID = string(rune('a' + i))
		}
		return out
	}

	a, b := mk(), mk()
	Shuffle(a, 42)
	Shuffle(b, 42)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed should produce the same permutation")
	}

	c := mk()
	Shuffle(c, 43)
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds should permute differently")
	}
}

func splitFixture(benign, attack int) []ml.LabeledExample {
	out := make([]ml.LabeledExample, 0, benign+attack)
	for i := 0; i < benign; i++ {
		out = append(out, ml.LabeledExample{Context: ml.RequestContext{Path: "/info"}})
	}
	for i := 0; i < attack; i++ {
		out = append(out, ml.LabeledExample{Context: ml.RequestContext{Path: "/honeypot/x"}, IsAttack: true})
	}
	return out
}

func TestStratifiedSplitPreservesRatio(t *testing.T) {
	examples := splitFixture(70, 30)
	train, test, err := StratifiedSplit(examples, 0.3, 42)
	if err != nil {
		t.Fatalf("StratifiedSplit: %v", err)
	}
	if len(train)+len(test) != 100 {
		t.Fatalf("folds lose examples: train=%d test=%d", len(train), len(test))
	}

	count := func(fold []ml.LabeledExample) (benign, attack int) {
		for _, ex := range fold {
			if ex.IsAttack {
				attack++
			} else {
				benign++
			}
		}
		return
	}
	trBen, trAtk := count(train)
	teBen, teAtk := count(test)

	if teBen != 21 || teAtk != 9 {
		t.Errorf("test fold = %d benign / %d attack, want 21/9", teBen, teAtk)
	}
	if trBen != 49 || trAtk != 21 {
		t.Errorf("train fold = %d benign / %d attack, want 49/21", trBen, trAtk)
	}
}

func TestStratifiedSplitBothClassesInBothFolds(t *testing.T) {
	// Tiny but splittable: 2 of each class.
	train, test, err := StratifiedSplit(splitFixture(2, 2), 0.5, 1)
	if err != nil {
		t.Fatalf("StratifiedSplit: %v", err)
	}
	for name, fold := range map[string][]ml.LabeledExample{"train": train, "test": test} {
		var attack, benign bool
		for _, ex := range fold {
			if ex.IsAttack {
				attack = true
			} else {
				benign = true
			}
		}
		if !attack || !benign {
			t.Errorf("%s fold missing a class", name)
		}
	}
}

func TestStratifiedSplitInsufficientClass(t *testing.T) {
	_, _, err := StratifiedSplit(splitFixture(50, 1), 0.3, 42)
	if err == nil {
		t.Fatal("single-example class should fail the split")
	}
	// The operator needs the per-class counts to fix the dataset.
	if !strings.Contains(err.Error(), "benign=50") || !strings.Contains(err.Error(), "attack=1") {
		t.Errorf("error should carry per-class counts, got: %v", err)
	}
}

func TestStratifiedSplitBadFraction(t *testing.T) {
	for _, f := range []float64{0, 1, -0.2, 1.5} {
		if _, _, err := StratifiedSplit(splitFixture(5, 5), f, 1); err == nil {
			t.Errorf("fraction %v should fail", f)
		}
	}
}
