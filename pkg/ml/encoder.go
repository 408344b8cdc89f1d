package ml

// Encoder maps a RequestContext to a fixed-length feature vector: one
// one-hot block per categorical field (block width = vocabulary size
// recorded at fit time) followed by the raw risk_rule value.
//
// The vocabulary is an explicit, serializable value -> index mapping
// per field. A value absent from the fitted vocabulary encodes to an
// all-zero block; production traffic routinely contains paths and user
// agents never seen in training, and that must never be an error.
//
// An Encoder is immutable after Fit. Transform has no side effects and
// is safe for concurrent use by any number of goroutines.
type Encoder struct {
	// Vocab[i] maps observed values of CategoricalFields[i] to their
	// one-hot index within that field's block.
	Vocab [5]map[string]int `json:"vocab"`

	// Width is the total vector length: sum of block widths plus one
	// for risk_rule. Fixed for the lifetime of the artifact.
	Width int `json:"width"`
}

// FitEncoder builds the per-field vocabularies from the training fold.
// Indices are assigned in first-seen order, so fitting the same fold
// twice yields identical encoders.
func FitEncoder(examples []LabeledExample) *Encoder {
	enc := &Encoder{}
	for i := range enc.Vocab {
		enc.Vocab[i] = make(map[string]int)
	}
	for _, ex := range examples {
		vals := ex.Context.categorical()
		for i, v := range vals {
			if _, ok := enc.Vocab[i][v]; !ok {
				enc.Vocab[i][v] = len(enc.Vocab[i])
			}
		}
	}
	enc.Width = 1
	for i := range enc.Vocab {
		enc.Width += len(enc.Vocab[i])
	}
	return enc
}

// Transform encodes a single record into a vector of exactly Width
// elements. Unknown categorical values leave their block all zero.
func (e *Encoder) Transform(rc *RequestContext) []float64 {
	vec := make([]float64, e.Width)
	offset := 0
	vals := rc.categorical()
	for i, v := range vals {
		if idx, ok := e.Vocab[i][v]; ok {
			vec[offset+idx] = 1
		}
		offset += len(e.Vocab[i])
	}
	vec[offset] = rc.RiskRule
	return vec
}

// TransformAll encodes a batch, preserving order.
func (e *Encoder) TransformAll(examples []LabeledExample) [][]float64 {
	out := make([][]float64, len(examples))
	for i := range examples {
		out[i] = e.Transform(&examples[i].Context)
	}
	return out
}
