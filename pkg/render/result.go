package render

import (
	"math"
	"strconv"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-predictform/pkg/predictor"
)

// Classification is the binary outcome of a prediction.
type Classification string

const (
	Positive Classification = "positive"
	Negative Classification = "negative"
)

// Classify maps a result onto its classification.
func Classify(result predictor.Result) Classification {
	if result.IsDiabetic {
		return Positive
	}
	return Negative
}

// Label is the short outcome text.
func (c Classification) Label() string {
	if c == Positive {
		return "Positive for Diabetes"
	}
	return "Negative for Diabetes"
}

// Headline is the panel title.
func (c Classification) Headline() string {
	if c == Positive {
		return "Diabetes Detected"
	}
	return "No Diabetes Detected"
}

// CSSClass names the result panel modifier.
func (c Classification) CSSClass() string {
	if c == Positive {
		return "diabetic"
	}
	return "non-diabetic"
}

// FormatProbability renders a 0..1 probability as a percentage with two
// decimals, e.g. 0.734 -> "73.40%".
func FormatProbability(probability float64) string {
	return strconv.FormatFloat(probability*100, 'f', 2, 64) + "%"
}

// FillPercent is the fill bar width in percent, clamped to [0,100].
func FillPercent(probability float64) float64 {
	width := probability * 100
	switch {
	case math.IsNaN(width), width < 0:
		return 0
	case width > 100:
		return 100
	default:
		return width
	}
}

// Theme token names for the fill bar colours.
const (
	TokenPositive = "result-positive"
	TokenNegative = "result-negative"
)

// ResultView is the template-facing projection of a prediction.
type ResultView struct {
	Classification Classification `json:"classification"`
	Positive       bool           `json:"positive"`
	Label          string         `json:"label"`
	Headline       string         `json:"headline"`
	Probability    string         `json:"probability"`
	Fill           string         `json:"fill"`
	Color          string         `json:"color"`
	CSSClass       string         `json:"cssClass"`
}

// NewResultView projects result using the theme's colour tokens.
func NewResultView(result predictor.Result, cfg *theme.RendererConfig) ResultView {
	class := Classify(result)
	return ResultView{
		Classification: class,
		Positive:       class == Positive,
		Label:          class.Label(),
		Headline:       class.Headline(),
		Probability:    FormatProbability(result.Probability),
		Fill:           strconv.FormatFloat(math.Round(FillPercent(result.Probability)*100)/100, 'f', -1, 64),
		Color:          resultColor(class, cfg),
		CSSClass:       class.CSSClass(),
	}
}

func resultColor(class Classification, cfg *theme.RendererConfig) string {
	key := TokenNegative
	if class == Positive {
		key = TokenPositive
	}
	if cfg != nil {
		if value := cfg.Tokens[key]; value != "" {
			return value
		}
	}
	return DefaultTokens()[key]
}
