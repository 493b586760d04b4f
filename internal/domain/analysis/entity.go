package analysis

import (
	"strings"
	"unicode/utf8"
)

// ClassifierInputLimit is the number of code points of a snippet the classifier sees.
const ClassifierInputLimit = 512

// Status is the verdict derived from the classifier label.
type Status string

const (
	StatusSecure              Status = "secure"
	StatusPotentiallyInsecure Status = "potentially insecure"
)

// ScoreError is reported in place of a Status when the analysis failed.
const ScoreError = "error"

// Model selects the generative backend.
type Model string

const (
	ModelGemini Model = "gemini"
	ModelGroq   Model = "groq"
)

// DefaultModel is used when the request omits or misspells the selector.
const DefaultModel = ModelGemini

// ParseModel maps the raw selector to a backend. Only an exact "groq" picks Groq.
func ParseModel(raw string) Model {
	if Model(raw) == ModelGroq {
		return ModelGroq
	}
	return DefaultModel
}

type Request struct {
	Code  string `json:"code"`
	Model string `json:"model"`
}

type Response struct {
	SecurityScore string `json:"security_score"`
	Analysis      string `json:"analysis"`
}

// TruncateForClassifier returns the first ClassifierInputLimit code points of code.
func TruncateForClassifier(code string) string {
	if utf8.RuneCountInString(code) <= ClassifierInputLimit {
		return code
	}
	n := 0
	for i := range code {
		if n == ClassifierInputLimit {
			return code[:i]
		}
		n++
	}
	return code
}

// StatusFromLabel reads the classifier vocabulary: LABEL_1 (or anything
// mentioning "insecure") is the vulnerable class.
func StatusFromLabel(label string) Status {
	if strings.Contains(label, "1") || strings.Contains(strings.ToLower(label), "insecure") {
		return StatusPotentiallyInsecure
	}
	return StatusSecure
}
