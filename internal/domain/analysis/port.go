package analysis

import "context"

// Label is the top prediction of the classifier.
type Label struct {
	Name  string
	Score float64
}

type Classifier interface {
	Classify(ctx context.Context, text string) (Label, error)
}
