package analysis

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/opticode/internal/application"
	"github.com/bryanwahyu/opticode/internal/domain/ai"
	domain "github.com/bryanwahyu/opticode/internal/domain/analysis"
	"github.com/bryanwahyu/opticode/internal/infra/ai/prompt"
)

const errorPrefix = "The engine encountered an error: "

// Service classifies a snippet locally and asks a generative backend to review it.
// All collaborators are built once at startup and only read here.
type Service struct {
	Classifier domain.Classifier
	Gemini     ai.Generator
	Groq       ai.Generator
	Clock      application.Clock
	Log        logrus.FieldLogger
}

// Analyze never fails: any error, or a panic in a collaborator, is folded
// into a response scored "error".
func (s *Service) Analyze(ctx context.Context, req domain.Request) (resp domain.Response) {
	var log logrus.FieldLogger = s.Log.WithField("code_size", len(req.Code))
	defer func() {
		if r := recover(); r != nil {
			resp = s.fail(log.WithField("panic", true), fmt.Errorf("%v", r))
		}
	}()

	start := s.Clock.Now()
	gen := s.generator(domain.ParseModel(req.Model))
	log = log.WithField("backend", gen.Name())

	label, err := s.Classifier.Classify(ctx, domain.TruncateForClassifier(req.Code))
	if err != nil {
		return s.fail(log.WithField("stage", "classify"), err)
	}
	status := domain.StatusFromLabel(label.Name)

	text, err := gen.Generate(ctx, prompt.Build(status, req.Code))
	if err != nil {
		return s.fail(log.WithFields(logrus.Fields{"stage": "generate", "status": status}), err)
	}

	log.WithFields(logrus.Fields{
		"label":    label.Name,
		"status":   status,
		"duration": s.Clock.Now().Sub(start),
	}).Info("analysis completed")

	return domain.Response{SecurityScore: string(status), Analysis: text}
}

func (s *Service) generator(m domain.Model) ai.Generator {
	if m == domain.ModelGroq {
		return s.Groq
	}
	return s.Gemini
}

func (s *Service) fail(log logrus.FieldLogger, err error) domain.Response {
	log.WithError(err).Error("error during analysis")
	return domain.Response{
		SecurityScore: domain.ScoreError,
		Analysis:      errorPrefix + err.Error(),
	}
}
