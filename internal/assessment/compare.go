package assessment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"robkit/internal/audit"
	"robkit/internal/logging"
)

// Comparison is a human assessment, an automated one and their divergences.
type Comparison struct {
	ID        string       `json:"id" yaml:"id"`
	Human     *Assessment  `json:"human" yaml:"human"`
	Automated *Assessment  `json:"automated" yaml:"automated"`
	Report    audit.Report `json:"report" yaml:"report"`
}

// Compare evaluates both inputs with inst and derives where they diverge.
func Compare(ctx context.Context, inst Instrument, human, automated Input) (*Comparison, error) {
	var h, a *Assessment

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		if h, err = Evaluate(inst, human); err != nil {
			return fmt.Errorf("human answers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		if a, err = Evaluate(inst, automated); err != nil {
			return fmt.Errorf("automated answers: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report, err := audit.Run(side(h), side(a))
	if err != nil {
		return nil, err
	}

	c := &Comparison{ID: uuid.NewString(), Human: h, Automated: a, Report: report}
	logging.Get(logging.CategoryAssessment).Info("comparison %s: %d answer, %d domain divergences, agreement %.2f",
		c.ID, len(report.Answers), len(report.Domains), report.Agreement)
	return c, nil
}

func side(a *Assessment) audit.Side {
	return audit.Side{Answers: a.Answers, Domains: a.Domains, Overall: a.Overall.Risk}
}
