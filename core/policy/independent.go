package policy

import (
	"github.com/kilianp07/baysim/core/bay"
	"github.com/kilianp07/baysim/core/calendar"
	"github.com/kilianp07/baysim/core/demand"
	"github.com/kilianp07/baysim/core/model"
)

// BayModel decides whether a single free bay receives a vehicle.
type BayModel interface {
	Draw(t int, b calendar.Bucket, src demand.Source) (model.Request, bool, error)
}

// Independent gives every free bay its own arrival draw. Unserved demand is
// lost, so nothing is ever pending.
type Independent struct {
	model BayModel
	src   demand.Source
	seq   int
	sep   string
}

// NewIndependent builds the policy.
func NewIndependent(m BayModel, src demand.Source) *Independent {
	return &Independent{model: m, src: src, sep: "_"}
}

// WithSeparator overrides the timestep type separator.
func (p *Independent) WithSeparator(sep string) *Independent {
	p.sep = sep
	return p
}

func (p *Independent) Name() string      { return string(KindIndependent) }
func (p *Independent) Separator() string { return p.sep }

// Allocate walks the free bays in index order and installs each arrival.
func (p *Independent) Allocate(t int, b calendar.Bucket, pool *bay.Pool) (Outcome, error) {
	var out Outcome
	for _, i := range pool.Free() {
		r, ok, err := p.model.Draw(t, b, p.src)
		if err != nil {
			return out, err
		}
		if !ok {
			continue
		}
		p.seq++
		r.Seq = p.seq
		out.Arrivals++
		if err := pool.Assign(i, r); err != nil {
			return out, err
		}
		out.Assignments = append(out.Assignments, Assignment{Bay: i, Request: r})
	}
	return out, nil
}

// Pending is always empty.
func (p *Independent) Pending() []model.Request { return nil }
