package predictor

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Envelope 永続化された回帰器。Kindで状態のデコード先を決める
type Envelope struct {
	Kind        Kind            `json:"kind"`
	NumFeatures int             `json:"num_features"`
	State       json.RawMessage `json:"state"`
}

// Encode wraps a fitted regressor in an Envelope.
func Encode(r Regressor) (*Envelope, error) {
	if r.NumFeatures() == 0 {
		return nil, ErrNotFitted
	}
	state, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode %s state: %w", r.Kind(), err)
	}
	return &Envelope{Kind: r.Kind(), NumFeatures: r.NumFeatures(), State: state}, nil
}

// Decode restores a regressor from an Envelope and checks its shape.
func Decode(env *Envelope) (Regressor, error) {
	if env == nil || len(env.State) == 0 {
		return nil, errors.New("empty regressor envelope")
	}
	var r Regressor
	switch env.Kind {
	case KindRandomForest:
		f := &RandomForestRegressor{}
		if err := json.Unmarshal(env.State, f); err != nil {
			return nil, fmt.Errorf("decode random forest: %w", err)
		}
		if err := f.validate(); err != nil {
			return nil, err
		}
		r = f
	case KindRidge:
		rr := &RidgeRegressor{}
		if err := json.Unmarshal(env.State, rr); err != nil {
			return nil, fmt.Errorf("decode ridge: %w", err)
		}
		r = rr
	default:
		return nil, fmt.Errorf("unknown regressor kind %q", env.Kind)
	}
	if r.NumFeatures() != env.NumFeatures {
		return nil, fmt.Errorf("%s state has %d features, envelope declares %d", env.Kind, r.NumFeatures(), env.NumFeatures)
	}
	return r, nil
}

// validate guards Predict against node indices that would loop or panic.
func (f *RandomForestRegressor) validate() error {
	if len(f.Trees) == 0 {
		return errors.New("random forest has no trees")
	}
	for t, tree := range f.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", t)
		}
		for i, n := range tree.Nodes {
			if n.Feature < 0 {
				continue
			}
			if n.Feature >= f.Features {
				return fmt.Errorf("tree %d node %d splits on feature %d of %d", t, i, n.Feature, f.Features)
			}
			if n.Left <= i || n.Right <= i || n.Left >= len(tree.Nodes) || n.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d has invalid children", t, i)
			}
		}
	}
	return nil
}
