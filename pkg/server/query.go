package server

import (
	"net/url"
	"strconv"

	"github.com/matzehuels/evsynth/pkg/errors"
	"github.com/matzehuels/evsynth/pkg/pipeline"
)

type paramSetter func(o *pipeline.Options, v string) error

func intParam(field func(*pipeline.Options) *int) paramSetter {
	return func(o *pipeline.Options, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(o) = n
		return nil
	}
}

func floatParam(field func(*pipeline.Options) *float64) paramSetter {
	return func(o *pipeline.Options, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*field(o) = f
		return nil
	}
}

func boolParam(field func(*pipeline.Options) *bool) paramSetter {
	return func(o *pipeline.Options, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(o) = b
		return nil
	}
}

// queryParams lists every option the GET routes accept, named as in the
// JSON API.
var queryParams = map[string]paramSetter{
	"policy": func(o *pipeline.Options, v string) error { o.Policy = v; return nil },
	"seed": func(o *pipeline.Options, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}
		o.Seed = n
		return nil
	},
	"width":         intParam(func(o *pipeline.Options) *int { return &o.Width }),
	"height":        intParam(func(o *pipeline.Options) *int { return &o.Height }),
	"parents":       intParam(func(o *pipeline.Options) *int { return &o.Parents }),
	"cluster_min":   intParam(func(o *pipeline.Options) *int { return &o.ClusterMin }),
	"cluster_max":   intParam(func(o *pipeline.Options) *int { return &o.ClusterMax }),
	"spread":        floatParam(func(o *pipeline.Options) *float64 { return &o.Spread }),
	"rect_parents":  boolParam(func(o *pipeline.Options) *bool { return &o.RectParents }),
	"beads":         intParam(func(o *pipeline.Options) *int { return &o.Beads }),
	"dist_min":      intParam(func(o *pipeline.Options) *int { return &o.DistMin }),
	"dist_max":      intParam(func(o *pipeline.Options) *int { return &o.DistMax }),
	"radius_min":    intParam(func(o *pipeline.Options) *int { return &o.RadiusMin }),
	"radius_max":    intParam(func(o *pipeline.Options) *int { return &o.RadiusMax }),
	"cluster_prob":  floatParam(func(o *pipeline.Options) *float64 { return &o.ClusterProb }),
	"kernel_radius": intParam(func(o *pipeline.Options) *int { return &o.KernelRadius }),
	"psf_sigma":     floatParam(func(o *pipeline.Options) *float64 { return &o.PSFSigma }),
	"low":           floatParam(func(o *pipeline.Options) *float64 { return &o.Low }),
	"high":          floatParam(func(o *pipeline.Options) *float64 { return &o.High }),
	"scale":         intParam(func(o *pipeline.Options) *int { return &o.Scale }),
	"deflate":       boolParam(func(o *pipeline.Options) *bool { return &o.Deflate }),
}

// optionsFromQuery starts from the default options and applies every query
// parameter. Unknown names and unparsable values are INVALID_PARAMETER.
func optionsFromQuery(q url.Values) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	for name, values := range q {
		set, ok := queryParams[name]
		if !ok {
			return opts, errors.New(errors.ErrCodeInvalidParameter, "unknown parameter %q", name)
		}
		v := values[len(values)-1]
		if err := set(&opts, v); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidParameter, err, "invalid %s %q", name, v)
		}
	}
	return opts, nil
}
