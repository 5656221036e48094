package gdx

import "math"

// Option configures a File at construction time, following the
// functional-options shape used throughout this codebase's dependency
// graph for collaborators that take more than a couple of parameters.
type Option func(*config)

type config struct {
	compress       bool
	audit          string
	producer       string
	specialValues  specialValueTable
	domainSetStore bool
	traceLevel     TraceLevel
}

func defaultConfig() config {
	return config{
		specialValues: defaultSpecialValues,
		traceLevel:    TraceNone,
	}
}

// WithCompression turns on zlib compression of the record and trailer
// streams.
func WithCompression(enabled bool) Option {
	return func(c *config) { c.compress = enabled }
}

// WithAudit sets the audit line recorded in the file header.
func WithAudit(audit string) Option {
	return func(c *config) { c.audit = audit }
}

// WithProducer sets the producer line recorded in the file header.
func WithProducer(producer string) Option {
	return func(c *config) { c.producer = producer }
}

// WithSpecialValues overrides the five special-value bit patterns. The
// five entries must be pairwise distinct; Open/Create returns
// ErrDuplicateSpecVal otherwise.
func WithSpecialValues(undef, na, posInf, negInf, eps float64) Option {
	return func(c *config) {
		c.specialValues = specialValueTable{}
		c.specialValues.bits[SVUndef] = math.Float64bits(undef)
		c.specialValues.bits[SVNA] = math.Float64bits(na)
		c.specialValues.bits[SVPosInf] = math.Float64bits(posInf)
		c.specialValues.bits[SVNegInf] = math.Float64bits(negInf)
		c.specialValues.bits[SVEps] = math.Float64bits(eps)
	}
}

// WithDomainSetStorage enables the 1-D "set bitmap" cached on 1-D set
// symbol descriptors (an alias resolves to its target set's bitmap),
// trading memory for faster domain-violation checks
// on repeated writes against the same domain set.
func WithDomainSetStorage(enabled bool) Option {
	return func(c *config) { c.domainSetStore = enabled }
}

// WithTraceLevel sets the diagnostic verbosity written to the trace
// writer (see gdxtrace).
func WithTraceLevel(level TraceLevel) Option {
	return func(c *config) { c.traceLevel = level }
}

