package catalog

// Config holds runtime knobs for the catalog service.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

const (
	defaultPageSize = 1
	defaultMaxPage  = 50
)

func (c Config) withDefaults() Config {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = defaultPageSize
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = defaultMaxPage
	}
	if c.DefaultPageSize > c.MaxPageSize {
		c.DefaultPageSize = c.MaxPageSize
	}
	return c
}

// PageLimit resolves a requested page size: zero or negative picks the
// default, anything above the maximum is capped.
func (c Config) PageLimit(requested int) int {
	c = c.withDefaults()
	if requested <= 0 {
		return c.DefaultPageSize
	}
	if requested > c.MaxPageSize {
		return c.MaxPageSize
	}
	return requested
}
