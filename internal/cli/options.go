package cli

// Options contains the configuration shared by every command.
type Options struct {
	Debug     bool
	LogFormat string

	// RedisURL selects the redis term source; empty means in-memory.
	RedisURL    string
	RedisPrefix string
	// Values seeds the in-memory term source with key=value pairs. Values
	// are parsed as YAML scalars, so "rate=5" binds an int and "on=true" a bool.
	Values []string

	JSON  bool
	Plain bool
}
