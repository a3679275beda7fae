package cpu

const (
	MEMORY_SIZE        = 64    // Default data memory cells.
	PROTECTED_BOUNDARY = 16    // Default first unprotected memory address.
	MEMORY_LIMIT       = 65536 // STORE addresses are 16 bits wide.
)

// Config sizes the data memory of a Cpu.
type Config struct {
	MemorySize        int `toml:"memory_size"`        // Number of data memory cells.
	ProtectedBoundary int `toml:"protected_boundary"` // Addresses below this need KERNEL mode to write.
}

// DefaultConfig returns the 64 cell, 16 protected cell configuration.
func DefaultConfig() Config {
	return Config{
		MemorySize:        MEMORY_SIZE,
		ProtectedBoundary: PROTECTED_BOUNDARY,
	}
}

// Validate checks the configuration is usable.
func (cfg Config) Validate() (err error) {
	if cfg.MemorySize <= 0 || cfg.MemorySize > MEMORY_LIMIT {
		err = ErrMemorySize
		return
	}

	if cfg.ProtectedBoundary < 0 || cfg.ProtectedBoundary > cfg.MemorySize {
		err = ErrProtectedBoundary
		return
	}

	return
}
