package deployer

import (
	"fmt"
)

type Config struct {
	MaxConcurrentFiles int
	BlockSize          int
	Force              bool
}

func (c *Config) Validate() error {
	if c.MaxConcurrentFiles <= 0 {
		return fmt.Errorf("MaxConcurrentFiles must be greater than 0")
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("BlockSize must be greater than 0")
	}
	return nil
}
