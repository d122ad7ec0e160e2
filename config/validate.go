package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is a package-level singleton; validators cache struct metadata.
var validate = validator.New()

// Validate checks field constraints and that every batch names a configured
// lambda.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	lambdas := make(map[int32]bool, len(c.Lambdas))
	for _, l := range c.Lambdas {
		if lambdas[l.ID] {
			return fmt.Errorf("config validation failed: duplicate lambda id %d", l.ID)
		}
		lambdas[l.ID] = true
	}
	for _, b := range c.Batches {
		if !lambdas[b.LambdaID] {
			return fmt.Errorf("config validation failed: batch %d names unknown lambda %d", b.BatchID, b.LambdaID)
		}
	}
	return nil
}
