package compiler

import (
	"github.com/xyproto/env/v2"

	"github.com/windjammer-lang/windjammer/internal/codegen"
	"github.com/windjammer-lang/windjammer/internal/optimizer"
)

// Config carries the pipeline knobs the CLI and watch mode share.
type Config struct {
	Target      codegen.Target
	Optimize    bool
	MaxUnroll   int
	SmallVecMax int
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Target:      codegen.TargetRust,
		Optimize:    true,
		MaxUnroll:   8,
		SmallVecMax: 8,
	}
}

// FromEnv layers the WJ_* environment overrides on top of the defaults:
// WJ_TARGET, WJ_OPT, WJ_MAX_UNROLL and WJ_SMALLVEC_MAX.
func FromEnv() (Config, error) {
	// the env package caches the environment on first read; reload so a
	// long-lived process sees current values
	env.Load()
	cfg := Default()
	target, err := codegen.ParseTarget(env.Str("WJ_TARGET", ""))
	if err != nil {
		return cfg, err
	}
	cfg.Target = target
	if env.Has("WJ_OPT") {
		cfg.Optimize = env.Bool("WJ_OPT")
	}
	cfg.MaxUnroll = env.Int("WJ_MAX_UNROLL", cfg.MaxUnroll)
	cfg.SmallVecMax = env.Int("WJ_SMALLVEC_MAX", cfg.SmallVecMax)
	return cfg, nil
}

// OptimizerOptions translates the config into pass gates.
func (c Config) OptimizerOptions() optimizer.Options {
	return optimizer.Options{
		Fold:        c.Optimize,
		DCE:         c.Optimize,
		Loops:       c.Optimize,
		Escape:      c.Optimize,
		MaxUnroll:   c.MaxUnroll,
		SmallVecMax: c.SmallVecMax,
	}
}
