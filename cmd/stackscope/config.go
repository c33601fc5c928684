package main

import (
	"github.com/ilyakaznacheev/cleanenv"
)

type (
	ServiceConfig struct {
		// Strategy selects the trigger: "loop" for the cooperative
		// background goroutine, "timer" for the setitimer-driven variant.
		Strategy   string `env:"STACKSCOPE_STRATEGY" env-default:"loop"`
		TimerClass string `env:"STACKSCOPE_TIMER_CLASS" env-default:"real"`
		MaxStacks  int    `env:"STACKSCOPE_MAX_STACKS" env-default:"10000"`
		// DemoWorkload spins a couple of busy goroutines so the reports
		// have something to show when profiling the server itself.
		DemoWorkload bool `env:"STACKSCOPE_DEMO" env-default:"false"`
	}
)

func loadServiceConfig() (ServiceConfig, error) {
	var config ServiceConfig
	err := cleanenv.ReadEnv(&config)
	return config, err
}
