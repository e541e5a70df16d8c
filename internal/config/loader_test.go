package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/tsachs/pacer/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.HardCPSLimit, convey.ShouldEqual, 18)
				convey.So(cfg.TargetCPSLo, convey.ShouldEqual, 15)
				convey.So(cfg.TargetCPSHi, convey.ShouldEqual, 17)
				convey.So(cfg.SensMultiplier, convey.ShouldEqual, 0.5)
				convey.So(cfg.TriggerButtons, convey.ShouldResemble, []string{"left", "right"})
				convey.So(cfg.TickIntervalMS, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PACER_HARD_CPS_LIMIT", "20")
			_ = os.Setenv("PACER_TARGET_CPS_LO", "14")
			_ = os.Setenv("PACER_TARGET_CPS_HI", "16")
			_ = os.Setenv("PACER_SENS_MULTIPLIER", "0.6")
			_ = os.Setenv("PACER_QUEUE_SIZE", "1024")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.HardCPSLimit, convey.ShouldEqual, 20)
				convey.So(cfg.TargetCPSLo, convey.ShouldEqual, 14)
				convey.So(cfg.TargetCPSHi, convey.ShouldEqual, 16)
				convey.So(cfg.SensMultiplier, convey.ShouldEqual, 0.6)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			})
		})

		convey.Convey("When loading config from a YAML file", func() {
			clearConfigEnvVars()
			dir := t.TempDir()
			path := filepath.Join(dir, "pacer.yaml")
			yaml := "hard_cps_limit: 22\ntarget_cps_lo: 18\ntarget_cps_hi: 20\nlog_level: debug\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("PACER_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then file values should apply", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.HardCPSLimit, convey.ShouldEqual, 22)
				convey.So(cfg.TargetCPSLo, convey.ShouldEqual, 18)
				convey.So(cfg.TargetCPSHi, convey.ShouldEqual, 20)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When the target range contradicts the hard limit", func() {
			// lo=25 > hard=20 must be rejected before any tick runs.
			_ = os.Setenv("PACER_HARD_CPS_LIMIT", "20")
			_ = os.Setenv("PACER_TARGET_CPS_LO", "25")
			_ = os.Setenv("PACER_TARGET_CPS_HI", "25")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then loading should fail with a configuration error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrTargetRange)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		convey.Convey("Then it should validate cleanly", func() {
			convey.So(config.New().Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then each broken invariant should map to its sentinel", func() {
			cases := []struct {
				name   string
				mutate func(*config.Config)
				want   error
			}{
				{"zero hard limit", func(c *config.Config) { c.HardCPSLimit = 0 }, config.ErrHardLimit},
				{"inverted target range", func(c *config.Config) { c.TargetCPSLo = 10; c.TargetCPSHi = 5 }, config.ErrTargetRange},
				{"hi above hard limit", func(c *config.Config) { c.TargetCPSHi = 30 }, config.ErrTargetRange},
				{"hi unreachable in window", func(c *config.Config) { c.LookbackMS = 50 }, config.ErrTargetRange},
				{"multiplier above one", func(c *config.Config) { c.SensMultiplier = 1.5 }, config.ErrSensMultiplier},
				{"multiplier zero", func(c *config.Config) { c.SensMultiplier = 0 }, config.ErrSensMultiplier},
				{"disengage above engage", func(c *config.Config) { c.DisengageFraction = 0.9 }, config.ErrThresholds},
				{"engage above one", func(c *config.Config) { c.EngageFraction = 1.2 }, config.ErrThresholds},
				{"negative dwell", func(c *config.Config) { c.EngageDwellMS = -1 }, config.ErrDurations},
				{"zero ramp", func(c *config.Config) { c.RampUpMS = 0 }, config.ErrDurations},
				{"zero lookback", func(c *config.Config) { c.LookbackMS = 0 }, config.ErrDurations},
				{"inverted hold bounds", func(c *config.Config) { c.HoldMinMS = 30; c.HoldMaxMS = 20 }, config.ErrJitterBounds},
				{"zero tick", func(c *config.Config) { c.TickIntervalMS = 0 }, config.ErrDurations},
				{"zero queue", func(c *config.Config) { c.QueueSize = 0 }, config.ErrQueue},
				{"no triggers", func(c *config.Config) { c.TriggerButtons = nil }, config.ErrTriggers},
				{"duplicate triggers", func(c *config.Config) { c.TriggerButtons = []string{"left", "left"} }, config.ErrTriggers},
				{"empty trigger", func(c *config.Config) { c.TriggerButtons = []string{""} }, config.ErrTriggers},
			}
			for _, tc := range cases {
				cfg := config.New()
				tc.mutate(cfg)
				convey.So(cfg.Validate(), convey.ShouldWrap, tc.want)
			}
		})
	})
}

func TestDurationAccessors(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()
		convey.So(cfg.Lookback().Milliseconds(), convey.ShouldEqual, int64(cfg.LookbackMS))
		convey.So(cfg.TickInterval().Milliseconds(), convey.ShouldEqual, int64(cfg.TickIntervalMS))
		convey.So(cfg.RampUp().Milliseconds(), convey.ShouldEqual, int64(cfg.RampUpMS))
		convey.So(len(cfg.Triggers()), convey.ShouldEqual, len(cfg.TriggerButtons))
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"PACER_CONFIG",
		"PACER_HARD_CPS_LIMIT",
		"PACER_TARGET_CPS_LO",
		"PACER_TARGET_CPS_HI",
		"PACER_SENS_MULTIPLIER",
		"PACER_QUEUE_SIZE",
		"PACER_LOG_LEVEL",
		"PACER_ADDR",
	} {
		_ = os.Unsetenv(key)
	}
}
