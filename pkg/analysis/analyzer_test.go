package analysis

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

// sleepBlock sleeps depending on the first input byte: zero means fast path.
func sleepBlock(fast, slow time.Duration) Block {
	return func(input []byte) error {
		if len(input) > 0 && input[0] != 0 {
			time.Sleep(slow)
			return nil
		}
		time.Sleep(fast)
		return nil
	}
}

func TestConfigValidation(t *testing.T) {
	Convey("While validating analyzer configuration", t, func() {

		Convey("Defaults are valid", func() {
			So(DefaultConfig().Validate(), ShouldBeNil)
		})

		Convey("Zero or negative iterations are rejected", func() {
			config := DefaultConfig()
			config.Iterations = 0
			err := config.Validate()
			So(err, ShouldNotBeNil)
			So(err, ShouldHaveSameTypeAs, &InvalidConfigurationError{})

			config.Iterations = -5
			So(config.Validate(), ShouldNotBeNil)
		})

		Convey("Threshold outside (0, 1] is rejected", func() {
			config := DefaultConfig()
			config.Threshold = 0
			So(config.Validate(), ShouldHaveSameTypeAs, &InvalidConfigurationError{})

			config.Threshold = 1.5
			So(config.Validate(), ShouldNotBeNil)
		})

		Convey("Dropped fraction of one or more is rejected", func() {
			config := DefaultConfig()
			config.MaxDroppedFraction = 1
			So(config.Validate(), ShouldNotBeNil)
		})

		Convey("New rejects an invalid configuration", func() {
			config := DefaultConfig()
			config.Iterations = 0
			analyzer, err := New(config)
			So(analyzer, ShouldBeNil)
			So(err, ShouldHaveSameTypeAs, &InvalidConfigurationError{})
		})
	})
}

func TestAnalyzeInputValidation(t *testing.T) {
	config := DefaultConfig()
	config.Iterations = 5
	config.Warmups = 1

	Convey("While starting an analysis", t, func() {
		analyzer, err := New(config)
		So(err, ShouldBeNil)

		noop := Block(func([]byte) error { return nil })

		Convey("A single input class is insufficient", func() {
			verdict, err := analyzer.Analyze(noop, []InputClass{StaticClass("only", nil)})
			So(verdict, ShouldBeNil)
			So(err, ShouldHaveSameTypeAs, &InsufficientDataError{})
		})

		Convey("Duplicate class names are rejected", func() {
			verdict, err := analyzer.Analyze(noop, []InputClass{
				StaticClass("same", nil),
				StaticClass("same", nil),
			})
			So(verdict, ShouldBeNil)
			So(err, ShouldHaveSameTypeAs, &InvalidConfigurationError{})
		})

		Convey("A nil block is rejected", func() {
			verdict, err := analyzer.Analyze(nil, []InputClass{
				StaticClass("a", nil),
				StaticClass("b", nil),
			})
			So(verdict, ShouldBeNil)
			So(err, ShouldHaveSameTypeAs, &InvalidConfigurationError{})
		})
	})
}

func TestAnalyzeVerdicts(t *testing.T) {
	Convey("While analyzing a block under two input classes", t, func() {

		Convey("A constant-time block is not flagged", func() {
			config := Config{
				Iterations:         50,
				Warmups:            5,
				Threshold:          0.001, // Tight bound keeps the false positive rate at 0.1%.
				SampleTimeout:      time.Minute,
				MaxDroppedFraction: 0.1,
			}
			analyzer, err := New(config)
			So(err, ShouldBeNil)

			block := sleepBlock(200*time.Microsecond, 200*time.Microsecond)
			verdict, err := analyzer.Analyze(block, []InputClass{
				StaticClass("valid", []byte{0}),
				StaticClass("invalid", []byte{0}),
			})

			So(err, ShouldBeNil)
			So(verdict.Vulnerable, ShouldBeFalse)
			So(verdict.Classes, ShouldHaveLength, 2)
			So(verdict.Classes[0].Count, ShouldEqual, 50)
		})

		Convey("A secret-dependent delay is flagged", func() {
			config := Config{
				Iterations:         40,
				Warmups:            5,
				Threshold:          0.05,
				SampleTimeout:      time.Minute,
				MaxDroppedFraction: 0.1,
			}
			analyzer, err := New(config)
			So(err, ShouldBeNil)

			block := sleepBlock(50*time.Microsecond, 2*time.Millisecond)
			verdict, err := analyzer.Analyze(block, []InputClass{
				StaticClass("valid", []byte{0}),
				StaticClass("invalid", []byte{1}),
			})

			So(err, ShouldBeNil)
			So(verdict.Vulnerable, ShouldBeTrue)
			So(verdict.Statistic, ShouldBeLessThan, 0.05)
			So(verdict.EffectSize, ShouldNotEqual, 0)

			Convey("And the verdict flag is stable across runs", func() {
				again, err := analyzer.Analyze(block, []InputClass{
					StaticClass("valid", []byte{0}),
					StaticClass("invalid", []byte{1}),
				})
				So(err, ShouldBeNil)
				So(again.Vulnerable, ShouldEqual, verdict.Vulnerable)
			})
		})
	})
}

func TestAnalyzeExecutionFailures(t *testing.T) {
	config := Config{
		Iterations:         20,
		Warmups:            2,
		Threshold:          0.05,
		SampleTimeout:      time.Minute,
		MaxDroppedFraction: 0.1,
	}

	Convey("While a class fails during measurement", t, func() {
		analyzer, err := New(config)
		So(err, ShouldBeNil)

		failing := Block(func(input []byte) error {
			if len(input) > 0 && input[0] == 'x' {
				return errors.New("target crashed")
			}
			time.Sleep(50 * time.Microsecond)
			return nil
		})

		Convey("With two healthy classes remaining a verdict is still produced", func() {
			verdict, err := analyzer.Analyze(failing, []InputClass{
				StaticClass("valid", []byte{0}),
				StaticClass("invalid", []byte{0}),
				StaticClass("broken", []byte{'x'}),
			})

			So(err, ShouldBeNil)
			So(verdict, ShouldNotBeNil)
			So(verdict.FailedClasses, ShouldContainKey, "broken")
			So(verdict.FailedClasses["broken"], ShouldContainSubstring, "target crashed")
		})

		Convey("With fewer than two healthy classes the run aborts", func() {
			verdict, err := analyzer.Analyze(failing, []InputClass{
				StaticClass("valid", []byte{0}),
				StaticClass("broken", []byte{'x'}),
			})

			So(verdict, ShouldBeNil)
			So(err, ShouldHaveSameTypeAs, &InsufficientDataError{})
		})
	})
}

func TestAnalyzeTimeouts(t *testing.T) {
	Convey("While samples overrun the timeout", t, func() {

		Convey("Blocks reporting ErrSampleTimedOut get their samples dropped", func() {
			config := Config{
				Iterations:         10,
				Warmups:            0,
				Threshold:          0.05,
				SampleTimeout:      time.Minute,
				MaxDroppedFraction: 0.5,
			}
			analyzer, err := New(config)
			So(err, ShouldBeNil)

			calls := 0
			flaky := Block(func(input []byte) error {
				if len(input) > 0 && input[0] == 't' {
					calls++
					if calls%5 == 0 {
						return ErrSampleTimedOut
					}
				}
				return nil
			})

			verdict, err := analyzer.Analyze(flaky, []InputClass{
				StaticClass("steady", []byte{0}),
				StaticClass("flaky", []byte{'t'}),
			})

			So(err, ShouldBeNil)
			summary := verdict.Classes[1]
			So(summary.Class, ShouldEqual, "flaky")
			So(summary.Dropped, ShouldEqual, 2)
			So(summary.Count, ShouldEqual, 8)
		})

		Convey("A class exceeding the tolerated dropped fraction is excluded", func() {
			config := Config{
				Iterations:         10,
				Warmups:            0,
				Threshold:          0.05,
				SampleTimeout:      time.Millisecond,
				MaxDroppedFraction: 0.1,
			}
			analyzer, err := New(config)
			So(err, ShouldBeNil)

			slow := sleepBlock(10*time.Microsecond, 5*time.Millisecond)
			verdict, err := analyzer.Analyze(slow, []InputClass{
				StaticClass("fast", []byte{0}),
				StaticClass("stalled", []byte{1}),
			})

			So(verdict, ShouldBeNil)
			So(err, ShouldHaveSameTypeAs, &InsufficientDataError{})
		})
	})
}

func TestTimerCapability(t *testing.T) {
	Convey("While probing the measurement clock", t, func() {
		So(TimerName(), ShouldEqual, "monotonic")

		resolution := TimerResolution()
		So(resolution, ShouldBeGreaterThan, 0)
		// Anything coarser than a millisecond makes microsecond-scale
		// leaks unmeasurable.
		So(resolution, ShouldBeLessThan, time.Millisecond)
	})
}
