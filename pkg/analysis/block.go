package analysis

import (
	"github.com/pkg/errors"
)

// Block is the measured operation. It receives the secret input of the class
// being sampled, runs synchronously and returns when the operation completes.
// A block must not keep state between invocations besides the input selection;
// anything it caches across calls shows up as correlated noise in the samples.
type Block func(input []byte) error

// ErrSampleTimedOut may be returned by a Block to signal that the invocation
// overran the configured sample timeout and was aborted. The analyzer drops
// the sample instead of treating the class as failed.
var ErrSampleTimedOut = errors.New("sample timed out")

// InputGenerator produces the secret input for a single block invocation.
type InputGenerator func(iteration int) []byte

// InputClass groups secret-input values which are treated as statistically
// equivalent for correlation purposes.
type InputClass struct {
	Name  string
	Input InputGenerator
}

// StaticClass returns an input class which feeds the same input into every
// invocation.
func StaticClass(name string, input []byte) InputClass {
	return InputClass{
		Name:  name,
		Input: func(int) []byte { return input },
	}
}

// GeneratedClass returns an input class backed by a generator. The generator
// is called once per invocation with the iteration index.
func GeneratedClass(name string, generator InputGenerator) InputClass {
	return InputClass{
		Name:  name,
		Input: generator,
	}
}
