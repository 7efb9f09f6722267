package conf

import (
	"fmt"
	"strings"

	"gopkg.in/alecthomas/kingpin.v2"
)

const stringListDelimiter = ","

// StringListValue is a custom kingpin parser which resolves flag's parameters which
// consist of a string slice delimited by `stringListDelimiter`.
// For instance for delimiter = "," and flag defined like this:
// `flag = StringList(kingpin.Flag("flag_name", "help"))`
//
// When user would specify options: `--flag_name=A,B,C --flag_name=D,E,F` our `flag`
// variable would be a slice with A,B,C,D,E,F items.
//
// Tested in SliceFlag (conf_test.go)
type StringListValue []string

// Set parses the input string and appends that as a slice. Implements kingpin.Value.
func (s *StringListValue) Set(value string) error {
	// Split string from input to slice and merge with saved slice.
	*s = append((*s), strings.Split(value, stringListDelimiter)...)
	return nil
}

// String returns string value from StringListValue. Implements kingpin.Value.
func (s *StringListValue) String() string {
	return fmt.Sprintf("%v", *s)
}

// IsCumulative implements optional interface (kingpin.repeatableFlag) for flags that can be repeated.
func (s *StringListValue) IsCumulative() bool {
	return true
}

// StringList is a helper for defining kingpin flags.
func StringList(s kingpin.Settings) (target *[]string) {
	target = new([]string)
	s.SetValue((*StringListValue)(target))
	return
}
