package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Option keys the host uses to describe the axes of a curve.
const (
	OptInputParam  = "InputParam"
	OptOutputParam = "OutputParam"
	OptLogInput    = "LogInput"
	OptLogOutput   = "LogOutput"
)

// Option is one key=value pair of a function spec.
type Option struct {
	Key   string
	Value string
}

// Options is an ordered mapping of option names to their raw string values.
// The zero value is empty and ready to use.
type Options struct {
	entries []Option
}

// ParseOptions decodes the parenthesized list of a spec such as
// "VolWCFun(InputParam=Suction,LogInput=1)".
//
// The list is the text after the last '(' up to a trailing ')'. Tokens are
// separated by ',' and split at their first '=', so "Expr=a=b" yields key
// "Expr" with value "a=b". A repeated key keeps its first position and takes
// the last value. Values are returned verbatim. An empty list such as "F()"
// is a single empty token and is rejected like any other token without '='.
func ParseOptions(spec string) (Options, error) {
	open := strings.LastIndexByte(spec, '(')
	if open < 0 {
		return Options{}, fmt.Errorf("%w: %q has no '('", ErrMalformedOptions, spec)
	}
	if !strings.HasSuffix(spec, ")") {
		return Options{}, fmt.Errorf("%w: %q has no trailing ')'", ErrMalformedOptions, spec)
	}

	list := spec[open+1 : len(spec)-1]
	var opts Options
	for i, tok := range strings.Split(list, ",") {
		key, value, ok := strings.Cut(tok, "=")
		if !ok {
			return Options{}, fmt.Errorf("%w: token %d %q has no '='", ErrMalformedOptions, i, tok)
		}
		if key == "" {
			return Options{}, fmt.Errorf("%w: token %d %q has an empty key", ErrMalformedOptions, i, tok)
		}
		opts.Set(key, value)
	}
	return opts, nil
}

// Get returns the raw value of key.
func (o Options) Get(key string) (string, bool) {
	for _, e := range o.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Set assigns value to key, appending the key if it is new.
func (o *Options) Set(key, value string) {
	for i := range o.entries {
		if o.entries[i].Key == key {
			o.entries[i].Value = value
			return
		}
	}
	o.entries = append(o.entries, Option{Key: key, Value: value})
}

// Keys returns the option names in order.
func (o Options) Keys() []string {
	keys := make([]string, len(o.entries))
	for i, e := range o.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the options in order.
func (o Options) Entries() []Option {
	return append([]Option(nil), o.entries...)
}

func (o Options) Len() int { return len(o.entries) }

func (o Options) clone() Options {
	return Options{entries: o.Entries()}
}

// MarshalJSON writes the options as a JSON object in option order.
func (o Options) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FunctionOptions is the typed view of the options that describe a curve's
// axes. Keys without a typed field are kept in Unrecognized.
type FunctionOptions struct {
	InputParam   string            `json:"input_param"`
	OutputParam  string            `json:"output_param"`
	LogInput     bool              `json:"log_input"`
	LogOutput    bool              `json:"log_output"`
	Unrecognized map[string]string `json:"unrecognized,omitempty"`
}

// Typed converts the known keys. Missing flags are false; a flag that is not
// a boolean ("0", "1", "true", ...) is an error.
func (o Options) Typed() (FunctionOptions, error) {
	var fo FunctionOptions
	for _, e := range o.entries {
		switch e.Key {
		case OptInputParam:
			fo.InputParam = e.Value
		case OptOutputParam:
			fo.OutputParam = e.Value
		case OptLogInput, OptLogOutput:
			b, err := strconv.ParseBool(e.Value)
			if err != nil {
				return FunctionOptions{}, fmt.Errorf("%w: %s=%q is not a boolean", ErrMalformedOptions, e.Key, e.Value)
			}
			if e.Key == OptLogInput {
				fo.LogInput = b
			} else {
				fo.LogOutput = b
			}
		default:
			if fo.Unrecognized == nil {
				fo.Unrecognized = make(map[string]string)
			}
			fo.Unrecognized[e.Key] = e.Value
		}
	}
	return fo, nil
}

// Equal reports whether o and other hold the same keys and values in the
// same order.
func (o Options) Equal(other Options) bool {
	if len(o.entries) != len(other.entries) {
		return false
	}
	for i := range o.entries {
		if o.entries[i] != other.entries[i] {
			return false
		}
	}
	return true
}
