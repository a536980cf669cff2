package appgridlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type typeError struct {
	msg   string
	stack string
}

func (e *typeError) Error() string      { return e.msg }
func (e *typeError) ErrorName() string  { return "TypeError" }
func (e *typeError) StackTrace() string { return e.stack }

type timeoutError struct{}

func (timeoutError) Error() string { return "deadline passed" }

func TestComputeCode(t *testing.T) {
	tests := []struct {
		facility, code, want int
	}{
		{0, 0, 0},
		{1, 23, 123},
		{12, 3, 123},
		{1, 3, 13},
		{1, 2, 12},
		{0, 7, 7},
		{40, 0, 400},
		{99, 1001, 991001},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%d", tt.facility, tt.code), func(t *testing.T) {
			got, err := ComputeCode(tt.facility, tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeCodeRejectsInvalidInput(t *testing.T) {
	_, err := ComputeCode(-1, 2)
	assert.ErrorIs(t, err, ErrSerialization)

	_, err = ComputeCode(math.MaxInt, 9)
	assert.ErrorIs(t, err, ErrSerialization)
}

func TestBuildMessageWithoutMetadata(t *testing.T) {
	got, err := BuildMessage("plain", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain", got)

	got, err = BuildMessage("plain", []any{})
	require.NoError(t, err)
	assert.Equal(t, "plain", got)
}

func TestBuildMessageEncodesMetadata(t *testing.T) {
	got, err := BuildMessage("x", []any{"a", 1, map[string]any{"k": true}, nil})
	require.NoError(t, err)
	assert.Equal(t, `x| Metadata: ["a",1,{"k":true},null]`, got)
}

func TestBuildMessageDoesNotEscapeHTML(t *testing.T) {
	got, err := BuildMessage("x", []any{"<a&b>"})
	require.NoError(t, err)
	assert.Equal(t, `x| Metadata: ["<a&b>"]`, got)
}

func TestBuildMessageFormatsNamedError(t *testing.T) {
	err := &typeError{msg: "bad", stack: "trace..."}

	got, encErr := BuildMessage("x", []any{err})

	require.NoError(t, encErr)
	assert.Equal(t, `x| Metadata: ["TypeError: bad | trace..."]`, got)
}

func TestFormatErrorNames(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"errors.New", errors.New("x"), "Error: x | x"},
		{"fmt.Errorf wrap", fmt.Errorf("outer: %w", errors.New("inner")), "Error: outer: inner | outer: inner"},
		{"errors.Join", errors.Join(errors.New("a"), errors.New("b")), "Error: a\nb | a\nb"},
		{"custom type", timeoutError{}, "timeoutError: deadline passed | deadline passed"},
		{"named", &typeError{msg: "bad", stack: "s"}, "TypeError: bad | s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatError(tt.err))
		})
	}
}

func TestFormatErrorFindsWrappedStack(t *testing.T) {
	inner := &typeError{msg: "bad", stack: "inner trace"}
	err := fmt.Errorf("context: %w", inner)

	assert.Equal(t, "Error: context: bad | inner trace", FormatError(err))
}

func TestWithStack(t *testing.T) {
	assert.Nil(t, WithStack(nil))

	base := errors.New("x")
	err := WithStack(base)

	assert.Equal(t, "x", err.Error())
	assert.ErrorIs(t, err, base)

	formatted := FormatError(err)
	assert.True(t, strings.HasPrefix(formatted, "Error: x | "), formatted)
	assert.Contains(t, formatted, "TestWithStack")
	assert.NotContains(t, formatted, "appgridlog.WithStack", "stack starts at the caller")

	named := WithStack(&typeError{msg: "bad"})
	assert.True(t, strings.HasPrefix(FormatError(named), "TypeError: bad | "))
}

func TestEncodeMetadataReplacesNestedErrors(t *testing.T) {
	encoded, err := EncodeMetadata([]any{
		map[string]any{"cause": errors.New("nested"), "attempt": 2},
		[]any{"ok", errors.New("inner")},
	})
	require.NoError(t, err)

	var decoded []any
	require.NoError(t, json.Unmarshal([]byte(encoded), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Error: nested | nested", decoded[0].(map[string]any)["cause"])
	assert.Equal(t, []any{"ok", "Error: inner | inner"}, decoded[1])
}

type playbackFailure struct {
	Asset   string         `json:"asset"`
	Cause   error          `json:"cause"`
	Retry   error          `json:"retry,omitempty"`
	Ignored error          `json:"-"`
	secret  error
	Extra   map[string]any `json:"extra,omitempty"`
}

// Failure is exported so its promoted fields are readable when embedded.
type Failure struct {
	Stage string `json:"stage"`
	Cause error  `json:"cause"`
}

type wrappedFailure struct {
	Failure
	Attempt int
}

func TestEncodeMetadataReplacesErrorsInTypedValues(t *testing.T) {
	inner := errors.New("inner")
	tests := []struct {
		name string
		item any
		want string
	}{
		{"error slice", []error{inner}, `[["Error: inner | inner"]]`},
		{"error array", [2]error{inner, nil}, `[["Error: inner | inner",null]]`},
		{"error map", map[string]error{"cause": inner}, `[{"cause":"Error: inner | inner"}]`},
		{"struct value", struct{ Cause error }{inner}, `[{"Cause":"Error: inner | inner"}]`},
		{"struct pointer", &struct{ Cause error }{inner}, `[{"Cause":"Error: inner | inner"}]`},
		{"any field", struct{ Detail any }{inner}, `[{"Detail":"Error: inner | inner"}]`},
		{
			"json tags",
			playbackFailure{Asset: "A-17", Cause: inner, Ignored: inner, secret: inner},
			`[{"asset":"A-17","cause":"Error: inner | inner"}]`,
		},
		{
			"embedded struct",
			wrappedFailure{Failure: Failure{Stage: "decode", Cause: inner}, Attempt: 2},
			`[{"stage":"decode","cause":"Error: inner | inner","Attempt":2}]`,
		},
		{
			"deep nesting",
			map[string][]*struct{ Cause error }{"list": {{Cause: inner}}},
			`[{"list":[{"Cause":"Error: inner | inner"}]}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeMetadata([]any{tt.item})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeMetadataKeepsValuesWithoutErrors(t *testing.T) {
	type tagged struct {
		Name  string `json:"name"`
		Empty string `json:"empty,omitempty"`
	}
	items := []any{tagged{Name: "x"}, []int{1, 2}, map[string]int{"b": 2, "a": 1}, (*typeError)(nil)}

	got, err := EncodeMetadata(items)

	require.NoError(t, err)
	assert.Equal(t, `[{"name":"x"},[1,2],{"a":1,"b":2},null]`, got)
}

func TestEncodeMetadataUnsupportedValue(t *testing.T) {
	_, err := EncodeMetadata([]any{make(chan int)})

	require.Error(t, err)
	var serr *SerializationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "metadata", serr.What)
}

func TestEncodeMetadataCycle(t *testing.T) {
	type node struct {
		Next *node
	}
	n := &node{}
	n.Next = n

	_, err := EncodeMetadata([]any{n})

	assert.ErrorIs(t, err, ErrSerialization)
}

func TestBuildEvent(t *testing.T) {
	event, err := BuildEvent(LogEventOptions{
		Message:      "boom",
		FacilityCode: 1,
		ErrorCode:    2,
		Dim1:         "player",
		Dim4:         TimeOfDayEvening,
	}, []any{"detail"})
	require.NoError(t, err)

	assert.Equal(t, 12, event.Code)
	assert.Equal(t, `boom| Metadata: ["detail"]`, event.Message)
	assert.Equal(t, "player", event.Dimensions.Dim1)
	assert.Nil(t, event.Dimensions.Dim2)
	assert.Nil(t, event.Dimensions.Dim3)
	assert.Equal(t, "17-21", event.Dimensions.Dim4)
}

func TestLogEventJSONOmitsAbsentDimensions(t *testing.T) {
	event, err := BuildEvent(LogEventOptions{Message: "m"}, nil)
	require.NoError(t, err)

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":0,"message":"m","dimensions":{}}`, string(data))

	event.Dimensions.Dim2 = ""
	data, err = json.Marshal(event)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":0,"message":"m","dimensions":{"dim2":""}}`, string(data))
}

func TestBuildEventPropagatesEncodingFailure(t *testing.T) {
	_, err := BuildEvent(LogEventOptions{Message: "m"}, []any{func() {}})
	assert.ErrorIs(t, err, ErrSerialization)
}
