package dispatch

import (
	"testing"
)

func TestExtract_SameValueAcrossShapes(t *testing.T) {
	// Every supported shape carrying the same logical value yields the same
	// extracted value.
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "direct params",
			raw:  `{"domain":"x"}`,
		},
		{
			name: "body as JSON string",
			raw:  `{"body":"{\"domain\":\"x\"}"}`,
		},
		{
			name: "body as object",
			raw:  `{"body":{"domain":"x"}}`,
		},
		{
			name: "jsonrpc tools/call arguments",
			raw:  `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"dns_lookup","arguments":{"domain":"x"}}}`,
		},
		{
			name: "query string parameters",
			raw:  `{"body":"","queryStringParameters":{"domain":"x"}}`,
		},
		{
			name: "path parameters",
			raw:  `{"body":"","pathParameters":{"domain":"x"}}`,
		},
		{
			name: "legacy intent slots",
			raw:  `{"currentIntent":{"slots":{"domain":"x"}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Detect([]byte(tt.raw))
			value, found := Extract(env, []string{"domain", "dns_name"})
			if !found {
				t.Fatal("Extract() found no value")
			}
			if value != "x" {
				t.Errorf("Extract() = %q, want %q", value, "x")
			}
		})
	}
}

func TestExtract_Miss(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty object", raw: `{}`},
		{name: "unrelated keys", raw: `{"other":"y"}`},
		{name: "empty slots", raw: `{"currentIntent":{"slots":{}}}`},
		{name: "arguments missing key", raw: `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"t","arguments":{"other":"y"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Detect([]byte(tt.raw))
			if _, found := Extract(env, []string{"domain"}); found {
				t.Error("Extract() found a value, want miss")
			}
		})
	}
}

func TestExtract_MalformedBodyTolerated(t *testing.T) {
	// A body that fails to decode is skipped and extraction continues to the
	// next candidate location.
	env := Detect([]byte(`{"body":"{not valid json","queryStringParameters":{"domain":"x"}}`))

	value, found := Extract(env, []string{"domain"})
	if !found {
		t.Fatal("Extract() found no value")
	}
	if value != "x" {
		t.Errorf("Extract() = %q, want %q", value, "x")
	}
}

func TestExtract_AliasOrder(t *testing.T) {
	env := Detect([]byte(`{"dns_name":"second.example","domain":"first.example"}`))

	value, found := Extract(env, []string{"domain", "dns_name"})
	if !found {
		t.Fatal("Extract() found no value")
	}
	if value != "first.example" {
		t.Errorf("Extract() = %q, want first alias to win", value)
	}
}

func TestExtract_ArgumentsWinOverTopLevel(t *testing.T) {
	env := Detect([]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"t","arguments":{"domain":"from-args"}},"domain":"from-top"}`))

	value, found := Extract(env, []string{"domain"})
	if !found {
		t.Fatal("Extract() found no value")
	}
	if value != "from-args" {
		t.Errorf("Extract() = %q, want %q", value, "from-args")
	}
}

func TestExtract_ScalarCoercion(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "integer", raw: `{"query":42}`, want: "42"},
		{name: "float", raw: `{"query":2.5}`, want: "2.5"},
		{name: "bool", raw: `{"query":true}`, want: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Detect([]byte(tt.raw))
			value, found := Extract(env, []string{"query"})
			if !found {
				t.Fatal("Extract() found no value")
			}
			if value != tt.want {
				t.Errorf("Extract() = %q, want %q", value, tt.want)
			}
		})
	}
}

func TestExtract_ObjectValueDoesNotQualify(t *testing.T) {
	env := Detect([]byte(`{"domain":{"nested":"x"}}`))

	if _, found := Extract(env, []string{"domain"}); found {
		t.Error("Extract() returned an object value, want miss")
	}
}
