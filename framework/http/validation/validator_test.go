package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/http/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func pass(t *testing.T, label string, data map[string]string, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		assert.True(t, v.Passes(), "errors: %+v", v.Errors().Bag)
	})
}

func fail(t *testing.T, label, field string, data map[string]string, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		require.True(t, v.Fails(), "expected failure on %q", field)
		assert.NotEmpty(t, v.Errors().First(field))
	})
}

// ── rules ────────────────────────────────────────────────────────────────────

func TestValidation_Required(t *testing.T) {
	r := validation.Rules{"name": "required"}

	pass(t, "non-empty value", map[string]string{"name": "Alice"}, r)
	fail(t, "empty string", "name", map[string]string{"name": ""}, r)
	fail(t, "whitespace only", "name", map[string]string{"name": "   "}, r)
	fail(t, "missing key", "name", map[string]string{}, r)
}

func TestValidation_Required_MessageFormat(t *testing.T) {
	v := validation.Make(map[string]string{}, validation.Rules{"name": "required"})
	require.True(t, v.Fails())
	assert.Equal(t, "The name field is required.", v.Errors().First("name"))
}

func TestValidation_Email(t *testing.T) {
	r := validation.Rules{"email": "email"}

	pass(t, "valid", map[string]string{"email": "user@example.com"}, r)
	pass(t, "subdomain", map[string]string{"email": "user@mail.example.co.uk"}, r)
	fail(t, "no @ sign", "email", map[string]string{"email": "notanemail"}, r)
	fail(t, "no domain", "email", map[string]string{"email": "user@"}, r)
	fail(t, "display name form", "email", map[string]string{"email": "Ada <ada@example.com>"}, r)
}

func TestValidation_MinMax(t *testing.T) {
	r := validation.Rules{"name": "min:2|max:5"}

	pass(t, "lower bound", map[string]string{"name": "ab"}, r)
	pass(t, "upper bound", map[string]string{"name": "abcde"}, r)
	pass(t, "counts runes", map[string]string{"name": "éé"}, r)
	fail(t, "too short", "name", map[string]string{"name": "a"}, r)
	fail(t, "too long", "name", map[string]string{"name": "abcdef"}, r)
}

func TestValidation_Numeric(t *testing.T) {
	r := validation.Rules{"age": "numeric"}

	pass(t, "integer", map[string]string{"age": "42"}, r)
	pass(t, "float", map[string]string{"age": "4.2"}, r)
	fail(t, "letters", "age", map[string]string{"age": "forty"}, r)
}

func TestValidation_In(t *testing.T) {
	r := validation.Rules{"role": "in:admin, member"}

	pass(t, "listed", map[string]string{"role": "member"}, r)
	fail(t, "unlisted", "role", map[string]string{"role": "guest"}, r)
}

func TestValidation_String(t *testing.T) {
	pass(t, "always passes", map[string]string{}, validation.Rules{"x": "string"})
}

// ── behaviour ────────────────────────────────────────────────────────────────

func TestValidation_StopsAtFirstFailurePerField(t *testing.T) {
	v := validation.Make(map[string]string{"email": ""}, validation.Rules{"email": "required|email"})

	require.True(t, v.Fails())
	assert.Len(t, v.Errors().Bag["email"], 1)
}

func TestValidation_CollectsEveryField(t *testing.T) {
	v := validation.Make(map[string]string{"name": "A", "email": "nope"}, validation.Rules{
		"name":  "required|min:2|max:100",
		"email": "required|email",
	})

	require.True(t, v.Fails())
	assert.Equal(t, "The name must be at least 2 characters.", v.Errors().First("name"))
	assert.Equal(t, "The email must be a valid email address.", v.Errors().First("email"))
}

func TestValidation_RunsOnce(t *testing.T) {
	v := validation.Make(map[string]string{}, validation.Rules{"name": "required"})
	v.Fails()
	v.Fails()
	assert.Len(t, v.Errors().Bag["name"], 1)
}

func TestValidation_UnknownRulePanics(t *testing.T) {
	v := validation.Make(map[string]string{"x": "y"}, validation.Rules{"x": "wat"})
	assert.Panics(t, func() { v.Fails() })
}

func TestErrors_FirstOnCleanBag(t *testing.T) {
	var e validation.Errors
	assert.False(t, e.Has())
	assert.Empty(t, e.First("anything"))
}
