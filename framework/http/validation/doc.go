// Package validation checks flat string input against pipe-separated rules.
//
//	v := validation.Make(map[string]string{
//	    "name":  "Alice",
//	    "email": "alice@example.com",
//	}, validation.Rules{
//	    "name":  "required|min:2|max:100",
//	    "email": "required|email",
//	})
//
//	if v.Fails() {
//	    res.ValidationError(v.Errors()) // {"errors": {"field": ["message"]}}
//	}
//
// Rules: required, string, email, numeric, min:n, max:n, in:a,b,c.
// Lengths count UTF-8 characters. Validation stops at the first failing rule
// of each field. An unknown rule name panics, since it is a programming error.
package validation
