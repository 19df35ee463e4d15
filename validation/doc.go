// Package validation turns struct-tag and hand-written checks into
// INVALID_INPUT AppErrors.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    SSEURL string `mapstructure:"sse_url" validate:"required,url"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("email", body.Email).Required("password", body.Password)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
