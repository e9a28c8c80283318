// Package cookie reads and writes HTTP cookies with shared defaults and
// optional HMAC-SHA256 signing.
//
// A Manager created with New holds one or more secrets (32+ chars). The
// first secret signs; every secret verifies, which keeps cookies valid
// across key rotation. NewUnsigned creates a Manager for plain cookies.
//
//	man, err := cookie.New([]string{os.Getenv("COOKIE_SECRET")},
//	    cookie.WithSecure(true),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	_ = man.SetSigned(w, "toa.sid", "abc.123", cookie.WithMaxAge(3600))
//	v, err := man.GetSigned(r, "toa.sid") // ErrInvalidSignature when tampered
//	man.Delete(w, "toa.sid")
//
// Signed values have the form base64url(value) + "|" + base64url(hmac).
//
// With WithOverwrite(true) a Set or Delete replaces any Set-Cookie header for
// the same name already queued on the response, so a handler can change its
// mind about a cookie without sending two of them.
//
// Positive MaxAge values also produce an Expires attribute for clients that
// ignore Max-Age.
//
// Config can be populated from the environment (COOKIE_SECRETS, COOKIE_PATH,
// COOKIE_SECURE, ...) and turned into a Manager with NewFromConfig.
package cookie
