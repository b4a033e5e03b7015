// Package httpapi exposes the goTOTP engine over HTTP with cookie-based
// session transport.
//
// Routes:
//
//	GET /login?id=&password=&code=  — verify credentials, set session cookie
//	GET /qrImage                    — begin TOTP enrollment, return QR data URI
//	GET /set2FA?code=               — confirm enrollment with a scanned code
//	GET /check                      — report session presence
//	GET /logout                     — clear the session cookie
//	GET /*                          — static files, when a directory is configured
//
// Business errors map to statuses as: bad credentials, bad codes, and
// missing or invalid sessions → 401; confirming with no enrollment in
// progress → 409; malformed input → 400; everything else → 500. Bodies
// never carry more than a fixed short message.
package httpapi
