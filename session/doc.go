// Package session holds the admin API credential and keeps it honest.
//
// A [Session] is the explicit credential context: the client reads its
// token on every request. A [Guard] clears it when the server answers 401,
// and a [Validator] confirms it with the server once per credential,
// sharing a single in-flight check between concurrent callers.
package session
