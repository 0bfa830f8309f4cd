// Package throttle provides an [http.RoundTripper] that paces outbound
// API calls with a token bucket from [golang.org/x/time/rate].
//
// Requests beyond the burst wait for a token or fail once their context
// ends, so a throttled call never outlives its caller's cancellation.
package throttle
